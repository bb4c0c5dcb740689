// Package railpulse is the filter and aggregation core of a rail punctuality
// and journey analytics dashboard.
//
// Usage:
//
//	store, err := dataset.Load(ctx, dataset.DirSource{Root: "data"}, dataset.Files{
//	    Operators: "european_train_punctuality.csv",
//	    Journeys:  "railway.csv",
//	})
//	dash := dashboard.New(store, dashboard.WithSink(sink))
//	dash.MountDefaults()
//	dash.RenderStatic(sink)
//	dash.Click(filter.DimTicketClass, "First Class")
//
// Rows are loaded once into an immutable dataset.Store. Every click mutates
// a single filter.Store, and the dashboard re-runs filter.Apply and the
// metrics reducers for each registered panel, in registration order.
//
// Rendering is handled by sinks in the render package. The core never draws.
package railpulse

// Version of the railpulse module and CLI.
const Version = "0.3.0"
