// Package bootstrap runs the service lifecycle.
//
// An App loads nothing itself: it takes a validated config, initializes the
// global logger from it and drives the component registry through
// start, configure, ready check, signal wait and shutdown.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.RegisterComponent(archiveComponent)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*config.AppConfig]) error {
//	    return a.RegisterComponent(httpServer)
//	})
//	err = app.Run(ctx)
package bootstrap
