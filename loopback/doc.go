// Package loopback hosts login windows for a local process.
//
// The server listens on 127.0.0.1 and serves the redirect URI. A login
// window is a system-browser tab launched through /open/{id}; when the
// provider redirects back to /callback, the page relays its full location
// (fragment included) to /relay, which hands it to the redirect page
// handler and on to the waiting popup. A tab that goes away first sends a
// beacon to /closed/{id}.
//
//	bus := popup.NewBus(log)
//	srv := loopback.New(cfg, bus, log)
//	_ = srv.Start(ctx)
//	p := popup.New(srv.Opener(), bus)
package loopback
