// Package provider holds one adapter per identity provider.
//
// An Adapter builds the authorization URL, turns the raw redirect response
// into params carrying access_token and id_token, and fetches the user
// identity. Adapters are looked up by LoginType:
//
//	a, err := provider.New(provider.Google, provider.Deps{HTTP: client})
//	u, err := a.AuthURL(ctx, provider.AuthRequest{ClientID: id, RedirectURI: cb, State: state})
//
// Middlewares add logging and tracing around every call:
//
//	a = provider.Chain(provider.WithLogging(log), provider.WithTracing(tracer))(a)
package provider
