// Package auth is the login orchestrator.
//
// A Provider drives one login attempt at a time through the adapter of
// the chosen provider:
//
//	NotStarted -> AwaitingProviderResponse -> ValidatingState
//	  -> FetchingUserInfo -> ReconstructingKey -> Committed
//
// Any step may end in Errored. In popup mode the attempt completes inside
// LoginWithSocial. In redirect mode LoginWithSocial records the pending
// login and navigates the page away; CheckRedirectMode finishes it when
// the provider sends the page back.
//
// Every collaborator is injected through an Option:
//
//	p, err := auth.New(ctx, cfg,
//		auth.WithLogger(log),
//		auth.WithOpener(server.Opener()),
//		auth.WithMessageSource(bus),
//		auth.WithSessionBackends(nameSlot, sessionHalf),
//	)
//	session, err := p.LoginWithSocial(ctx, provider.Google)
package auth
