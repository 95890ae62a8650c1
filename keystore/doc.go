// Package keystore talks to the key service that reconstructs a user's
// private key from a provider-issued id_token.
//
//	ks := keystore.NewHTTPClient(http, keystore.Config{URL: url, AppID: appID})
//	key, err := ks.PrivateKey(ctx, "u@example.com", idToken, "google")
//	pub, err := ks.PublicKey(ctx, "u@example.com", "google")
//	compressed := keystore.FormatPublicKey(pub, keystore.FormatCompressed)
package keystore
