// Package gateway looks up app configuration: the RPC endpoint, the app's
// on-chain address and the OAuth client ID configured per provider.
package gateway
