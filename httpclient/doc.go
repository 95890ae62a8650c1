// Package httpclient is the HTTP client shared by the provider adapters,
// the gateway client and the key-service client.
//
// It resolves paths against a BaseURL, applies default headers and auth,
// classifies non-2xx responses into typed errors and decodes JSON bodies
// through the generic Get and Post helpers. Requests are never retried;
// retry is a caller decision.
//
//	client, _ := httpclient.New(httpclient.Config{BaseURL: "https://gateway.example.com"})
//	resp, err := httpclient.Get[configResponse](ctx, client, "/get-config/")
package httpclient
