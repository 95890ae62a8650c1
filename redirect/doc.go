// Package redirect parses OAuth authorization responses out of a URL.
//
// Fragment parameters win over query parameters, since implicit-flow
// responses arrive in the fragment. Only a fixed set of keys is kept;
// everything else in the URL is dropped.
//
//	p, err := redirect.Parse("http://127.0.0.1:8765/callback#state=S&access_token=T")
//	if p.IsEmpty() {
//	    // no response yet
//	}
//
// An Envelope is the message relayed from the login window back to the
// waiting login attempt.
package redirect
