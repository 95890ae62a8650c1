// Package session holds the authenticated session in memory and carries
// it across process restarts without writing it anywhere in the clear.
//
// On Persist the serialized entries are split with a one-time pad into
// two halves. Half a goes into the name slot, a JSON object shared with
// other sessions and keyed by session key. Half b goes into the session
// half store. Neither half alone reveals anything.
//
// Open reunites the halves exactly once: a is stripped out of the name
// slot and b is deleted before the two are joined. A missing half or a
// length mismatch yields an empty store, never an error.
//
//	store, err := session.Open(ctx, appID, nameSlot, sessionHalf)
//	...
//	store.Set("userInfo", string(raw))
//	defer store.Persist(context.Background())
package session
