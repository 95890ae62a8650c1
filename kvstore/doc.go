// Package kvstore provides the string key/value stores that back the
// SDK's storage trust domains.
//
// A Store is deliberately small: Get, Set and Delete on string values.
// The session package keeps one half of its split secret in a "name
// slot" store and the other in a "session half" store; the localstore
// package keeps the pending redirect-mode login in a durable store.
//
// Backends:
//
//   - Memory: process memory (go-cache), lost on exit.
//   - File: one JSON object in one file, rewritten atomically.
//   - redis.KVStore in the redis package.
//
// Typed wraps any Store with JSON encoding and a key prefix.
package kvstore
