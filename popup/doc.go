// Package popup opens a login window and waits for its response.
//
// A Popup moves from Idle to Opened on Open, then to Resolved or
// Rejected exactly once inside AwaitResponse. Two participants race to
// settle it:
//
//   - the message watcher accepts the first envelope whose state
//     matches (or carries no state) and ignores the rest;
//   - the closed poller rejects with "popup closed by user" when the
//     window closes before a message was accepted.
//
// Whichever claims the result first wins; the other stands down. After
// settlement the subscription is released, the poll stops and the
// window is closed. Late messages are dropped.
//
// Windows come from an Opener and messages from a MessageSource. Bus is
// the in-process MessageSource the loopback server publishes into.
package popup
