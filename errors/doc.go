// Package errors provides the structured error type surfaced by the SDK.
//
// Every failure a caller can observe is an *AppError carrying a stable
// ErrorCode (POPUP_BLOCKED, STATE_MISMATCH, ...) and a human-readable
// message. The Reporter interface lets applications forward errors to an
// exception tracker without the SDK holding any global state.
package errors
