// Package resource provides the shared cache-and-synchronise machinery
// for backend-owned collections and singletons.
//
// Every mutation is confirm-then-apply: the backend request goes first,
// and the local cache changes only after the backend confirmed. A failed
// request leaves the cache exactly as it was, so the cache never shows
// state the backend did not acknowledge.
//
// Operations are permission-gated. The gate is checked before any
// request is dispatched; a denied operation never touches the network.
package resource
