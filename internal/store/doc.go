// Package store holds the in-memory dashboard state: a thread-safe snapshot
// store keyed by source ID with TTL eviction, consumed by the REST API and
// the WebSocket hub.
package store
