// Package events defines the work events exchanged between the request
// submission surface and the background task runner, plus an in-memory
// emitter implementation. Events are delivery hints only: the persisted
// request record, not the event, is authoritative for processing state.
package events
