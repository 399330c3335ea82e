// Package task manages background job queuing, processing, and lifecycle.
// It provides mechanisms for asynchronous execution of long-running
// operations like generating study material, ensuring they don't block
// HTTP request handling and can recover from application restarts. The
// study request record, not the in-memory queue, is the durable source
// of truth: at startup unfinished requests are re-enqueued from it.
package task
