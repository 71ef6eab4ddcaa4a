// Package archive mirrors placed orders into a document store for analytics.
// Sinks are best effort: callers log failures and carry on.
package archive

import "context"

// Sink stores one JSON document under key.
type Sink interface {
	Put(ctx context.Context, key string, blob []byte) error
}

// NoopSink discards everything. It backs ARCHIVE_BACKEND=none.
type NoopSink struct{}

func (NoopSink) Put(context.Context, string, []byte) error { return nil }
