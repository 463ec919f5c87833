package store

import "context"

// Setting is a single key/value pair.
type Setting struct {
	Key   string
	Value string
}

// Repo is a durable string key/value store.
type Repo interface {
	ReadAllMatching(ctx context.Context, prefix string) (map[string]string, error)
	Write(ctx context.Context, key, value string) error
	WriteMany(ctx context.Context, settings []Setting) error
	Close() error
}
