// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store abstracts the object stores the pipeline reads raw extracts
// from and writes snapshot artifacts to. Implementations cover the remote
// blob container, a local directory, and a no-op sink for dry runs.
package store

import "context"

// Reader fetches whole objects by name. Names use forward slashes
// (e.g. "raw/extract.csv") regardless of backend.
type Reader interface {
	Get(ctx context.Context, name string) ([]byte, error)
}

// Writer persists whole objects by name. Artifacts are small enough to
// build in memory, which keeps writes atomic per object: either the full
// validated snapshot lands or nothing does.
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
}

// TransportError wraps a failed store operation with its location.
type TransportError struct {
	Location string
	Err      error
}

func (e *TransportError) Error() string {
	return "transport: " + e.Location + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
