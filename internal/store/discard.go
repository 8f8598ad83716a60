// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import "context"

// Discard is the dry-run sink: it accepts writes and drops them, so the
// pipeline runs the exact same path in every mode and only the final
// persistence differs. It remembers which names were offered, which lets
// tests assert that nothing real would have been written.
type Discard struct {
	Offered []string
}

// Put records the object name and discards the data.
func (d *Discard) Put(ctx context.Context, name string, data []byte) error {
	d.Offered = append(d.Offered, name)
	return nil
}
