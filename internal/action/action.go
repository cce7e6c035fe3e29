// Package action holds the single VR action slot: the last command posted
// for the VR client. The payload is opaque JSON stored verbatim.
package action

import (
	"context"

	"github.com/goccy/go-json"
)

// Default is what readers see when the slot is empty.
var Default = json.RawMessage(`{"action":"none","id":0}`)

// Store is the shared slot. Implementations are safe for concurrent use.
type Store interface {
	// Get returns the stored payload, or Default when the slot is empty.
	Get(ctx context.Context) (json.RawMessage, error)

	// Set overwrites the slot unconditionally and notifies subscribers.
	Set(ctx context.Context, payload json.RawMessage) error

	// Reset empties the slot and notifies subscribers with Default.
	Reset(ctx context.Context) error

	// Subscribe delivers every payload written after the call returns.
	// The channel is closed once ctx is done.
	Subscribe(ctx context.Context) (<-chan json.RawMessage, error)
}

func orDefault(payload json.RawMessage) json.RawMessage {
	if len(payload) == 0 {
		return Default
	}
	return payload
}
