// ABOUTME: Record index kept under one well-known key in the ledger.
// ABOUTME: Lists session IDs and appends new ones with read-modify-write.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/harperreed/rehab/internal/codec"
)

const (
	// Key holds the JSON array of every known session ID.
	Key = "rehab_keys"
	// RecordPrefix is prepended to a session ID to form its record key.
	RecordPrefix = "rehab_"
)

// RecordKey returns the ledger key of the session with the given ID.
func RecordKey(id string) string {
	return RecordPrefix + id
}

// Backend is the single-key subset of the ledger gateway the index needs.
type Backend interface {
	GetData(ctx context.Context, key string) ([]byte, error)
	SetData(ctx context.Context, key string, value []byte) error
}

// Manager owns the index key.
//
// AppendIdentifier is not atomic across clients: two writers that read the
// same index can each write back a list missing the other's ID. The backend
// has no compare-and-swap, so a lost append is possible; structural damage is not.
type Manager struct {
	backend Backend
}

// NewManager returns a Manager over backend.
func NewManager(backend Backend) *Manager {
	return &Manager{backend: backend}
}

// DecodeIndex parses an index payload. Empty input is an empty index.
func DecodeIndex(data []byte) ([]string, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []string{}, nil
	}

	var raw []*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return []string{}, &codec.DecodeError{Subject: "index", Err: err}
	}

	ids := make([]string, 0, len(raw))
	for i, id := range raw {
		if id == nil {
			return []string{}, &codec.DecodeError{Subject: "index", Err: fmt.Errorf("element %d is null", i)}
		}
		ids = append(ids, *id)
	}
	return ids, nil
}

// EncodeIndex serializes ids as a JSON array.
func EncodeIndex(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

// ListIdentifiers returns the IDs in append order.
// A read failure is returned as is. A corrupt payload yields an empty list
// together with a *codec.DecodeError so the caller can log and carry on.
func (m *Manager) ListIdentifiers(ctx context.Context) ([]string, error) {
	data, err := m.backend.GetData(ctx, Key)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}
	return DecodeIndex(data)
}

// AppendIdentifier reads the index, appends id, and writes it back.
// It does not retry and does not deduplicate.
func (m *Manager) AppendIdentifier(ctx context.Context, id string) error {
	data, err := m.backend.GetData(ctx, Key)
	if err != nil {
		return fmt.Errorf("read index: %w", err)
	}

	ids, err := DecodeIndex(data)
	if err != nil {
		return err
	}

	out, err := EncodeIndex(append(ids, id))
	if err != nil {
		return fmt.Errorf("encode index: %w", err)
	}

	if err := m.backend.SetData(ctx, Key, out); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}
