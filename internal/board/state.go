package board

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrInvalidState is returned when an import payload is malformed.
var ErrInvalidState = errors.New("invalid map state")

// SavedPiece is one record of the persisted map state.
type SavedPiece struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// ImportReport describes the result of a successful import.
type ImportReport struct {
	Imported int
	Skipped  []SavedPiece // records naming a hex the grid does not have
}

// ExportState returns every piece as a saved record, in placement order.
// Dragged pieces are exported at their committed cell.
func (b *Board) ExportState() []SavedPiece {
	out := make([]SavedPiece, 0, b.pieces.Len())
	for p := range b.pieces.All() {
		out = append(out, SavedPiece{ID: p.ID, Type: p.Type, Label: p.HexLabel})
	}
	return out
}

// MarshalState encodes the exported state as a JSON array.
func (b *Board) MarshalState() ([]byte, error) {
	return json.Marshal(b.ExportState())
}

// DecodeState parses a payload strictly: a JSON array whose elements are
// objects with exactly the string keys id, type and label, with unique
// non-empty ids.
func DecodeState(data []byte) ([]SavedPiece, error) {
	var raw []map[string]json.RawMessage
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after array", ErrInvalidState)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrInvalidState)
	}
	out := make([]SavedPiece, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, rec := range raw {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d is not an object", ErrInvalidState, i)
		}
		if len(rec) != 3 {
			return nil, fmt.Errorf("%w: record %d must have exactly id, type and label", ErrInvalidState, i)
		}
		var sp SavedPiece
		for key, dst := range map[string]*string{"id": &sp.ID, "type": &sp.Type, "label": &sp.Label} {
			v, ok := rec[key]
			if !ok {
				return nil, fmt.Errorf("%w: record %d missing %q", ErrInvalidState, i, key)
			}
			if bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
				return nil, fmt.Errorf("%w: record %d field %q is null", ErrInvalidState, i, key)
			}
			if err := json.Unmarshal(v, dst); err != nil {
				return nil, fmt.Errorf("%w: record %d field %q: %v", ErrInvalidState, i, key, err)
			}
		}
		if sp.ID == "" {
			return nil, fmt.Errorf("%w: record %d has an empty id", ErrInvalidState, i)
		}
		if seen[sp.ID] {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrInvalidState, sp.ID)
		}
		seen[sp.ID] = true
		out = append(out, sp)
	}
	return out, nil
}

// ImportState replaces the whole registry with the payload. A malformed
// payload is rejected before anything changes. Records naming an unknown
// hex are skipped and reported.
func (b *Board) ImportState(data []byte) (ImportReport, error) {
	records, err := DecodeState(data)
	if err != nil {
		return ImportReport{}, err
	}
	return b.ApplyState(records)
}

// ApplyState replaces the registry with records. See ImportState.
func (b *Board) ApplyState(records []SavedPiece) (ImportReport, error) {
	if b.grid == nil {
		return ImportReport{}, ErrNoGrid
	}
	next := NewRegistry(b.grid, b.log)
	var rep ImportReport
	for _, r := range records {
		if _, ok := b.cell(r.Label); !ok {
			rep.Skipped = append(rep.Skipped, r)
			continue
		}
		if err := next.Place(r.ID, r.Label, r.Type, ""); err != nil {
			return ImportReport{}, fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		rep.Imported++
	}
	b.cancelGesture()
	b.pieces = next
	b.selectedPiece = ""
	b.hoverPiece = ""
	for _, s := range rep.Skipped {
		b.log.Warn("import skipped record: unknown hex", "id", s.ID, "type", s.Type, "label", s.Label)
	}
	b.log.Info("map state imported", "pieces", rep.Imported, "skipped", len(rep.Skipped))
	return rep, nil
}
