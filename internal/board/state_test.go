package board

import (
	"errors"
	"slices"
	"testing"
)

func TestState_RoundTrip(t *testing.T) {
	src, _ := newTestBoard(t)
	mustPlace(t, src, "a", "D05", "gangrel")
	mustPlace(t, src, "b", "E06", "hunters")
	mustPlace(t, src, "c", "A00", "")
	data, err := src.MarshalState()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	dst, _ := newTestBoard(t)
	mustPlace(t, dst, "stale", "B01", "")
	rep, err := dst.ImportState(data)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if rep.Imported != 3 || len(rep.Skipped) != 0 {
		t.Fatalf("expected 3 imported, got %+v", rep)
	}
	if !slices.Equal(dst.ExportState(), src.ExportState()) {
		t.Fatalf("round trip mismatch:\n%v\n%v", dst.ExportState(), src.ExportState())
	}
	p, _ := dst.Piece("b")
	e06 := mustCell(t, dst, "E06")
	if p.X != e06.X || p.Y != e06.Y {
		t.Fatalf("imported piece not at cell centre: %+v", p)
	}
}

func TestState_ExportUsesCommittedCellDuringDrag(t *testing.T) {
	b, _ := newTestBoard(t)
	mustPlace(t, b, "a", "D05", "gangrel")
	press(b, Point{X: 500, Y: 325}, 0)
	move(b, Point{X: 580, Y: 460}, 0)
	got := b.ExportState()
	if len(got) != 1 || got[0].Label != "D05" {
		t.Fatalf("expected committed D05, got %v", got)
	}
}

func TestState_UnknownLabelSkipped(t *testing.T) {
	b, _ := newTestBoard(t)
	mustPlace(t, b, "old", "A00", "")
	rep, err := b.ImportState([]byte(`[{"id":"a","type":"x","label":"Z99"}]`))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if b.PieceCount() != 0 {
		t.Fatalf("expected empty registry, got %d pieces", b.PieceCount())
	}
	if rep.Imported != 0 || len(rep.Skipped) != 1 || rep.Skipped[0].Label != "Z99" {
		t.Fatalf("expected one skipped record, got %+v", rep)
	}
}

func TestState_InvalidPayloadKeepsRegistry(t *testing.T) {
	b, _ := newTestBoard(t)
	mustPlace(t, b, "old", "A00", "gangrel")
	_, err := b.ImportState([]byte(`[{"id":"a","type":"x","label":"D05"},{"id":"b","type":"x"}]`))
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if b.PieceCount() != 1 {
		t.Fatalf("prior registry should survive, got %d pieces", b.PieceCount())
	}
	if _, ok := b.Piece("old"); !ok {
		t.Fatal("prior piece missing after rejected import")
	}
}

func TestDecodeState_Rejects(t *testing.T) {
	cases := map[string]string{
		"object":       `{"id":"a","type":"x","label":"D05"}`,
		"null":         `null`,
		"number item":  `[1]`,
		"null item":    `[null]`,
		"extra key":    `[{"id":"a","type":"x","label":"D05","hp":3}]`,
		"numeric id":   `[{"id":1,"type":"x","label":"D05"}]`,
		"null label":   `[{"id":"a","type":"x","label":null}]`,
		"empty id":     `[{"id":"","type":"x","label":"D05"}]`,
		"duplicate id": `[{"id":"a","type":"x","label":"D05"},{"id":"a","type":"y","label":"E06"}]`,
		"trailing":     `[] []`,
		"stray close":  "[]]",
		"stray brace":  "[]}",
		"garbage":      `not json`,
	}
	for name, payload := range cases {
		if _, err := DecodeState([]byte(payload)); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("%s: expected ErrInvalidState, got %v", name, err)
		}
	}
}

func TestDecodeState_EmptyArray(t *testing.T) {
	got, err := DecodeState([]byte(` [ ] `))
	if err != nil || len(got) != 0 {
		t.Fatalf("expected empty state, got %v %v", got, err)
	}
}

func TestDecodeState_EmptyTypeAllowed(t *testing.T) {
	got, err := DecodeState([]byte(`[{"label":"D05","type":"","id":"a"}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0] != (SavedPiece{ID: "a", Type: "", Label: "D05"}) {
		t.Fatalf("unexpected record %+v", got[0])
	}
}

func TestImportState_RequiresGrid(t *testing.T) {
	b := New(Config{Logger: discardLogger()})
	_, err := b.ImportState([]byte(`[{"id":"a","type":"x","label":"D05"}]`))
	if !errors.Is(err, ErrNoGrid) {
		t.Fatalf("expected ErrNoGrid, got %v", err)
	}
}

func TestSetGrid_RejectsNil(t *testing.T) {
	b, _ := newTestBoard(t)
	mustPlace(t, b, "u", "D05", "gangrel")
	if err := b.SetGrid(nil); !errors.Is(err, ErrInvalidGrid) {
		t.Fatalf("expected ErrInvalidGrid, got %v", err)
	}
	if b.Grid() == nil {
		t.Fatal("nil grid must not replace the current one")
	}
	if p, ok := b.Piece("u"); !ok || p.HexLabel != "D05" {
		t.Fatalf("expected piece kept at D05, got %+v %v", p, ok)
	}
	if _, err := b.ImportState([]byte(`[]`)); err != nil {
		t.Fatalf("import with a grid: %v", err)
	}
}
