package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/hexboard/internal/store"
)

const sampleState = `[{"id":"u1","type":"gangrel","label":"D05"},{"id":"u2","type":"hunters","label":"Z99"}]`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestParseFlags_RequiresOneCommand(t *testing.T) {
	if _, err := parseFlags(nil); err == nil {
		t.Fatal("expected error with no command")
	}
	if _, err := parseFlags([]string{"-list", "-delete", "x"}); err == nil {
		t.Fatal("expected error with two commands")
	}
	if _, err := parseFlags([]string{"-list"}); err != nil {
		t.Fatalf("expected -list alone to parse, got %v", err)
	}
}

func TestRun_CheckReportsSkipped(t *testing.T) {
	src := writeFile(t, "state.json", sampleState)
	var out bytes.Buffer
	if err := run([]string{"-check", src}, &out); err != nil {
		t.Fatalf("check: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "pieces=1 skipped=1") {
		t.Fatalf("expected counts in report, got:\n%s", got)
	}
	if !strings.Contains(got, "label=Z99") {
		t.Fatalf("expected skipped record in report, got:\n%s", got)
	}
}

func TestRun_CheckRejectsInvalid(t *testing.T) {
	src := writeFile(t, "bad.json", `{"id":"u1"}`)
	if err := run([]string{"-check", src}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected invalid payload to fail")
	}
}

func TestRun_ImportListExportDelete(t *testing.T) {
	db := filepath.Join(t.TempDir(), "saves.db")
	src := writeFile(t, "state.json", sampleState)

	var out bytes.Buffer
	if err := run([]string{"-db", db, "-import", src, "-name", "opening"}, &out); err != nil {
		t.Fatalf("import: %v", err)
	}
	if !strings.Contains(out.String(), `stored as "opening"`) {
		t.Fatalf("unexpected import output:\n%s", out.String())
	}

	out.Reset()
	if err := run([]string{"-db", db, "-list"}, &out); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out.String(), "opening") {
		t.Fatalf("expected save in listing, got:\n%s", out.String())
	}

	dst := filepath.Join(t.TempDir(), "out.json")
	out.Reset()
	if err := run([]string{"-db", db, "-export", "opening", "-out", dst}, &out); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != sampleState {
		t.Fatalf("expected exported payload unchanged, got %s", data)
	}

	if err := run([]string{"-db", db, "-delete", "opening"}, &bytes.Buffer{}); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := run([]string{"-db", db, "-delete", "opening"}, &bytes.Buffer{}); err == nil {
		t.Fatal("expected second delete to fail")
	}
}

func TestPrintSaves_Empty(t *testing.T) {
	var out bytes.Buffer
	printSaves(&out, nil, time.Now())
	if strings.TrimSpace(out.String()) != "no saves" {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestPrintSaves_HumanizesSizeAndAge(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	printSaves(&out, []store.Save{{Name: "quicksave", Size: 2048, UpdatedAt: now.Add(-2 * time.Hour)}}, now)
	got := out.String()
	if !strings.Contains(got, "2.0 kB") || !strings.Contains(got, "2 hours ago") {
		t.Fatalf("unexpected listing:\n%s", got)
	}
}
