// Command mapstate inspects and edits the map state saves the board keeps
// in its SQLite store, without opening a window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Garsondee/hexboard/internal/board"
	"github.com/Garsondee/hexboard/internal/config"
	"github.com/Garsondee/hexboard/internal/store"
)

type options struct {
	cfgPath string
	dbPath  string
	list    bool
	export  string
	out     string
	importF string
	name    string
	check   string
	delete  string
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var o options
	fs := flag.NewFlagSet("mapstate", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&o.cfgPath, "config", "", "path to a YAML config file")
	fs.StringVar(&o.dbPath, "db", "", "save database (defaults to the configured store path)")
	fs.BoolVar(&o.list, "list", false, "list saves")
	fs.StringVar(&o.export, "export", "", "write the named save as JSON")
	fs.StringVar(&o.out, "out", "", "output file for -export (default stdout)")
	fs.StringVar(&o.importF, "import", "", "JSON file to validate and store")
	fs.StringVar(&o.name, "name", "", "save name for -import (defaults to the configured save name)")
	fs.StringVar(&o.check, "check", "", "JSON file to validate against the grid")
	fs.StringVar(&o.delete, "delete", "", "delete the named save")
	if err := fs.Parse(args); err != nil {
		return o, err
	}

	n := 0
	for _, set := range []bool{o.list, o.export != "", o.importF != "", o.check != "", o.delete != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return o, errors.New("exactly one of -list, -export, -import, -check or -delete is required")
	}
	return o, nil
}

func run(args []string, w io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg := config.Default()
	if o.cfgPath != "" {
		if cfg, err = config.Load(o.cfgPath); err != nil {
			return err
		}
	}
	if o.dbPath == "" {
		o.dbPath = cfg.Store.Path
	}
	if o.name == "" {
		o.name = cfg.Store.SaveName
	}

	if o.check != "" {
		data, err := os.ReadFile(o.check)
		if err != nil {
			return err
		}
		rep, err := validate(cfg, data)
		if err != nil {
			return err
		}
		printReport(w, o.check, rep)
		return nil
	}

	st, err := store.Open(o.dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch {
	case o.list:
		saves, err := st.List(ctx)
		if err != nil {
			return err
		}
		printSaves(w, saves, time.Now())
	case o.export != "":
		data, err := st.Load(ctx, o.export)
		if err != nil {
			return err
		}
		if o.out == "" {
			_, err = fmt.Fprintln(w, string(data))
			return err
		}
		if err := os.WriteFile(o.out, data, 0o644); err != nil {
			return err
		}
		fmt.Fprintf(w, "wrote %q to %s (%s)\n", o.export, o.out, humanize.Bytes(uint64(len(data))))
	case o.importF != "":
		data, err := os.ReadFile(o.importF)
		if err != nil {
			return err
		}
		rep, err := validate(cfg, data)
		if err != nil {
			return err
		}
		printReport(w, o.importF, rep)
		if err := st.Save(ctx, o.name, data); err != nil {
			return err
		}
		fmt.Fprintf(w, "stored as %q\n", o.name)
	case o.delete != "":
		if err := st.Delete(ctx, o.delete); err != nil {
			return err
		}
		fmt.Fprintf(w, "deleted %q\n", o.delete)
	}
	return nil
}

// validate loads data into a headless board built from the configured grid.
func validate(cfg *config.Config, data []byte) (board.ImportReport, error) {
	grid, err := board.BuildGrid(cfg.GridSpec())
	if err != nil {
		return board.ImportReport{}, err
	}
	b := board.New(board.Config{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	if err := b.SetGrid(grid); err != nil {
		return board.ImportReport{}, err
	}
	return b.ImportState(data)
}

func printReport(w io.Writer, src string, rep board.ImportReport) {
	fmt.Fprintf(w, "=== %s ===\n", src)
	fmt.Fprintf(w, "pieces=%d skipped=%d\n", rep.Imported, len(rep.Skipped))
	for _, s := range rep.Skipped {
		fmt.Fprintf(w, "  skipped id=%s type=%s label=%s (unknown hex)\n", s.ID, s.Type, s.Label)
	}
}

func printSaves(w io.Writer, saves []store.Save, now time.Time) {
	if len(saves) == 0 {
		fmt.Fprintln(w, "no saves")
		return
	}
	fmt.Fprintf(w, "%-20s %10s  %s\n", "NAME", "SIZE", "UPDATED")
	for _, s := range saves {
		fmt.Fprintf(w, "%-20s %10s  %s\n", s.Name, humanize.Bytes(uint64(s.Size)), humanize.RelTime(s.UpdatedAt, now, "ago", "from now"))
	}
}
