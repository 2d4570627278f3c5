// Command stats-report turns the per-image statistics document on stdin into
// a CSV or XLSX report, optionally with image positions from exiftool
// metadata, a SQLite copy of the rows and a PNG chart of the means.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/banshee-data/statsreport/internal/chart"
	"github.com/banshee-data/statsreport/internal/config"
	"github.com/banshee-data/statsreport/internal/db"
	"github.com/banshee-data/statsreport/internal/fsutil"
	"github.com/banshee-data/statsreport/internal/geo"
	"github.com/banshee-data/statsreport/internal/monitoring"
	"github.com/banshee-data/statsreport/internal/projection"
	"github.com/banshee-data/statsreport/internal/report"
	"github.com/banshee-data/statsreport/internal/security"
	"github.com/banshee-data/statsreport/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, fsutil.OSFileSystem{})
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		monitoring.Logf("%v", err)
		stop()
		os.Exit(1)
	}
}

// run executes one report. Report bytes reach stdout or the output file only
// after every record has been processed.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, fsys fsutil.FileSystem) error {
	fs := flag.NewFlagSet("stats-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version information and exit")
	flags := config.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %q (statistics are read from stdin)", report.ErrConfiguration, fs.Args())
	}
	if *showVersion {
		_, err := fmt.Fprintln(stdout, version.String())
		return err
	}

	cfg, err := flags.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	for _, p := range []string{cfg.Output, cfg.Sqlite, cfg.Plot} {
		if p == "" {
			continue
		}
		if err := security.ValidateOutputPath(p); err != nil {
			return fmt.Errorf("%w: %w", report.ErrConfiguration, err)
		}
	}
	monitoring.SetVerbose(cfg.Verbose)

	var metadata report.MetadataSource
	if cfg.EnableGeolocation {
		metadata = &geo.MetadataStore{FS: fsys, Dir: cfg.MetadataDir}
	}
	asm, err := report.NewAssembler(cfg.ReportConfig(), metadata, newProjector)
	if err != nil {
		return err
	}

	in, err := report.DecodeInput(stdin)
	if err != nil {
		return err
	}
	rep, err := asm.Assemble(in.Images, in.Cumulative)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	switch cfg.Format {
	case config.FormatXLSX:
		err = report.WriteXLSX(&out, rep)
	default:
		err = report.WriteCSV(&out, rep)
	}
	if err != nil {
		return err
	}

	var png bytes.Buffer
	if cfg.Plot != "" {
		if err := chart.WritePNG(&png, rep, chart.DefaultWidth, chart.DefaultHeight); err != nil {
			if !errors.Is(err, chart.ErrNoImages) {
				return err
			}
			monitoring.Logf("skipping chart: %v", err)
		}
	}

	if cfg.Sqlite != "" {
		if err := exportSQLite(ctx, cfg.Sqlite, rep); err != nil {
			return err
		}
	}
	if png.Len() > 0 {
		if err := fsys.WriteFile(cfg.Plot, png.Bytes()); err != nil {
			return fmt.Errorf("write chart: %w", err)
		}
	}

	// The report goes last so a failed side output leaves stdout empty.
	if cfg.Output == "" {
		if _, err := stdout.Write(out.Bytes()); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	} else if err := fsys.WriteFile(cfg.Output, out.Bytes()); err != nil {
		return err
	}
	return nil
}

func newProjector(targetEPSG int) (report.Projector, error) {
	t, err := projection.FromWGS84(targetEPSG)
	if err != nil {
		return nil, err
	}
	monitoring.Debugf("projecting %s", t)
	return t, nil
}

func exportSQLite(ctx context.Context, path string, rep *report.Report) error {
	store, err := db.NewDB(path)
	if err != nil {
		return fmt.Errorf("open sqlite export: %w", err)
	}
	defer store.Close()

	runID, err := store.SaveReport(ctx, rep)
	if err != nil {
		return err
	}
	monitoring.Logf("stored %d rows as run %s in %s", len(rep.Rows), runID, path)
	return nil
}
