package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapuast/internal/cli/output"
	"github.com/leapstack-labs/leapuast/internal/snapshot"
)

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [path]...",
		Short: "Store unified trees in a snapshot database",
		Long: `Convert Kotlin sources and write each unified tree as a snapshot to a
SQLite database, one row per element. The database path defaults to
snapshot.path in leapuast.yaml.`,
		Example: `  # Export the project to the configured database
  leapuast export

  # Export one directory to a specific database
  leapuast export src --db build/snapshots.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args, format)
		},
	}
	cmd.Flags().String("db", "", "Snapshot database path")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, yaml")
	return cmd
}

func runExport(cmd *cobra.Command, paths []string, format string) error {
	cc := NewCommandContext(cmd)
	r := cc.RendererFor(cmd, format)
	ctx := cmd.Context()

	dbPath := cc.Cfg.Snapshot.Path
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		dbPath = v
	}
	if dir := filepath.Dir(dbPath); dbPath != ":memory:" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}

	files, err := discoverSources(paths, cc.Cfg.Include, cc.Cfg.Exclude)
	if err != nil {
		return err
	}
	srcs, err := cc.loadSources(ctx, files)
	if err != nil {
		return err
	}

	store, err := snapshot.Open(ctx, dbPath, snapshot.WithLogger(cc.Logger))
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	snaps := make([]snapshot.Snapshot, 0, len(srcs))
	for _, src := range srcs {
		snap, err := store.Write(ctx, src.File, src.Path)
		if err != nil {
			return err
		}
		snaps = append(snaps, snap)
	}

	switch r.Mode() {
	case output.ModeJSON:
		return r.JSON(snaps)
	case output.ModeYAML:
		return r.YAML(snaps)
	}
	if len(snaps) == 0 {
		r.Warning("no sources found")
		return nil
	}
	rows := make([]table.Row, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, table.Row{s.ID, s.SourcePath, s.Package, s.NodeCount})
	}
	r.Table(table.Row{"Snapshot", "Source", "Package", "Nodes"}, rows)
	r.Success(fmt.Sprintf("Exported %d files to %s", len(snaps), dbPath))
	return nil
}
