package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/ijcnam/internal/config"
	"github.com/nao1215/ijcnam/internal/database"
)

// defaultHistoryLimit is the number of runs listed by default.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [file...]",
		Short: "List recorded runs and downloads",
		Long: `History lists the runs recorded in the SQLite catalog, most recent first.
With --downloads it lists the downloaded spreadsheets and their SHA3-256
digests instead, or only the named files.

Examples:
  ijcnam history
  ijcnam history -n 5 --json
  ijcnam history --downloads
  ijcnam history --downloads 2009-a-2023_ij-maladie-hors-derogatoires-selon-region_serie-annuelle.xlsx`,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of runs to list (0 lists all)")
	cmd.Flags().Bool("downloads", false, "List downloaded spreadsheets instead of runs")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	downloads, err := cmd.Flags().GetBool("downloads")
	if err != nil {
		return err
	}
	if len(args) > 0 && !downloads {
		return errors.New("file names can only be given with --downloads")
	}

	out := cmd.OutOrStdout()
	catalog, err := openExistingCatalog(cfg)
	if err != nil {
		return err
	}
	if catalog == nil {
		fmt.Fprintf(out, "No catalog found at %s\n", cfg.DBPath())
		return nil
	}
	defer catalog.Close()

	ctx := cmd.Context()
	if downloads {
		list, missing, err := lookupDownloads(ctx, catalog, args)
		if err != nil {
			return err
		}
		for _, name := range missing {
			fmt.Fprintf(cmd.ErrOrStderr(), "No download recorded for %s\n", name)
		}
		if cfg.JSONReport {
			return writeJSON(out, list)
		}
		writeDownloads(out, list)
		return nil
	}

	runs, err := catalog.ListRuns(ctx, limit)
	if err != nil {
		return err
	}
	if cfg.JSONReport {
		return writeJSON(out, runs)
	}

	observations, err := catalog.CountObservations(ctx, "")
	if err != nil {
		return err
	}
	writeRuns(out, runs)
	fmt.Fprintf(out, "\n%d observations stored in %s\n", observations, catalog.Path())
	return nil
}

// openExistingCatalog opens the catalog of cfg without creating it.
// It returns nil, nil when the catalog does not exist.
func openExistingCatalog(cfg *config.Config) (*database.Catalog, error) {
	if _, err := os.Stat(cfg.DBPath()); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	catalog, err := database.Open(cfg.DBDir(), database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return catalog, nil
}

// lookupDownloads returns every recorded download, or only the named
// files when names is not empty. Names never recorded are returned apart.
func lookupDownloads(ctx context.Context, catalog *database.Catalog, names []string) ([]database.DownloadRecord, []string, error) {
	if len(names) == 0 {
		list, err := catalog.ListDownloads(ctx)
		return list, nil, err
	}

	var list []database.DownloadRecord
	var missing []string
	for _, name := range names {
		rec, err := catalog.GetDownload(ctx, name)
		if err != nil {
			return nil, nil, err
		}
		if rec == nil {
			missing = append(missing, name)
			continue
		}
		list = append(list, *rec)
	}
	return list, missing, nil
}

// writeRuns prints one line per run.
func writeRuns(w io.Writer, runs []database.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No run recorded yet")
		return
	}

	fmt.Fprintf(w, "%-36s  %-5s  %-9s  %-19s  %s\n", "ID", "KIND", "STATUS", "STARTED", "DURATION")
	for _, r := range runs {
		duration := "-"
		if !r.FinishedAt.IsZero() {
			duration = r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond).String()
		}
		fmt.Fprintf(w, "%-36s  %-5s  %-9s  %-19s  %s\n",
			r.ID, r.Kind, r.Status, r.StartedAt.Local().Format("2006-01-02 15:04:05"), duration)
		if r.Error != "" {
			fmt.Fprintf(w, "    error: %s\n", r.Error)
		}
	}
}

// writeDownloads prints one line per downloaded spreadsheet.
func writeDownloads(w io.Writer, list []database.DownloadRecord) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No download recorded yet")
		return
	}

	for _, d := range list {
		fmt.Fprintf(w, "%s  %10d  %s  %s\n",
			d.FetchedAt.Local().Format("2006-01-02 15:04:05"), d.Size, d.SHA3, d.FileName)
	}
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
