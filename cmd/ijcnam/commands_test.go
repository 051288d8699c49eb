package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/ijcnam/internal/config"
	"github.com/nao1215/ijcnam/internal/model"
	"github.com/nao1215/ijcnam/internal/transform"
)

// regionSpec returns the region dataset of the catalog.
func regionSpec(t *testing.T) transform.DatasetSpec {
	t.Helper()

	specs, err := transform.SelectDatasets([]string{transform.DatasetRegion})
	if err != nil {
		t.Fatalf("SelectDatasets() error = %v", err)
	}
	return specs[0]
}

// regionWorkbook builds a region workbook with two regions and two years.
// Corse has no 2023 value.
func regionWorkbook(t *testing.T) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	set := func(sheet string, col, row int, v any) {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			t.Fatal(err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			t.Fatal(err)
		}
	}

	header := transform.HeaderRowsSkipped + 1
	for _, us := range regionSpec(t).Sheets {
		if _, err := f.NewSheet(us.Sheet); err != nil {
			t.Fatal(err)
		}
		set(us.Sheet, 1, 1, "Indemnités journalières par région")
		for c, v := range []any{model.ColumnLabel, model.ColumnCode, 2022, 2023} {
			set(us.Sheet, c+1, header, v)
		}
		for c, v := range []any{"Bretagne", "53", 1000, 2000} {
			set(us.Sheet, c+1, header+1, v)
		}
		for c, v := range []any{"Corse", "94", 500} {
			set(us.Sheet, c+1, header+2, v)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("failed to write workbook: %v", err)
	}
	return buf.Bytes()
}

// newOpenDataSite serves an index page, two topic pages and the region
// workbook. One topic page has no spreadsheet.
func newOpenDataSite(t *testing.T) *httptest.Server {
	t.Helper()

	workbook := regionWorkbook(t)
	fileName := regionSpec(t).Sources[0].FileName()

	mux := http.NewServeMux()
	mux.HandleFunc("/seed", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body>
			<a href="/etudes-et-donnees/ij-region">Par région</a>
			<a href="/etudes-et-donnees/ij-methodologie">Méthodologie</a>
			<a href="/etudes-et-donnees/autre-theme">Autre</a>
			<a href="https://elsewhere.example.org/ij">Ailleurs</a>
		</body></html>`)
	})
	mux.HandleFunc("/etudes-et-donnees/ij-region", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `<html><body><a href="/files/%s?v=2">Télécharger</a></body></html>`, fileName)
	})
	mux.HandleFunc("/etudes-et-donnees/ij-methodologie", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><p>Pas de fichier</p></body></html>`)
	})
	mux.HandleFunc("/files/"+fileName, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(workbook)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), err
}

func readCSV(t *testing.T, r *strings.Reader) [][]string {
	t.Helper()

	records, err := csv.NewReader(r).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV: %v", err)
	}
	return records
}

func TestRunCommand_EndToEnd(t *testing.T) {
	t.Parallel()

	srv := newOpenDataSite(t)
	root := t.TempDir()
	cfgPath := writeConfigFile(t, "log_level: error\n")
	common := []string{"--root", root, "--config", cfgPath}
	spec := regionSpec(t)

	// run: crawl then clean
	out, err := execute(t, append([]string{"run", "--seed-url", srv.URL + "/seed", "--only", "region"}, common...)...)
	if err != nil {
		t.Fatalf("run failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"2 links found",
		"No spreadsheet found on this page.",
		"Downloaded: " + spec.Sources[0].FileName(),
		"Loading region data: maladie-hors-derogatoires",
		"Wrote 12 rows to",
		"Status:    Complete",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("run output missing %q\n%s", want, out)
		}
	}

	cfg := config.NewConfig()
	cfg.ProjectRoot = root
	data, err := os.ReadFile(filepath.Join(cfg.CleanDir(), spec.FileName))
	if err != nil {
		t.Fatalf("CSV not written: %v", err)
	}
	records := readCSV(t, strings.NewReader(string(data)))
	if len(records) != 13 {
		t.Fatalf("CSV has %d records, want 13", len(records))
	}
	wantHeader := []string{model.ColumnLabel, model.ColumnCode, model.ColumnYear, model.ColumnValue, model.ColumnType, model.ColumnUnit}
	if strings.Join(records[0], "|") != strings.Join(wantHeader, "|") {
		t.Errorf("header = %v, want %v", records[0], wantHeader)
	}
	wantFirst := []string{"Bretagne", "53", "2022", "1", transform.CategorySickness, transform.UnitStoppages}
	if strings.Join(records[1], "|") != strings.Join(wantFirst, "|") {
		t.Errorf("first record = %q, want %q", records[1], wantFirst)
	}
	if records[4][0] != "Corse" || records[4][2] != "2023" || records[4][3] != "" {
		t.Errorf("missing value record = %q, want empty Corse 2023 value", records[4])
	}

	// crawl again: the spreadsheet is not fetched twice
	out, err = execute(t, append([]string{"crawl", "--seed-url", srv.URL + "/seed"}, common...)...)
	if err != nil {
		t.Fatalf("crawl failed: %v", err)
	}
	if !strings.Contains(out, "Already downloaded: "+spec.Sources[0].FileName()) {
		t.Errorf("second crawl should skip the existing file\n%s", out)
	}

	// history lists both runs, most recent first
	out, err = execute(t, append([]string{"history"}, common...)...)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if strings.Count(out, "succeeded") != 2 {
		t.Errorf("history should list two successful runs\n%s", out)
	}
	if strings.Index(out, " crawl ") > strings.Index(out, " run ") {
		t.Errorf("history should list the crawl first\n%s", out)
	}
	if !strings.Contains(out, "12 observations stored") {
		t.Errorf("history should count observations\n%s", out)
	}

	out, err = execute(t, append([]string{"history", "--downloads"}, common...)...)
	if err != nil {
		t.Fatalf("history --downloads failed: %v", err)
	}
	if !strings.Contains(out, spec.Sources[0].FileName()) {
		t.Errorf("download list should contain the workbook\n%s", out)
	}

	out, err = execute(t, append([]string{"history", "--downloads", spec.Sources[0].FileName(), "absent.xlsx"}, common...)...)
	if err != nil {
		t.Fatalf("history --downloads <file> failed: %v", err)
	}
	if strings.Count(out, "\n") != 1 || !strings.Contains(out, spec.Sources[0].FileName()) {
		t.Errorf("lookup should print only the recorded workbook\n%s", out)
	}

	out, err = execute(t, append([]string{"history", "--downloads", "absent.xlsx"}, common...)...)
	if err != nil {
		t.Fatalf("history --downloads absent.xlsx failed: %v", err)
	}
	if !strings.Contains(out, "No download recorded yet") {
		t.Errorf("unknown file should list nothing\n%s", out)
	}

	if _, err := execute(t, append([]string{"history", "absent.xlsx"}, common...)...); err == nil {
		t.Error("file names without --downloads should fail")
	}

	// query reads the catalog back
	out, err = execute(t, append([]string{"query", "region", "--year", "2023"}, common...)...)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	rows := readCSV(t, strings.NewReader(out))
	if len(rows) != 7 {
		t.Fatalf("query returned %d records, want 7\n%s", len(rows), out)
	}
	if strings.Join(rows[0], "|") != strings.Join(records[0], "|") {
		t.Errorf("query header = %q, want the clean CSV header %q", rows[0], records[0])
	}
	if rows[2][0] != "Corse" || rows[2][3] != "" {
		t.Errorf("query missing value row = %q", rows[2])
	}
}

func TestCleanCommand_MissingSpreadsheet(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfgPath := writeConfigFile(t, "log_level: error\n")

	out, err := execute(t, "clean", "--root", root, "--config", cfgPath, "--no-db", "--only", "naf")
	if !errors.Is(err, transform.ErrSourceNotFound) {
		t.Fatalf("clean error = %v, want ErrSourceNotFound", err)
	}
	if !strings.Contains(out, "ERROR - ") {
		t.Errorf("report should show the error\n%s", out)
	}

	cfg := config.NewConfig()
	cfg.ProjectRoot = root
	if _, err := os.Stat(cfg.DBPath()); !os.IsNotExist(err) {
		t.Error("--no-db should not create the catalog")
	}
}

func TestCleanCommand_UnknownDataset(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, "log_level: error\n")
	_, err := execute(t, "clean", "--root", t.TempDir(), "--config", cfgPath, "--no-db", "--only", "departement")
	if !errors.Is(err, transform.ErrUnknownDataset) {
		t.Errorf("clean error = %v, want ErrUnknownDataset", err)
	}
}

func TestHistoryCommand_NoCatalog(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, "log_level: error\n")
	out, err := execute(t, "history", "--root", t.TempDir(), "--config", cfgPath)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No catalog found") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestQueryCommand_Errors(t *testing.T) {
	t.Parallel()

	cfgPath := writeConfigFile(t, "log_level: error\n")

	t.Run("unknown dataset", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "query", "nope", "--root", t.TempDir(), "--config", cfgPath)
		if !errors.Is(err, transform.ErrUnknownDataset) {
			t.Errorf("query error = %v, want ErrUnknownDataset", err)
		}
	})

	t.Run("no catalog", func(t *testing.T) {
		t.Parallel()

		_, err := execute(t, "query", "age", "--root", t.TempDir(), "--config", cfgPath)
		if err == nil || !strings.Contains(err.Error(), "no catalog found") {
			t.Errorf("query error = %v, want no catalog error", err)
		}
	})
}
