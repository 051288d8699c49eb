package main

import (
	"encoding/csv"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/ijcnam/internal/database"
	"github.com/nao1215/ijcnam/internal/model"
	"github.com/nao1215/ijcnam/internal/transform"
)

// NewQueryCmd creates the query command.
func NewQueryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <dataset>",
		Short: "Print the stored observations of a dataset as CSV",
		Long: `Query prints the observations the last clean stored in the SQLite catalog
for one dataset (age, age_sexe, naf or region), optionally for one year.

Examples:
  ijcnam query region
  ijcnam query naf --year 2023 > naf-2023.csv`,
		Args: cobra.ExactArgs(1),
		RunE: runQueryCmd,
	}

	cmd.Flags().String("year", "", "Only print this year")

	return cmd
}

// runQueryCmd executes the query command.
func runQueryCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	specs, err := transform.SelectDatasets(args)
	if err != nil {
		return err
	}
	year, err := cmd.Flags().GetString("year")
	if err != nil {
		return err
	}

	catalog, err := openExistingCatalog(cfg)
	if err != nil {
		return err
	}
	if catalog == nil {
		return fmt.Errorf("no catalog found at %s (run \"ijcnam clean\" first)", cfg.DBPath())
	}
	defer catalog.Close()

	observations, err := catalog.QueryObservations(cmd.Context(), args[0], year)
	if err != nil {
		return err
	}

	// Same layout as the clean CSV of the dataset.
	idCols := specs[0].Columns()
	w := csv.NewWriter(cmd.OutOrStdout())
	header := append(append([]string{}, idCols...), model.ColumnYear, model.ColumnValue, model.ColumnType, model.ColumnUnit)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, o := range observations {
		row := make([]string, 0, len(header))
		for i, col := range idCols {
			row = append(row, observationIdentifier(o, i, col))
		}
		value := model.Record{Value: o.Value, Missing: o.Missing}.FormattedValue()
		row = append(row, o.Year, value, o.Type, o.Unit)
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// observationIdentifier maps identifier column i of a dataset back to the
// catalog column it was stored in.
func observationIdentifier(o database.Observation, i int, col string) string {
	switch {
	case col == model.ColumnSex:
		return o.Sex
	case i == 0:
		return o.Label
	case i == 1:
		return o.SubLabel
	default:
		return ""
	}
}
