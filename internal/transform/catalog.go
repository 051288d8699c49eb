package transform

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/nao1215/ijcnam/internal/model"
)

// LastPublishedYear is the last year covered by the current series.
const LastPublishedYear = 2023

// IJ categories as they appear in source file names.
const (
	CategorySickness          = "maladie-hors-derogatoires"
	CategoryWorkAccident      = "accident-du-travail-maladie-professionnelle"
	CategoryTherapeuticPart   = "maladie-temps-partiel-therapeutique"
	CategoryMaternityAdoption = "maternite-adoption"
)

// Dataset names accepted on the command line.
const (
	DatasetAge    = "age"
	DatasetAgeSex = "age_sexe"
	DatasetNAF    = "naf"
	DatasetRegion = "region"
)

// UnitSheet pairs a unit label with the sheet holding its values.
type UnitSheet struct {
	Unit  string
	Sheet string
}

// Source is one spreadsheet of the raw directory.
type Source struct {
	// Category is the IJ type, also used as the "Type IJ" value.
	Category string

	// StartYear is the first year of the series.
	StartYear int

	// Dimension is the breakdown in the file name ("age", "region"...).
	Dimension string

	// Sex is "femmes" or "hommes" for sex-specific files, empty otherwise.
	Sex string
}

// FileName returns the published file name of the source:
// {start}-a-{end}_ij-{category}-selon-{dimension}[-{sex}]_serie-annuelle.xlsx
func (s Source) FileName() string {
	dimension := s.Dimension
	if s.Sex != "" {
		dimension += "-" + s.Sex
	}
	return strconv.Itoa(s.StartYear) + "-a-" + strconv.Itoa(LastPublishedYear) +
		"_ij-" + s.Category + "-selon-" + dimension + "_serie-annuelle.xlsx"
}

// DatasetSpec describes how one clean dataset is built.
type DatasetSpec struct {
	// Name is the short dataset name.
	Name string

	// FileName is the CSV written to the clean directory.
	FileName string

	// IdentifierColumns are read from every sheet. A Sexe column is appended
	// for sources carrying a sex.
	IdentifierColumns []string

	// Sources are read in order.
	Sources []Source

	// Sheets are read in order for every source.
	Sheets []UnitSheet
}

// Columns returns the identifier columns of the built dataset.
func (d DatasetSpec) Columns() []string {
	cols := append(make([]string, 0, len(d.IdentifierColumns)+1), d.IdentifierColumns...)
	for _, s := range d.Sources {
		if s.Sex != "" {
			return append(cols, model.ColumnSex)
		}
	}
	return cols
}

// unitSheets returns the three unit sheets of a dimension, in the order
// stoppages, days, amount.
func unitSheets(suffix string) []UnitSheet {
	return []UnitSheet{
		{Unit: UnitStoppages, Sheet: "tous Nb arr, f(" + suffix + ")"},
		{Unit: UnitDays, Sheet: "tous Nb jour, f(" + suffix + ")"},
		{Unit: UnitAmount, Sheet: "tous Mnt, f(" + suffix + ")"},
	}
}

// Catalog returns the four datasets in output order.
func Catalog() []DatasetSpec {
	ageSheets := unitSheets("âge")
	return []DatasetSpec{
		{
			Name:              DatasetAge,
			FileName:          "ij_cnam_par_age.csv",
			IdentifierColumns: []string{model.ColumnLabel, model.ColumnAgeBracket},
			Sources: []Source{
				{Category: CategorySickness, StartYear: 2009, Dimension: "age"},
				{Category: CategoryWorkAccident, StartYear: 2009, Dimension: "age"},
				// No maternity data is published before 2010.
				{Category: CategoryMaternityAdoption, StartYear: 2010, Dimension: "age"},
			},
			Sheets: ageSheets,
		},
		{
			Name:              DatasetAgeSex,
			FileName:          "ij_cnam_par_age_sexe.csv",
			IdentifierColumns: []string{model.ColumnLabel, model.ColumnAgeBracket},
			Sources: []Source{
				{Category: CategorySickness, StartYear: 2009, Dimension: "age", Sex: "femmes"},
				{Category: CategorySickness, StartYear: 2009, Dimension: "age", Sex: "hommes"},
			},
			Sheets: ageSheets,
		},
		{
			Name:              DatasetNAF,
			FileName:          "ij_cnam_par_naf.csv",
			IdentifierColumns: []string{model.ColumnLabel, model.ColumnCode},
			Sources: []Source{
				{Category: CategorySickness, StartYear: 2014, Dimension: "code-naf-employeur"},
				{Category: CategoryWorkAccident, StartYear: 2014, Dimension: "code-naf-employeur"},
				{Category: CategoryTherapeuticPart, StartYear: 2014, Dimension: "code-naf-employeur"},
				{Category: CategoryMaternityAdoption, StartYear: 2014, Dimension: "code-naf-employeur"},
			},
			Sheets: unitSheets("sectNAF"),
		},
		{
			Name:              DatasetRegion,
			FileName:          "ij_cnam_par_region.csv",
			IdentifierColumns: []string{model.ColumnLabel, model.ColumnCode},
			Sources: []Source{
				{Category: CategorySickness, StartYear: 2009, Dimension: "region"},
			},
			Sheets: unitSheets("rég"),
		},
	}
}

// SelectDatasets returns the catalog entries with the given names, in
// catalog order. No names selects the whole catalog.
func SelectDatasets(names []string) ([]DatasetSpec, error) {
	all := Catalog()
	if len(names) == 0 {
		return all, nil
	}

	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}

	selected := make([]DatasetSpec, 0, len(names))
	for _, d := range all {
		if wanted[d.Name] {
			selected = append(selected, d)
			delete(wanted, d.Name)
		}
	}
	if len(wanted) > 0 {
		unknown := make([]string, 0, len(wanted))
		for n := range wanted {
			unknown = append(unknown, n)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %s (known: %s, %s, %s, %s)", ErrUnknownDataset,
			strings.Join(unknown, ", "), DatasetAge, DatasetAgeSex, DatasetNAF, DatasetRegion)
	}
	return selected, nil
}
