// Package inputs loads the demand and price files of a sweep into series.
package inputs

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/cepro/flexsizing/config"
	"github.com/cepro/flexsizing/timeseries"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// timestampLayouts are tried in order. Dates without a year first are day first.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02.01.2006",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
}

// Files are the series read for a sweep, keyed by scenario name.
type Files struct {
	HeatDemand  []float64
	Electricity map[string]timeseries.Series
	Gas         map[string]timeseries.Series
}

// Load reads every file the config refers to.
func Load(cfg config.Config) (Files, error) {
	demand, err := LoadDemand(cfg.Inputs.DemandFile)
	if err != nil {
		return Files{}, err
	}

	files := Files{
		HeatDemand:  demand,
		Electricity: make(map[string]timeseries.Series, len(cfg.ElectricityScenarios)),
		Gas:         make(map[string]timeseries.Series, len(cfg.GasScenarios)),
	}
	for _, el := range cfg.ElectricityScenarios {
		files.Electricity[el.Name], err = LoadPrices(el.File, "electricity price "+el.Name)
		if err != nil {
			return Files{}, err
		}
	}
	for _, gas := range cfg.GasScenarios {
		files.Gas[gas.Name], err = LoadPrices(gas.File, "gas price "+gas.Name)
		if err != nil {
			return Files{}, err
		}
	}
	return files, nil
}

// LoadDemand reads the demand file at `path`, see ReadDemand.
func LoadDemand(path string) ([]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open demand file: %w", err)
	}
	defer f.Close()

	values, err := ReadDemand(f)
	if err != nil {
		return nil, fmt.Errorf("read demand file %s: %w", path, err)
	}
	return values, nil
}

// LoadPrices reads the price file at `path`, see ReadPrices.
func LoadPrices(path string, name string) (timeseries.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	s, err := ReadPrices(f, name)
	if err != nil {
		return timeseries.Series{}, fmt.Errorf("read price file %s: %w", path, err)
	}
	return s, nil
}

// ReadDemand reads a CSV with a header row and one row per dispatch period. The values are taken from the last column,
// so a leading index column is ignored. Values that are missing or not numbers are returned as NaN.
func ReadDemand(r io.Reader) ([]float64, error) {
	df, err := readFrame(r)
	if err != nil {
		return nil, err
	}
	names := df.Names()
	return df.Col(names[len(names)-1]).Float(), nil
}

// ReadPrices reads a CSV with a header row, the timestamp in the first column and the price in the last.
func ReadPrices(r io.Reader, name string) (timeseries.Series, error) {
	df, err := readFrame(r)
	if err != nil {
		return timeseries.Series{}, err
	}
	names := df.Names()
	if len(names) < 2 {
		return timeseries.Series{}, fmt.Errorf("expected a timestamp and a value column, got %q", names)
	}

	records := df.Col(names[0]).Records()
	times := make([]time.Time, len(records))
	for i, record := range records {
		times[i], err = parseTimestamp(record)
		if err != nil {
			return timeseries.Series{}, fmt.Errorf("row %d: %w", i+1, err)
		}
	}

	return timeseries.New(name, times, df.Col(names[len(names)-1]).Float())
}

func readFrame(r io.Reader) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return df, fmt.Errorf("parse csv: %w", df.Err)
	}
	if df.Nrow() == 0 {
		return df, fmt.Errorf("no rows")
	}
	return df, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}
