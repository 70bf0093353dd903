// Package report tabulates sweep results into CSV files.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cepro/flexsizing/model"
	"github.com/cepro/flexsizing/sweep"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Row is one metric of one solved variant.
type Row struct {
	System              string
	ElectricityScenario string
	GasScenario         string
	CapexScenario       string
	Variant             string
	Metric              string
	Value               float64
}

// Flatten lists every metric of every solved variant, in sweep order.
func Flatten(results *sweep.Results) []Row {
	var rows []Row
	for _, scenario := range results.Scenarios {
		for _, label := range scenario.Order {
			variant := scenario.Variants[label]
			for _, nv := range variant.Metrics.Named() {
				rows = append(rows, Row{
					System:              string(scenario.Key.System),
					ElectricityScenario: scenario.Key.ElectricityScenario,
					GasScenario:         scenario.Key.GasScenario,
					CapexScenario:       scenario.Key.CapexScenario,
					Variant:             label,
					Metric:              nv.Name,
					Value:               nv.Value,
				})
			}
		}
	}
	return rows
}

// WriteRows writes the rows as CSV with a header.
func WriteRows(w io.Writer, rows []Row) error {
	n := len(rows)
	system, el, gas, capex := make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	variant, metric, value := make([]string, n), make([]string, n), make([]float64, n)
	for i, row := range rows {
		system[i] = row.System
		el[i] = row.ElectricityScenario
		gas[i] = row.GasScenario
		capex[i] = row.CapexScenario
		variant[i] = row.Variant
		metric[i] = row.Metric
		value[i] = row.Value
	}
	return writeFrame(w, dataframe.New(
		series.New(system, series.String, "system"),
		series.New(el, series.String, "el_scenario"),
		series.New(gas, series.String, "gas_scenario"),
		series.New(capex, series.String, "capex_scenario"),
		series.New(variant, series.String, "variant"),
		series.New(metric, series.String, "metric"),
		series.New(value, series.Float, "value"),
	))
}

// WriteFailures writes one row per failed job.
func WriteFailures(w io.Writer, failures []sweep.Failure) error {
	n := len(failures)
	system, el, gas, capex := make([]string, n), make([]string, n), make([]string, n), make([]string, n)
	variant, kind, reason := make([]string, n), make([]string, n), make([]string, n)
	for i, f := range failures {
		system[i] = string(f.Key.System)
		el[i] = f.Key.ElectricityScenario
		gas[i] = f.Key.GasScenario
		capex[i] = f.Key.CapexScenario
		variant[i] = f.Variant
		kind[i] = string(f.Kind)
		reason[i] = f.Reason
	}
	return writeFrame(w, dataframe.New(
		series.New(system, series.String, "system"),
		series.New(el, series.String, "el_scenario"),
		series.New(gas, series.String, "gas_scenario"),
		series.New(capex, series.String, "capex_scenario"),
		series.New(variant, series.String, "variant"),
		series.New(kind, series.String, "kind"),
		series.New(reason, series.String, "reason"),
	))
}

// WriteFlows writes a flow table with one row per period and one column per flow.
func WriteFlows(w io.Writer, flows model.FlowTable) error {
	times := make([]string, len(flows.Times))
	for i, t := range flows.Times {
		times[i] = t.UTC().Format(time.RFC3339)
	}
	cols := []series.Series{series.New(times, series.String, "time")}
	for i, name := range flows.Columns {
		cols = append(cols, series.New(flows.Values[i], series.Float, name))
	}
	return writeFrame(w, dataframe.New(cols...))
}

// FlowFileName returns a file name for the flow table of one solved variant.
func FlowFileName(key sweep.Key, variant string) string {
	parts := []string{string(key.System), key.ElectricityScenario, key.GasScenario}
	if key.CapexScenario != "" {
		parts = append(parts, key.CapexScenario)
	}
	parts = append(parts, variant)
	return "flows_" + sanitize(strings.Join(parts, "_")) + ".csv"
}

func writeFrame(w io.Writer, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("build table: %w", df.Err)
	}
	err := df.WriteCSV(w)
	if err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, s)
}
