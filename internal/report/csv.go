package report

import (
	"bytes"
	"encoding/csv"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cdrscan/cdrscan/internal/model"
)

// CSVWriter outputs flattened key,value indicator rows.
// This is the export format downstream spreadsheet tooling consumes:
// one row per indicator, nested statistics flattened with "__".
type CSVWriter struct {
	baseWriter
}

// NewCSVWriter creates a CSVWriter that outputs to the given writer.
func NewCSVWriter(output io.Writer) *CSVWriter {
	return &CSVWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report as flattened key,value rows.
func (w *CSVWriter) Write(report *model.AnalysisReport) (int, error) {
	if report.SimpleReport == nil {
		report.SimpleReport = model.NewSimpleReport(report)
	}

	rows := [][]string{{"key", "value"}}
	rows = append(rows,
		[]string{"subject", report.Subject},
		[]string{"report_id", report.ReportID},
		[]string{"date_analyzed", report.DateAnalyzed.Format("2006-01-02 15:04:05")},
	)

	if report.Ingest != nil {
		rows = append(rows,
			intRow("record_count", report.Ingest.RecordCount),
			intRow("ignored_records", report.Ingest.IgnoredRecords.All),
			intRow("duplicate_records", report.Ingest.DuplicateRecords),
			intRow("antenna_count", report.Ingest.AntennaCount),
		)
	}

	rows = append(rows, w.indicatorRows(report.Indicators)...)
	rows = append(rows, w.networkRows(report.Network)...)
	rows = append(rows, w.severityRows(report.SimpleReport)...)

	return w.writeRows(rows)
}

// WriteSimple outputs the summary as flattened key,value rows.
func (w *CSVWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	rows := [][]string{
		{"key", "value"},
		{"subject", report.Subject},
		{"date_analyzed", report.DateAnalyzed.Format("2006-01-02 15:04:05")},
		intRow("record_count", report.RecordCount),
		{"data_present", strings.Join(report.DataPresent, ";")},
	}
	rows = append(rows, w.severityRows(report)...)

	return w.writeRows(rows)
}

// indicatorRows flattens the behavioral indicator section.
func (w *CSVWriter) indicatorRows(ind *model.IndicatorReport) [][]string {
	if ind == nil {
		return nil
	}

	rows := [][]string{
		intRow("active_days", ind.ActiveDays),
		intRow("number_of_contacts", ind.NumberOfContacts),
		intRow("number_of_interactions", ind.NumberOfInteractions),
		intRow("number_of_interactions_in", ind.NumberOfInteractionsIn),
		intRow("number_of_interactions_out", ind.NumberOfInteractionsOut),
		floatRow("percent_nocturnal", ind.PercentNocturnal),
		floatRow("percent_initiated", ind.PercentInitiated),
		floatRow("entropy_of_contacts", ind.EntropyOfContacts),
		floatRow("percent_pareto_interactions", ind.PercentParetoInteractions),
		intRow("number_of_antennas", ind.NumberOfAntennas),
		floatRow("entropy_of_antennas", ind.EntropyOfAntennas),
		floatRow("percent_at_home", ind.PercentAtHome),
		floatRow("radius_of_gyration", ind.RadiusOfGyration),
		intRow("frequent_antennas", ind.FrequentAntennas),
	}
	rows = append(rows, statRows("call_duration", ind.CallDuration)...)
	rows = append(rows, statRows("balance_of_contacts", ind.BalanceOfContacts)...)
	rows = append(rows, statRows("interactions_per_contact", ind.InteractionsPerContact)...)
	rows = append(rows, statRows("inter_event_time", ind.InterEventTime)...)

	// Weekly distributions, sorted by indicator name for stable output.
	names := make([]string, 0, len(ind.Weekly))
	for name := range ind.Weekly {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, statRows(name+"__weekly", ind.Weekly[name])...)
	}

	return rows
}

// networkRows flattens the ego network section.
func (w *CSVWriter) networkRows(net *model.NetworkReport) [][]string {
	if net == nil {
		return nil
	}

	rows := [][]string{
		floatRow("clustering_unweighted", net.ClusteringUnweighted),
		floatRow("clustering_weighted", net.ClusteringWeighted),
		floatRow("percent_outofnetwork_calls", net.PercentOutOfNetworkCalls),
		floatRow("percent_outofnetwork_texts", net.PercentOutOfNetworkTexts),
		floatRow("percent_outofnetwork_contacts", net.PercentOutOfNetworkContacts),
		floatRow("percent_outofnetwork_durations", net.PercentOutOfNetworkDurations),
		intRow("in_network_count", net.InNetworkCount),
		intRow("out_of_network_count", net.OutOfNetworkCount),
	}

	names := make([]string, 0, len(net.Assortativity))
	for name := range net.Assortativity {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, floatRow("assortativity__"+name, net.Assortativity[name]))
	}

	return rows
}

// severityRows flattens the finding counts.
func (w *CSVWriter) severityRows(simple *model.SimpleReport) [][]string {
	return [][]string{
		intRow("critical_count", simple.CriticalCount),
		intRow("high_count", simple.HighCount),
		intRow("medium_count", simple.MediumCount),
		intRow("low_count", simple.LowCount),
		intRow("info_count", simple.InfoCount),
		intRow("total_findings", simple.TotalFindings()),
	}
}

// writeRows renders the rows through encoding/csv and writes them out in
// one call so the byte count matches what reached the destination.
func (w *CSVWriter) writeRows(rows [][]string) (int, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.WriteAll(rows); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}

// statRows flattens a Stats distribution under the given prefix.
func statRows(prefix string, s model.Stats) [][]string {
	return [][]string{
		floatRow(prefix+"__mean", s.Mean),
		floatRow(prefix+"__std", s.Std),
		floatRow(prefix+"__median", s.Median),
		floatRow(prefix+"__min", s.Min),
		floatRow(prefix+"__max", s.Max),
	}
}

func intRow(key string, v int) []string {
	return []string{key, strconv.Itoa(v)}
}

func floatRow(key string, v float64) []string {
	return []string{key, strconv.FormatFloat(v, 'f', -1, 64)}
}
