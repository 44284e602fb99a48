package benchmark

import (
	"fmt"
	"log"
	"slices"
	"strconv"
	"time"

	"github.com/Oscar-GGV/ATOMreservations/utils"
)

type MetricsExporter interface {
	Export(records [][]string) error
}

// Sample is the client side view of one request of a load run.
type Sample struct {
	Id      string
	Start   time.Time
	End     time.Time
	Outcome string
}

func (s Sample) Latency() time.Duration {
	return s.End.Sub(s.Start)
}

type Results struct {
	Requests            int
	OutcomeCounts       map[string]int
	AverageResponseTime time.Duration
	P95ResponseTime     time.Duration
	Throughput          float64 // requests per second
}

func ComputeResults(samples []Sample) Results {
	results := Results{Requests: len(samples), OutcomeCounts: make(map[string]int)}
	if len(samples) == 0 {
		return results
	}

	latencies := make([]time.Duration, 0, len(samples))
	var total time.Duration
	minimumTimestamp := samples[0].Start
	maximumTimestamp := samples[0].End
	for _, sample := range samples {
		results.OutcomeCounts[sample.Outcome]++
		latencies = append(latencies, sample.Latency())
		total += sample.Latency()
		if sample.Start.Before(minimumTimestamp) {
			minimumTimestamp = sample.Start
		}
		if sample.End.After(maximumTimestamp) {
			maximumTimestamp = sample.End
		}
	}

	slices.Sort(latencies)
	results.AverageResponseTime = total / time.Duration(len(samples))
	results.P95ResponseTime = latencies[(len(latencies)*95-1)/100]
	if elapsed := maximumTimestamp.Sub(minimumTimestamp); elapsed > 0 {
		results.Throughput = float64(len(samples)) / elapsed.Seconds()
	}
	return results
}

func ExportResults(samples []Sample, longMetricsExporter MetricsExporter, shortMetricsExporter MetricsExporter) error {
	records := [][]string{{"id", "startMillis", "latencyMillis", "outcome"}}
	for _, sample := range samples {
		records = append(records, []string{
			sample.Id,
			strconv.FormatInt(sample.Start.UnixMilli(), 10),
			strconv.FormatInt(sample.Latency().Milliseconds(), 10),
			sample.Outcome,
		})
	}
	if err := longMetricsExporter.Export(records); err != nil {
		return err
	}

	results := ComputeResults(samples)
	outcomes := make([]string, 0, len(results.OutcomeCounts))
	for outcome := range results.OutcomeCounts {
		outcomes = append(outcomes, outcome)
	}
	slices.Sort(outcomes)

	header := []string{"requests", "averageResponseTimeMillis", "p95ResponseTimeMillis", "throughput"}
	row := []string{
		strconv.Itoa(results.Requests),
		strconv.FormatInt(results.AverageResponseTime.Milliseconds(), 10),
		strconv.FormatInt(results.P95ResponseTime.Milliseconds(), 10),
		strconv.FormatFloat(results.Throughput, 'f', 3, 64),
	}
	for _, outcome := range outcomes {
		header = append(header, outcome)
		row = append(row, strconv.Itoa(results.OutcomeCounts[outcome]))
	}

	return shortMetricsExporter.Export([][]string{header, row})
}

type CsvExporter struct {
	name string
}

func NewCsvExporter(name string) *CsvExporter {
	return &CsvExporter{name: name}
}

func (l *CsvExporter) Export(records [][]string) error {
	return utils.ExportToCsv(l.name, records)
}

type LogExporter struct {
	name string
}

func NewLogExporter(name string) *LogExporter {
	return &LogExporter{name: name}
}

func (l *LogExporter) Export(records [][]string) error {
	for rowIndex := 1; rowIndex < len(records); rowIndex++ {
		entry := fmt.Sprintf("table: %v, row: %v, {", l.name, rowIndex)
		sep := ""
		for colIndex := 0; colIndex < len(records[rowIndex]); colIndex++ {
			entry += sep
			entry += fmt.Sprintf("%v: %v", records[0][colIndex], records[rowIndex][colIndex])
			sep = ", "
		}
		entry += "}"
		log.Println(entry)
	}

	return nil
}
