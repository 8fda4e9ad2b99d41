package export

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"

	"mercator-hq/chatrelay/pkg/calls"
)

// CSVExporter exports call records to CSV format.
type CSVExporter struct {
	// IncludeHeader includes a header row with column names.
	IncludeHeader bool
}

// NewCSVExporter creates a new CSV exporter.
func NewCSVExporter(includeHeader bool) *CSVExporter {
	return &CSVExporter{
		IncludeHeader: includeHeader,
	}
}

// Header is the CSV column order, matching the api_calls table.
var Header = []string{
	"uuid", "messages", "model", "response_format", "temperature",
	"reply", "prompt_tokens", "completion_tokens", "total_tokens",
	"call_duration", "error_flag", "call_time", "request_ip",
}

// Export writes call records to the provided writer in CSV format.
func (e *CSVExporter) Export(ctx context.Context, records []*calls.CallRecord, w io.Writer) error {
	writer := csv.NewWriter(w)

	if e.IncludeHeader {
		if err := writer.Write(Header); err != nil {
			return calls.NewExportError("csv", len(records), err)
		}
	}

	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writer.Write(recordToRow(record)); err != nil {
			return calls.NewExportError("csv", len(records), err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return calls.NewExportError("csv", len(records), err)
	}

	return nil
}

// recordToRow converts a call record to a CSV row.
func recordToRow(record *calls.CallRecord) []string {
	callTime := ""
	if !record.CallTime.IsZero() {
		callTime = calls.FormatCallTime(record.CallTime)
	}

	return []string{
		record.UUID,
		record.Messages,
		record.Model,
		record.ResponseFormat,
		strconv.FormatFloat(record.Temperature, 'f', -1, 64),
		record.Reply,
		strconv.Itoa(record.PromptTokens),
		strconv.Itoa(record.CompletionTokens),
		strconv.Itoa(record.TotalTokens),
		strconv.FormatFloat(record.CallDuration, 'f', 6, 64),
		strconv.Itoa(record.ErrorFlag),
		callTime,
		record.RequestIP,
	}
}

// New returns the exporter for format ("json" or "csv").
func New(format string, pretty bool) (calls.Exporter, bool) {
	switch format {
	case "json":
		return NewJSONExporter(pretty), true
	case "csv":
		return NewCSVExporter(true), true
	default:
		return nil, false
	}
}
