package export

import (
	"context"
	"encoding/json"
	"io"

	"mercator-hq/chatrelay/pkg/calls"
)

// JSONExporter exports call records as a JSON array.
type JSONExporter struct {
	// Pretty enables pretty-printing with indentation.
	Pretty bool
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(pretty bool) *JSONExporter {
	return &JSONExporter{
		Pretty: pretty,
	}
}

// jsonRecord replaces the stored messages string with the decoded array.
type jsonRecord struct {
	*calls.CallRecord
	Messages json.RawMessage `json:"messages"`
}

// Export writes records to w as a JSON array. Non-ASCII and HTML
// characters are written literally.
func (e *JSONExporter) Export(ctx context.Context, records []*calls.CallRecord, w io.Writer) error {
	out := make([]jsonRecord, 0, len(records))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw := json.RawMessage(record.Messages)
		if !json.Valid(raw) {
			// Keep unparseable values visible rather than failing the export.
			quoted, err := json.Marshal(record.Messages)
			if err != nil {
				return calls.NewExportError("json", len(records), err)
			}
			raw = quoted
		}
		out = append(out, jsonRecord{CallRecord: record, Messages: raw})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if e.Pretty {
		enc.SetIndent("", "  ")
	}

	if err := enc.Encode(out); err != nil {
		return calls.NewExportError("json", len(records), err)
	}

	return nil
}
