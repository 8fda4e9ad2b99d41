// Package export writes call records as JSON or CSV for offline analysis.
//
// Exports are read-only: records are fetched through calls.Storage.List and
// rendered as-is. The messages column is emitted as a JSON array in JSON
// exports and as its stored text in CSV exports.
//
//	records, _ := store.List(ctx, &calls.Query{Model: "gpt-4o"})
//	export.NewJSONExporter(true).Export(ctx, records, os.Stdout)
package export
