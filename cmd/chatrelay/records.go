package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/chatrelay/pkg/calls"
	"mercator-hq/chatrelay/pkg/calls/export"
	"mercator-hq/chatrelay/pkg/calls/storage"
	"mercator-hq/chatrelay/pkg/cli"
)

// exportPageSize is the number of records read per page during export.
const exportPageSize = 500

var recordsFlags struct {
	model     string
	since     string
	until     string
	errorFlag int
	limit     int
	offset    int
	format    string
}

var exportFlags struct {
	format string
	output string
	pretty bool
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Inspect recorded calls",
	Long: `Read-only inspection of the call store.

Records are never modified: there is no command to update or delete them.

Examples:
  # List the 20 most recent calls for a model
  chatrelay records list --model gpt-4o --limit 20

  # Show one call
  chatrelay records get 3f0c8a4e-6d1b-4a8e-9c7a-2b5d1e0f9a11

  # Count flagged replies since the start of the year
  chatrelay records count --error-flag 1 --since 2026-01-01T00:00:00Z

  # Export everything to CSV
  chatrelay records export --format csv --output calls.csv`,
}

var recordsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded calls, newest first",
	RunE:  listRecords,
}

var recordsGetCmd = &cobra.Command{
	Use:   "get <uuid>",
	Short: "Show one recorded call",
	Args:  cobra.ExactArgs(1),
	RunE:  getRecord,
}

var recordsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count recorded calls matching the filters",
	RunE:  countRecords,
}

var recordsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded calls as JSON or CSV",
	RunE:  exportRecords,
}

func init() {
	rootCmd.AddCommand(recordsCmd)
	recordsCmd.AddCommand(recordsListCmd, recordsGetCmd, recordsCountCmd, recordsExportCmd)

	for _, c := range []*cobra.Command{recordsListCmd, recordsCountCmd, recordsExportCmd} {
		c.Flags().StringVar(&recordsFlags.model, "model", "", "filter by model")
		c.Flags().StringVar(&recordsFlags.since, "since", "", "only calls at or after this time (RFC3339)")
		c.Flags().StringVar(&recordsFlags.until, "until", "", "only calls before this time (RFC3339)")
		c.Flags().IntVar(&recordsFlags.errorFlag, "error-flag", -1, "filter by error flag (0 or 1)")
	}

	recordsListCmd.Flags().IntVar(&recordsFlags.limit, "limit", calls.DefaultListLimit, "max results")
	recordsListCmd.Flags().IntVar(&recordsFlags.offset, "offset", 0, "pagination offset")
	recordsListCmd.Flags().StringVar(&recordsFlags.format, "format", "text", "output format: text, json")
	recordsGetCmd.Flags().StringVar(&recordsFlags.format, "format", "text", "output format: text, json")
	recordsCountCmd.Flags().StringVar(&recordsFlags.format, "format", "text", "output format: text, json")

	recordsExportCmd.Flags().IntVar(&recordsFlags.limit, "limit", 0, "max records to export (0 exports all)")
	recordsExportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "export format: json, csv")
	recordsExportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
	recordsExportCmd.Flags().BoolVar(&exportFlags.pretty, "pretty", false, "indent JSON output")
}

// recordTable renders call records as text columns.
type recordTable []*calls.CallRecord

func (t recordTable) Header() []string {
	return []string{"UUID", "CALL_TIME", "MODEL", "PROMPT", "COMPLETION", "DURATION", "FLAG", "IP"}
}

func (t recordTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{
			r.UUID,
			r.CallTime.UTC().Format(time.RFC3339),
			r.Model,
			strconv.Itoa(r.PromptTokens),
			strconv.Itoa(r.CompletionTokens),
			strconv.FormatFloat(r.CallDuration, 'f', 3, 64) + "s",
			strconv.Itoa(r.ErrorFlag),
			r.RequestIP,
		})
	}
	return rows
}

// recordDetail renders a single record as field/value rows.
type recordDetail struct {
	*calls.CallRecord
}

func (d recordDetail) Header() []string {
	return []string{"FIELD", "VALUE"}
}

func (d recordDetail) Rows() [][]string {
	r := d.CallRecord
	return [][]string{
		{"uuid", r.UUID},
		{"call_time", calls.FormatCallTime(r.CallTime)},
		{"model", r.Model},
		{"response_format", r.ResponseFormat},
		{"temperature", strconv.FormatFloat(r.Temperature, 'g', -1, 64)},
		{"messages", r.Messages},
		{"reply", strconv.Quote(r.Reply)},
		{"prompt_tokens", strconv.Itoa(r.PromptTokens)},
		{"completion_tokens", strconv.Itoa(r.CompletionTokens)},
		{"total_tokens", strconv.Itoa(r.TotalTokens)},
		{"call_duration", strconv.FormatFloat(r.CallDuration, 'f', 6, 64)},
		{"error_flag", strconv.Itoa(r.ErrorFlag)},
		{"request_ip", r.RequestIP},
	}
}

type countResult struct {
	Count int64 `json:"count"`
}

func (c countResult) String() string {
	return strconv.FormatInt(c.Count, 10)
}

func openStore() (calls.Storage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := storage.Open(&cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open call store: %w", err)
	}
	return store, nil
}

// buildQuery converts the filter flags into a storage query.
func buildQuery() (*calls.Query, error) {
	query := &calls.Query{
		Model:  recordsFlags.model,
		Limit:  recordsFlags.limit,
		Offset: recordsFlags.offset,
	}

	if recordsFlags.since != "" {
		t, err := time.Parse(time.RFC3339, recordsFlags.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since %q: %w", recordsFlags.since, err)
		}
		query.Since = &t
	}
	if recordsFlags.until != "" {
		t, err := time.Parse(time.RFC3339, recordsFlags.until)
		if err != nil {
			return nil, fmt.Errorf("invalid --until %q: %w", recordsFlags.until, err)
		}
		query.Until = &t
	}
	if query.Since != nil && query.Until != nil && !query.Until.After(*query.Since) {
		return nil, errors.New("--until must be after --since")
	}

	switch recordsFlags.errorFlag {
	case -1:
	case 0, 1:
		flag := recordsFlags.errorFlag
		query.ErrorFlag = &flag
	default:
		return nil, fmt.Errorf("invalid --error-flag %d (valid: 0, 1)", recordsFlags.errorFlag)
	}

	if query.Limit < 0 || query.Offset < 0 {
		return nil, errors.New("--limit and --offset must not be negative")
	}
	return query, nil
}

func listRecords(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(recordsFlags.format))
	if err != nil {
		return err
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.List(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("records list", err)
	}

	if recordsFlags.format == string(cli.FormatJSON) {
		if records == nil {
			records = []*calls.CallRecord{}
		}
		return formatter.FormatTo(cmd.OutOrStdout(), records)
	}
	if len(records) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No call records found")
		return nil
	}
	return formatter.FormatTo(cmd.OutOrStdout(), recordTable(records))
}

func getRecord(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(recordsFlags.format))
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	record, err := store.Get(cmd.Context(), args[0])
	if errors.Is(err, calls.ErrNotFound) {
		return cli.NewCommandError("records get", fmt.Errorf("no call record with uuid %q", args[0]))
	}
	if err != nil {
		return cli.NewCommandError("records get", err)
	}

	if recordsFlags.format == string(cli.FormatJSON) {
		return formatter.FormatTo(cmd.OutOrStdout(), record)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), recordDetail{record})
}

func countRecords(cmd *cobra.Command, args []string) error {
	formatter, err := cli.NewFormatter(cli.OutputFormat(recordsFlags.format))
	if err != nil {
		return err
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	count, err := store.Count(cmd.Context(), query)
	if err != nil {
		return cli.NewCommandError("records count", err)
	}
	return formatter.FormatTo(cmd.OutOrStdout(), countResult{Count: count})
}

func exportRecords(cmd *cobra.Command, args []string) error {
	exporter, ok := export.New(exportFlags.format, exportFlags.pretty)
	if !ok {
		return fmt.Errorf("unsupported export format %q (supported: json, csv)", exportFlags.format)
	}
	query, err := buildQuery()
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var out io.Writer = cmd.OutOrStdout()
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	progress := cli.NewProgressReporter(cmd.ErrOrStderr(), "Exporting")
	records, err := collectRecords(cmd.Context(), store, query, progress)
	if err != nil {
		progress.Error(err)
		return cli.NewCommandError("records export", err)
	}
	progress.Finish()

	if err := exporter.Export(cmd.Context(), records, out); err != nil {
		return cli.NewCommandError("records export", err)
	}
	if exportFlags.output != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d records to %s\n", len(records), exportFlags.output)
	}
	return nil
}

// collectRecords pages through every record matching query, honoring
// query.Limit as an overall cap when it is positive.
func collectRecords(ctx context.Context, store calls.Storage, query *calls.Query, progress cli.ProgressReporter) ([]*calls.CallRecord, error) {
	total, err := store.Count(ctx, query)
	if err != nil {
		return nil, err
	}
	limit := int64(query.Limit)
	if limit > 0 && limit < total {
		total = limit
	}
	progress.Start(total)

	records := make([]*calls.CallRecord, 0, total)
	page := *query
	for int64(len(records)) < total {
		page.Offset = query.Offset + len(records)
		page.Limit = exportPageSize
		if remaining := total - int64(len(records)); remaining < exportPageSize {
			page.Limit = int(remaining)
		}

		batch, err := store.List(ctx, &page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
		progress.Update(int64(len(records)))
	}
	return records, nil
}
