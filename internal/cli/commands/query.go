package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// QueryOptions holds options for the query command.
type QueryOptions struct {
	Format       string
	Input        string
	QueryType    string
	TemplateID   int
	TemplateName string
	Params       []string
	Schema       string
	TableName    string
	Overwrite    bool
	MaxResults   int
}

// NewQueryCommand creates the query command.
func NewQueryCommand() *cobra.Command {
	opts := &QueryOptions{}

	cmd := &cobra.Command{
		Use:   "query [SQL]",
		Short: "Execute a query against the engine",
		Long: `Execute a ThanoSQL or PostgreSQL query against the workspace engine.

The query comes from the command line, a file, or a stored query template.
Results are printed in the selected output format; a query that routes its
output into a destination table prints the table it created instead.`,
		Example: `  # Execute SQL directly
  thanosql query "SELECT * FROM sales"

  # Read SQL from a file
  thanosql query --input report.sql

  # Execute a stored template with parameters
  thanosql query --template-name daily_report --param date=2026-08-23

  # Route results into a table
  thanosql query "SELECT * FROM sales" --table sales_copy --overwrite

  # List past query executions
  thanosql query log`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "table", "Output format: table, json, csv, md")
	cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Read SQL from file")
	cmd.Flags().StringVar(&opts.QueryType, "type", "", "Query dialect: thanosql or psql")
	cmd.Flags().IntVar(&opts.TemplateID, "template-id", 0, "Execute the stored template with this id")
	cmd.Flags().StringVar(&opts.TemplateName, "template-name", "", "Execute the stored template with this name")
	cmd.Flags().StringArrayVar(&opts.Params, "param", nil, "Template parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&opts.Schema, "schema", "", "Destination schema")
	cmd.Flags().StringVar(&opts.TableName, "table", "", "Destination table for query results")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "Overwrite the destination table if it exists")
	cmd.Flags().IntVar(&opts.MaxResults, "max-results", 0, "Maximum number of result rows to return")

	cmd.AddCommand(newQueryLogCommand())
	cmd.AddCommand(newQueryTemplateCommand())

	return cmd
}

func runQuery(cmd *cobra.Command, args []string, opts *QueryOptions) error {
	client, err := engineClient(cmd)
	if err != nil {
		return err
	}

	var sqlQuery string
	switch {
	case len(args) > 0:
		sqlQuery = strings.Join(args, " ")
	case opts.Input != "":
		content, err := os.ReadFile(opts.Input)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		sqlQuery = string(content)
	}

	params, err := parseParams(opts.Params)
	if err != nil {
		return err
	}

	input := thanosql.QueryExecuteInput{
		QueryType:    opts.QueryType,
		Query:        sqlQuery,
		TemplateID:   opts.TemplateID,
		TemplateName: opts.TemplateName,
		Parameters:   params,
		Schema:       opts.Schema,
		TableName:    opts.TableName,
	}
	if cmd.Flags().Changed("overwrite") {
		input.Overwrite = thanosql.Bool(opts.Overwrite)
	}
	if cmd.Flags().Changed("max-results") {
		input.MaxResults = thanosql.Int(opts.MaxResults)
	}

	log, err := client.Query.Execute(cmd.Context(), input)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if log.Failed() {
		// The HTTP call succeeded; the failure lives inside the log entry.
		return fmt.Errorf("query %s failed: %s", log.QueryID, log.ErrorResult)
	}

	if log.DestinationTableName != "" {
		_, _ = fmt.Fprintf(out, "Results written to %s.%s\n", log.DestinationSchema, log.DestinationTableName)
		return nil
	}
	if log.Records != nil {
		return renderRecords(out, log.Records, resolveFormat(cmd, opts.Format))
	}

	_, _ = fmt.Fprintf(out, "Query %s: %s\n", log.QueryID, log.State)
	return nil
}

func newQueryLogCommand() *cobra.Command {
	var (
		search string
		offset int
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List past query executions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			input := thanosql.QueryLogListInput{Search: search}
			if cmd.Flags().Changed("offset") {
				input.Offset = thanosql.Int(offset)
			}
			if cmd.Flags().Changed("limit") {
				input.Limit = thanosql.Int(limit)
			}

			page, err := client.Query.Log.List(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, page)
			}

			for _, entry := range page.QueryLogs {
				state := entry.State
				if entry.Failed() {
					state = fmt.Sprintf("failed (%s)", entry.ErrorResult)
				}
				_, _ = fmt.Fprintf(out, "%s  %-10s %s\n", entry.QueryID, state, entry.Query)
			}
			_, _ = fmt.Fprintf(out, "(%d of %d entries)\n", len(page.QueryLogs), page.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by query text")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entries to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}
