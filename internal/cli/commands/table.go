package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// NewTableCommand creates the table command and its subcommands.
func NewTableCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage workspace tables",
		Long: `Manage tables in the workspace.

Tables are addressed by name and schema; the schema defaults to public
when omitted.`,
	}

	cmd.AddCommand(newTableListCommand())
	cmd.AddCommand(newTableGetCommand())
	cmd.AddCommand(newTableCreateCommand())
	cmd.AddCommand(newTableUpdateCommand())
	cmd.AddCommand(newTableDeleteCommand())
	cmd.AddCommand(newTableRecordsCommand())
	cmd.AddCommand(newTableCSVCommand())
	cmd.AddCommand(newTableUploadCommand())
	cmd.AddCommand(newTableInsertCommand())

	return cmd
}

// readTableObject loads a table definition (columns and constraints) from a
// JSON file.
func readTableObject(path string) (*thanosql.TableObject, error) {
	if path == "" {
		return nil, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definition: %w", err)
	}
	var obj thanosql.TableObject
	if err := json.Unmarshal(content, &obj); err != nil {
		return nil, fmt.Errorf("invalid table definition %s: %w", path, err)
	}
	return &obj, nil
}

func newTableListCommand() *cobra.Command {
	var (
		schema string
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			tables, err := client.Table.List(cmd.Context(), thanosql.TableListInput{Schema: schema})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, tables)
			}
			for _, table := range tables {
				_, _ = fmt.Fprintf(out, "%s.%s (%d columns)\n", table.Schema, table.Name, len(table.Columns))
			}
			_, _ = fmt.Fprintf(out, "(%d tables)\n", len(tables))
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Restrict the listing to one schema")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func newTableGetCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show one table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			table, err := client.Table.Get(cmd.Context(), args[0], schema)
			if err != nil {
				return err
			}
			return renderJSON(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")

	return cmd
}

func newTableCreateCommand() *cobra.Command {
	var (
		schema string
		defn   string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			obj, err := readTableObject(defn)
			if err != nil {
				return err
			}

			result, err := client.Table.Create(cmd.Context(), args[0], thanosql.TableCreateInput{
				Schema: schema,
				Table:  obj,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema to create the table in (default: public)")
	cmd.Flags().StringVar(&defn, "definition", "", "JSON file with columns and constraints")

	return cmd
}

func newTableUpdateCommand() *cobra.Command {
	var (
		schema  string
		newName string
		defn    string
	)

	cmd := &cobra.Command{
		Use:   "update NAME",
		Short: "Alter a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			obj, err := readTableObject(defn)
			if err != nil {
				return err
			}

			update := &thanosql.TableUpdate{Name: newName}
			if obj != nil {
				update.Columns = obj.Columns
				update.Constraints = obj.Constraints
			}

			result, err := client.Table.Update(cmd.Context(), args[0], thanosql.TableUpdateInput{
				Schema: schema,
				Table:  update,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")
	cmd.Flags().StringVar(&newName, "name", "", "New table name")
	cmd.Flags().StringVar(&defn, "definition", "", "JSON file with replacement columns and constraints")

	return cmd
}

func newTableDeleteCommand() *cobra.Command {
	var schema string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Table.Delete(cmd.Context(), args[0], schema); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted table %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")

	return cmd
}

func newTableRecordsCommand() *cobra.Command {
	var (
		schema string
		offset int
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "records NAME",
		Short: "List a table's rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			input := thanosql.TableRecordsInput{Schema: schema}
			if cmd.Flags().Changed("offset") {
				input.Offset = thanosql.Int(offset)
			}
			if cmd.Flags().Changed("limit") {
				input.Limit = thanosql.Int(limit)
			}

			records, err := client.Table.GetRecords(cmd.Context(), args[0], input)
			if err != nil {
				return err
			}
			return renderRecords(cmd.OutOrStdout(), records, resolveFormat(cmd, format))
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of rows to skip")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json, csv, md")

	return cmd
}

func newTableCSVCommand() *cobra.Command {
	var (
		schema string
		output string
	)

	cmd := &cobra.Command{
		Use:   "csv NAME",
		Short: "Download a table's rows as a CSV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			written, err := client.Table.GetRecordsAsCSV(cmd.Context(), args[0], output, thanosql.TableRecordsInput{
				Schema: schema,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", written)
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")
	cmd.Flags().StringVarP(&output, "output-file", "O", "", "Destination path (default: generated)")

	return cmd
}

func newTableUploadCommand() *cobra.Command {
	var (
		file     string
		schema   string
		defn     string
		ifExists string
	)

	cmd := &cobra.Command{
		Use:   "upload NAME",
		Short: "Create or fill a table from a CSV or Excel file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			obj, err := readTableObject(defn)
			if err != nil {
				return err
			}

			result, err := client.Table.Upload(cmd.Context(), args[0], thanosql.TableUploadInput{
				File:     file,
				Schema:   schema,
				Table:    obj,
				IfExists: ifExists,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Local CSV or Excel file to upload")
	cmd.Flags().StringVar(&schema, "schema", "", "Schema to create the table in (default: public)")
	cmd.Flags().StringVar(&defn, "definition", "", "JSON file with columns and constraints")
	cmd.Flags().StringVar(&ifExists, "if-exists", "", "Collision policy: fail, append, replace")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func newTableInsertCommand() *cobra.Command {
	var (
		schema string
		data   string
	)

	cmd := &cobra.Command{
		Use:   "insert NAME",
		Short: "Append rows to a table from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			content, err := os.ReadFile(data)
			if err != nil {
				return fmt.Errorf("failed to read records: %w", err)
			}
			var rows []thanosql.Row
			if err := json.Unmarshal(content, &rows); err != nil {
				return fmt.Errorf("invalid records %s: %w", data, err)
			}

			if err := client.Table.InsertRecords(cmd.Context(), args[0], schema, rows); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d rows into %s\n", len(rows), args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&schema, "schema", "", "Schema of the table (default: public)")
	cmd.Flags().StringVar(&data, "data", "", "JSON file with an array of row objects")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}
