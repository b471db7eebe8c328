package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// NewFileCommand creates the file command and its subcommands for the
// workspace drive.
func NewFileCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Manage workspace drive files",
		Long: `Manage files stored in the workspace drive.

Drive paths are rooted under drive/. An upload or delete can also commit
the file path into a table column in the same call.`,
	}

	cmd.AddCommand(newFileUploadCommand())
	cmd.AddCommand(newFileListCommand())
	cmd.AddCommand(newFileDeleteCommand())

	return cmd
}

func newFileUploadCommand() *cobra.Command {
	var (
		dir        string
		dbCommit   bool
		tableName  string
		columnName string
	)

	cmd := &cobra.Command{
		Use:   "upload PATH",
		Short: "Upload a local file to the workspace drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			input := thanosql.FileUploadInput{
				Path:       args[0],
				Dir:        dir,
				TableName:  tableName,
				ColumnName: columnName,
			}
			if dbCommit {
				input.DBCommit = thanosql.Bool(true)
			}

			result, err := client.File.Upload(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Stored %s\n", result.FilePath)
			if result.TableName != "" {
				_, _ = fmt.Fprintf(out, "Committed to %s.%s\n", result.TableName, result.ColumnName)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Target drive directory, e.g. drive/images")
	cmd.Flags().BoolVar(&dbCommit, "db-commit", false, "Also insert the stored path into a table column")
	cmd.Flags().StringVar(&tableName, "table", "", "Table for --db-commit")
	cmd.Flags().StringVar(&columnName, "column", "", "Column for --db-commit")

	return cmd
}

func newFileListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list PATTERN",
		Short: "List drive files matching a pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.File.List(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, path := range result.MatchedPathnames {
				_, _ = fmt.Fprintln(out, path)
			}
			_, _ = fmt.Fprintf(out, "(%d files)\n", len(result.MatchedPathnames))
			return nil
		},
	}
}

func newFileDeleteCommand() *cobra.Command {
	var (
		dbCommit   bool
		tableName  string
		columnName string
	)

	cmd := &cobra.Command{
		Use:   "delete PATH",
		Short: "Delete a file from the workspace drive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			input := thanosql.FileDeleteInput{
				Path:       args[0],
				TableName:  tableName,
				ColumnName: columnName,
			}
			if dbCommit {
				input.DBCommit = thanosql.Bool(true)
			}

			if err := client.File.Delete(cmd.Context(), input); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&dbCommit, "db-commit", false, "Also remove the matching table record")
	cmd.Flags().StringVar(&tableName, "table", "", "Table for --db-commit")
	cmd.Flags().StringVar(&columnName, "column", "", "Column for --db-commit")

	return cmd
}
