package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// NewTableTemplateCommand creates the table-template command and its
// subcommands.
func NewTableTemplateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table-template",
		Short: "Manage versioned table templates",
		Long: `Manage versioned table templates.

A table template is a reusable schema definition addressed by name and an
x.y version. Publishing a change means creating the same name under a
higher version; there is no update.`,
	}

	cmd.AddCommand(newTableTemplateListCommand())
	cmd.AddCommand(newTableTemplateGetCommand())
	cmd.AddCommand(newTableTemplateCreateCommand())
	cmd.AddCommand(newTableTemplateDeleteCommand())

	return cmd
}

func newTableTemplateListCommand() *cobra.Command {
	var (
		search string
		latest bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List table templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			input := thanosql.TableTemplateListInput{Search: search}
			if latest {
				input.Latest = thanosql.Bool(true)
			}

			templates, err := client.Table.Template.List(cmd.Context(), input)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if resolveFormat(cmd, format) == "json" {
				return renderJSON(out, templates)
			}
			for _, tpl := range templates {
				_, _ = fmt.Fprintf(out, "%-30s %s\n", tpl.Name, tpl.Version)
			}
			_, _ = fmt.Fprintf(out, "(%d templates)\n", len(templates))
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by template name")
	cmd.Flags().BoolVar(&latest, "latest", false, "Only the highest version of each name")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table, json")

	return cmd
}

func newTableTemplateGetCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "get NAME",
		Short: "Show the versions of one table template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			result, err := client.Table.Template.Get(cmd.Context(), args[0], version)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Versions: %v\n", result.Versions)
			if latest := thanosql.LatestTemplate(result.TableTemplates); latest != nil {
				_, _ = fmt.Fprintf(out, "Latest:   %s\n", latest.Version)
			}
			return renderJSON(out, result.TableTemplates)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Version to fetch: x.y, latest, or empty for all")

	return cmd
}

func newTableTemplateCreateCommand() *cobra.Command {
	var (
		version       string
		compatibility string
		defn          string
	)

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Publish a table template version",
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

			tpl, err := client.Table.Template.Create(cmd.Context(), args[0], thanosql.TableTemplateCreateInput{
				TableTemplate: obj,
				Version:       version,
				Compatibility: compatibility,
			})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s version %s\n", tpl.Name, tpl.Version)
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Template version x.y (default: 1.0)")
	cmd.Flags().StringVar(&compatibility, "compatibility", "", "Compatibility mode (default: ignore)")
	cmd.Flags().StringVar(&defn, "definition", "", "JSON file with columns and constraints")

	return cmd
}

func newTableTemplateDeleteCommand() *cobra.Command {
	var version string

	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a table template version, or all versions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := engineClient(cmd)
			if err != nil {
				return err
			}

			if err := client.Table.Template.Delete(cmd.Context(), args[0], version); err != nil {
				return err
			}
			if version == "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted all versions of %s\n", args[0])
			} else {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s version %s\n", args[0], version)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Version to delete (empty deletes every version)")

	return cmd
}
