// Package commands implements the thanosql CLI subcommands.
package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartmind-team/thanosql-go/internal/cli/config"
	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

// clientKey is used to store the engine client in the command context.
type clientKey struct{}

// WithClient stores the engine client in the context. The root command calls
// this after loading configuration.
func WithClient(ctx context.Context, c *thanosql.Client) context.Context {
	return context.WithValue(ctx, clientKey{}, c)
}

// engineClient retrieves the engine client from the command context.
func engineClient(cmd *cobra.Command) (*thanosql.Client, error) {
	if c, ok := cmd.Context().Value(clientKey{}).(*thanosql.Client); ok {
		return c, nil
	}
	return nil, fmt.Errorf("no engine client configured (set --engine-url and --token)")
}

// resolveFormat picks the output format: an explicitly set --format flag wins,
// then the configured output, then the table default.
func resolveFormat(cmd *cobra.Command, flagValue string) string {
	if cmd.Flags().Changed("format") {
		return flagValue
	}
	if cfg := config.GetCurrentConfig(); cfg != nil && cfg.Output != "" {
		return cfg.Output
	}
	return config.DefaultOutput
}

// parseParams turns repeated key=value arguments into a parameter map.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	params := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", pair)
		}
		params[key] = value
	}
	return params, nil
}
