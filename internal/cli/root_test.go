package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmind-team/thanosql-go/internal/cli/config"
	"github.com/smartmind-team/thanosql-go/internal/enginetest"
	"github.com/smartmind-team/thanosql-go/pkg/thanosql"
)

func resetEnv(t *testing.T) {
	t.Helper()
	config.ResetConfig()
	t.Cleanup(config.ResetConfig)
	t.Setenv("THANOSQL_ENGINE_URL", "")
	t.Setenv("THANOSQL_API_TOKEN", "")
	t.Setenv("THANOSQL_API_VERSION", "")
}

func TestRootCommandEndToEnd(t *testing.T) {
	resetEnv(t)

	engine := enginetest.New("root-token")
	server := engine.Serve()
	t.Cleanup(server.Close)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}}, nil)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"table", "list", "--engine-url", server.URL, "--token", "root-token"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "public.sales")
}

func TestRootCommandMissingConfig(t *testing.T) {
	resetEnv(t)

	cmd := NewRootCmd()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"schema", "list"})

	err := cmd.Execute()
	var cfgErr *thanosql.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"engine_url", "api_token"}, cfgErr.Missing)
}

func TestRootCommandVersionSkipsConfig(t *testing.T) {
	resetEnv(t)

	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "thanosql v")
}
