package thanosql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryExecuteSelect(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}, {"amount", "integer"}}, []map[string]any{
		{"id": 1, "amount": 100},
		{"id": 2, "amount": 250},
	})

	log, err := client.Query.Execute(context.Background(), QueryExecuteInput{
		Query: "SELECT * FROM sales",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, log.QueryID)
	assert.False(t, log.Failed())
	require.NotNil(t, log.Records)
	assert.Len(t, log.Records.Data, 2)
	assert.Equal(t, 2, log.Records.Total)
}

func TestQueryExecuteMaxResults(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}}, []map[string]any{
		{"id": 1}, {"id": 2}, {"id": 3},
	})

	log, err := client.Query.Execute(context.Background(), QueryExecuteInput{
		Query:      "SELECT * FROM sales",
		MaxResults: Int(1),
	})
	require.NoError(t, err)

	require.NotNil(t, log.Records)
	assert.Len(t, log.Records.Data, 1)
	// Total still counts every row the query produced.
	assert.Equal(t, 3, log.Records.Total)
}

func TestQueryExecuteEngineFailure(t *testing.T) {
	client, _ := newTestClient(t)

	// An engine-side query failure arrives inside a 200 reply. It must come
	// back as a log with ErrorResult set, never as an error.
	log, err := client.Query.Execute(context.Background(), QueryExecuteInput{
		Query: "SELECT INVALID SYNTAX",
	})
	require.NoError(t, err)

	assert.True(t, log.Failed())
	assert.Equal(t, "syntax error in query", log.ErrorResult)
	assert.Equal(t, "failed", log.State)
}

func TestQueryExecuteDestinationTable(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "existing", nil, nil)

	ctx := context.Background()

	_, err := client.Query.Execute(ctx, QueryExecuteInput{
		Query:     "SELECT 1",
		TableName: "existing",
	})
	assert.True(t, IsAlreadyExists(err))

	log, err := client.Query.Execute(ctx, QueryExecuteInput{
		Query:     "SELECT 1",
		TableName: "existing",
		Overwrite: Bool(true),
	})
	require.NoError(t, err)
	assert.Equal(t, "existing", log.DestinationTableName)
	assert.Equal(t, "public", log.DestinationSchema)
}

func TestQueryTemplateLifecycle(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}}, []map[string]any{{"id": 7}})
	ctx := context.Background()

	tpl, err := client.Query.Template.Create(ctx, QueryTemplateCreateInput{
		Name:  "by_table",
		Query: "SELECT * FROM {{ table }} WHERE id > {{ min_id }}",
	})
	require.NoError(t, err)
	assert.Equal(t, "by_table", tpl.Name)
	// Parameters are inferred server-side from the substitution markers.
	assert.Equal(t, []string{"table", "min_id"}, tpl.Parameters)

	log, err := client.Query.Execute(ctx, QueryExecuteInput{
		TemplateName: "by_table",
		Parameters:   map[string]any{"table": "sales", "min_id": 0},
	})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM sales WHERE id > 0", log.Query)
	require.NotNil(t, log.Records)
	assert.Len(t, log.Records.Data, 1)

	updated, err := client.Query.Template.Update(ctx, "by_table", QueryTemplateUpdateInput{
		NewName: "by_table_v2",
		Query:   "SELECT count(*) FROM {{ table }}",
	})
	require.NoError(t, err)
	assert.Equal(t, "by_table_v2", updated.Name)
	assert.Equal(t, []string{"table"}, updated.Parameters)

	templates, err := client.Query.Template.List(ctx, QueryTemplateListInput{})
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "by_table_v2", templates[0].Name)

	require.NoError(t, client.Query.Template.Delete(ctx, "by_table_v2"))
	_, err = client.Query.Template.Get(ctx, "by_table_v2")
	assert.True(t, IsNotFound(err))
}

func TestQueryTemplateDryRun(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	tpl, err := client.Query.Template.Create(ctx, QueryTemplateCreateInput{
		Name:   "probe",
		Query:  "SELECT {{ col }} FROM t",
		DryRun: Bool(true),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"col"}, tpl.Parameters)

	// Dry run validates and echoes but never stores.
	_, err = client.Query.Template.Get(ctx, "probe")
	assert.True(t, IsNotFound(err))
}

func TestQueryTemplateCreateConflict(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.Query.Template.Create(ctx, QueryTemplateCreateInput{Name: "dup", Query: "SELECT 1"})
	require.NoError(t, err)

	_, err = client.Query.Template.Create(ctx, QueryTemplateCreateInput{Name: "dup", Query: "SELECT 2"})
	assert.True(t, IsAlreadyExists(err))
}

func TestQueryTemplateListRejectsBadOrder(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Query.Template.List(context.Background(), QueryTemplateListInput{OrderBy: "newest"})
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}

func TestQueryLogList(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	_, err := client.Query.Execute(ctx, QueryExecuteInput{Query: "SELECT 1"})
	require.NoError(t, err)
	_, err = client.Query.Execute(ctx, QueryExecuteInput{Query: "SELECT INVALID"})
	require.NoError(t, err)

	page, err := client.Query.Log.List(ctx, QueryLogListInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.QueryLogs, 2)

	filtered, err := client.Query.Log.List(ctx, QueryLogListInput{Search: "INVALID"})
	require.NoError(t, err)
	require.Len(t, filtered.QueryLogs, 1)
	assert.True(t, filtered.QueryLogs[0].Failed())
}
