package thanosql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		version string
		major   int
		minor   int
		wantErr bool
	}{
		{version: "1.0", major: 1, minor: 0},
		{version: "9.9", major: 9, minor: 9},
		{version: "2.5", major: 2, minor: 5},
		{version: "0.5", wantErr: true},
		{version: "10.0", wantErr: true},
		{version: "1.10", wantErr: true},
		{version: "1", wantErr: true},
		{version: "1.0.0", wantErr: true},
		{version: "a.b", wantErr: true},
		{version: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			major, minor, err := parseVersion(tt.version)
			if tt.wantErr {
				var invalid *InvalidArgumentError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, []string{"version"}, invalid.Fields)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.major, major)
			assert.Equal(t, tt.minor, minor)
		})
	}
}

func TestCompareVersions(t *testing.T) {
	assert.Positive(t, compareVersions("2.0", "1.9"))
	assert.Positive(t, compareVersions("9.5", "2.0"))
	assert.Negative(t, compareVersions("1.0", "1.1"))
	assert.Zero(t, compareVersions("3.3", "3.3"))

	// Comparison is numeric, never lexicographic, so a version outside the
	// accepted domain loses to any valid one instead of string-sorting high.
	assert.Negative(t, compareVersions("10.0", "2.0"))
	assert.Positive(t, compareVersions("2.0", "10.0"))
}

func TestLatestTemplate(t *testing.T) {
	templates := []TableTemplate{
		{Name: "t", Version: "1.0"},
		{Name: "t", Version: "9.5"},
		{Name: "t", Version: "2.0"},
	}

	latest := LatestTemplate(templates)
	require.NotNil(t, latest)
	assert.Equal(t, "9.5", latest.Version)

	assert.Nil(t, LatestTemplate(nil))
}

func TestTableTemplateCreateDefaults(t *testing.T) {
	client, _ := newTestClient(t)

	tpl, err := client.Table.Template.Create(context.Background(), "events", TableTemplateCreateInput{
		TableTemplate: &TableObject{Columns: []Column{NewColumn("id", "integer")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "events", tpl.Name)
	assert.Equal(t, "1.0", tpl.Version)
	assert.Equal(t, CompatibilityIgnore, tpl.Compatibility)
}

func TestTableTemplateCreateRejectsBadVersion(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.Template.Create(context.Background(), "events", TableTemplateCreateInput{
		Version: "12.0",
	})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"version"}, invalid.Fields)
}

func TestTableTemplateVersioning(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for _, version := range []string{"1.0", "2.0", "9.5"} {
		_, err := client.Table.Template.Create(ctx, "events", TableTemplateCreateInput{Version: version})
		require.NoError(t, err)
	}

	// Re-publishing an existing (name, version) pair is a conflict.
	_, err := client.Table.Template.Create(ctx, "events", TableTemplateCreateInput{Version: "2.0"})
	assert.True(t, IsAlreadyExists(err))

	all, err := client.Table.Template.Get(ctx, "events", "")
	require.NoError(t, err)
	assert.Len(t, all.TableTemplates, 3)
	assert.Equal(t, []string{"9.5", "2.0", "1.0"}, all.Versions)

	latest, err := client.Table.Template.Get(ctx, "events", "latest")
	require.NoError(t, err)
	require.Len(t, latest.TableTemplates, 1)
	assert.Equal(t, "9.5", latest.TableTemplates[0].Version)

	one, err := client.Table.Template.Get(ctx, "events", "2.0")
	require.NoError(t, err)
	require.Len(t, one.TableTemplates, 1)
	assert.Equal(t, "2.0", one.TableTemplates[0].Version)

	_, err = client.Table.Template.Get(ctx, "events", "3.0")
	assert.True(t, IsNotFound(err))
}

func TestTableTemplateGetRejectsBadVersion(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.Template.Get(context.Background(), "events", "banana")
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"version"}, invalid.Fields)
}

func TestTableTemplateListLatest(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for _, version := range []string{"1.0", "2.0"} {
		_, err := client.Table.Template.Create(ctx, "events", TableTemplateCreateInput{Version: version})
		require.NoError(t, err)
	}
	_, err := client.Table.Template.Create(ctx, "metrics", TableTemplateCreateInput{})
	require.NoError(t, err)

	all, err := client.Table.Template.List(ctx, TableTemplateListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	latest, err := client.Table.Template.List(ctx, TableTemplateListInput{Latest: Bool(true)})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "events", latest[0].Name)
	assert.Equal(t, "2.0", latest[0].Version)
	assert.Equal(t, "metrics", latest[1].Name)

	filtered, err := client.Table.Template.List(ctx, TableTemplateListInput{Search: "metric"})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "metrics", filtered[0].Name)
}

func TestTableTemplateDelete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for _, version := range []string{"1.0", "2.0"} {
		_, err := client.Table.Template.Create(ctx, "events", TableTemplateCreateInput{Version: version})
		require.NoError(t, err)
	}

	// Deleting a single version leaves the others in place.
	require.NoError(t, client.Table.Template.Delete(ctx, "events", "1.0"))
	remaining, err := client.Table.Template.Get(ctx, "events", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"2.0"}, remaining.Versions)

	// An empty version removes the whole name.
	require.NoError(t, client.Table.Template.Delete(ctx, "events", ""))
	_, err = client.Table.Template.Get(ctx, "events", "")
	assert.True(t, IsNotFound(err))

	err = client.Table.Template.Delete(ctx, "events", "")
	assert.True(t, IsNotFound(err))
}
