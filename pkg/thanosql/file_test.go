package thanosql

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileUploadDefaultDir(t *testing.T) {
	client, _ := newTestClient(t)

	result, err := client.File.Upload(context.Background(), FileUploadInput{
		Path: writeTempFile(t, "cat.jpeg", "not really a jpeg"),
	})
	require.NoError(t, err)
	assert.Equal(t, "drive/image/cat.jpeg", result.FilePath)
}

func TestFileUploadWithDBCommit(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "photos", [][2]string{{"path", "text"}}, nil)
	ctx := context.Background()

	result, err := client.File.Upload(ctx, FileUploadInput{
		Path:       writeTempFile(t, "cat.jpeg", "x"),
		Dir:        "drive/photos",
		DBCommit:   Bool(true),
		TableName:  "photos",
		ColumnName: "path",
	})
	require.NoError(t, err)
	assert.Equal(t, "drive/photos/cat.jpeg", result.FilePath)
	assert.Equal(t, "photos", result.TableName)
	assert.Equal(t, "path", result.ColumnName)

	records, err := client.Table.GetRecords(ctx, "photos", TableRecordsInput{})
	require.NoError(t, err)
	require.Len(t, records.Data, 1)
	assert.Equal(t, "drive/photos/cat.jpeg", records.Data[0]["path"])
}

func TestFileUploadDBCommitUnknownColumn(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "photos", [][2]string{{"path", "text"}}, nil)

	_, err := client.File.Upload(context.Background(), FileUploadInput{
		Path:       writeTempFile(t, "cat.jpeg", "x"),
		Dir:        "drive/photos",
		DBCommit:   Bool(true),
		TableName:  "photos",
		ColumnName: "ghost",
	})
	assert.True(t, IsNotFound(err))
}

func TestFileUploadRejectsBadDir(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.File.Upload(context.Background(), FileUploadInput{
		Path: "cat.jpeg",
		Dir:  "images",
	})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"path"}, invalid.Fields)
}

func TestFileListAndDelete(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	for _, name := range []string{"a.jpeg", "b.jpeg"} {
		_, err := client.File.Upload(ctx, FileUploadInput{
			Path: writeTempFile(t, name, "x"),
			Dir:  "drive/images",
		})
		require.NoError(t, err)
	}

	listed, err := client.File.List(ctx, "drive/images/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"drive/images/a.jpeg", "drive/images/b.jpeg"}, listed.MatchedPathnames)

	require.NoError(t, client.File.Delete(ctx, FileDeleteInput{Path: "drive/images/a.jpeg"}))

	listed, err = client.File.List(ctx, "drive/images/*")
	require.NoError(t, err)
	assert.Equal(t, []string{"drive/images/b.jpeg"}, listed.MatchedPathnames)

	err = client.File.Delete(ctx, FileDeleteInput{Path: "drive/images/a.jpeg"})
	assert.True(t, IsNotFound(err))
}

func TestFileListRejectsBadPattern(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.File.List(context.Background(), "images/*")
	var invalid *InvalidArgumentError
	assert.ErrorAs(t, err, &invalid)
}
