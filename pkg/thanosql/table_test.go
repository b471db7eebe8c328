package thanosql

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableObjectValidate(t *testing.T) {
	cols := []Column{NewColumn("id", "integer"), NewColumn("name", "text")}

	tests := []struct {
		name    string
		table   *TableObject
		wantErr string
	}{
		{
			name:  "nil table",
			table: nil,
		},
		{
			name:  "no constraints",
			table: &TableObject{Columns: cols},
		},
		{
			name: "valid constraints",
			table: &TableObject{
				Columns: cols,
				Constraints: &Constraints{
					Unique:     []Unique{{Name: "uq_name", Columns: []string{"name"}}},
					PrimaryKey: &PrimaryKey{Name: "pk_id", Columns: []string{"id"}},
					ForeignKeys: []ForeignKey{{
						Name: "fk_name", Column: "name",
						ReferenceTable: "people", ReferenceColumn: "name",
					}},
				},
			},
		},
		{
			name: "duplicate constraint name",
			table: &TableObject{
				Columns: cols,
				Constraints: &Constraints{
					Unique:     []Unique{{Name: "c1", Columns: []string{"name"}}},
					PrimaryKey: &PrimaryKey{Name: "c1", Columns: []string{"id"}},
				},
			},
			wantErr: `duplicate constraint name "c1"`,
		},
		{
			name: "unique references unknown column",
			table: &TableObject{
				Columns: cols,
				Constraints: &Constraints{
					Unique: []Unique{{Name: "uq", Columns: []string{"ghost"}}},
				},
			},
			wantErr: `unknown column "ghost"`,
		},
		{
			name: "primary key references unknown column",
			table: &TableObject{
				Columns: cols,
				Constraints: &Constraints{
					PrimaryKey: &PrimaryKey{Name: "pk", Columns: []string{"ghost"}},
				},
			},
			wantErr: `unknown column "ghost"`,
		},
		{
			name: "foreign key missing reference",
			table: &TableObject{
				Columns: cols,
				Constraints: &Constraints{
					ForeignKeys: []ForeignKey{{Name: "fk", Column: "id"}},
				},
			},
			wantErr: "reference_table and reference_column",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
			assert.Contains(t, invalid.Reason, tt.wantErr)
		})
	}
}

func TestTableLifecycle(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	created, err := client.Table.Create(ctx, "orders", TableCreateInput{
		Table: &TableObject{
			Columns: []Column{NewColumn("id", "integer"), NewColumn("item", "text")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "orders", created.TableName)

	table, err := client.Table.Get(ctx, "orders", "")
	require.NoError(t, err)
	assert.Equal(t, "orders", table.Name)
	assert.Equal(t, "public", table.Schema)
	assert.Len(t, table.Columns, 2)

	tables, err := client.Table.List(ctx, TableListInput{Schema: "public"})
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "orders", tables[0].Name)

	_, err = client.Table.Update(ctx, "orders", TableUpdateInput{
		Table: &TableUpdate{Name: "orders_v2"},
	})
	require.NoError(t, err)

	_, err = client.Table.Get(ctx, "orders", "")
	assert.True(t, IsNotFound(err))

	require.NoError(t, client.Table.Delete(ctx, "orders_v2", ""))
	_, err = client.Table.Get(ctx, "orders_v2", "")
	assert.True(t, IsNotFound(err))
}

func TestTableConstraintRoundTrip(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	obj := &TableObject{
		Columns: []Column{NewColumn("id", "integer"), NewColumn("owner", "text")},
		Constraints: &Constraints{
			Unique:     []Unique{{Name: "uq_owner", Columns: []string{"owner"}}},
			PrimaryKey: &PrimaryKey{Name: "pk_id", Columns: []string{"id"}},
			ForeignKeys: []ForeignKey{{
				Name: "fk_owner", Column: "owner",
				ReferenceTable: "people", ReferenceColumn: "name",
			}},
		},
	}

	_, err := client.Table.Create(ctx, "accounts", TableCreateInput{Table: obj})
	require.NoError(t, err)

	table, err := client.Table.Get(ctx, "accounts", "")
	require.NoError(t, err)
	assert.Equal(t, obj.Columns, table.Columns)
	require.NotNil(t, table.Constraints)
	assert.Equal(t, obj.Constraints, table.Constraints)
}

func TestTableCreateConflict(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "orders", nil, nil)

	_, err := client.Table.Create(context.Background(), "orders", TableCreateInput{})
	assert.True(t, IsAlreadyExists(err))
}

func TestTableListUnknownSchema(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.List(context.Background(), TableListInput{Schema: "nope"})
	assert.True(t, IsNotFound(err))
}

func TestTableGetRecords(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}}, []map[string]any{
		{"id": 1}, {"id": 2}, {"id": 3}, {"id": 4},
	})
	ctx := context.Background()

	records, err := client.Table.GetRecords(ctx, "sales", TableRecordsInput{
		Offset: Int(1),
		Limit:  Int(2),
	})
	require.NoError(t, err)
	assert.Len(t, records.Data, 2)
	assert.Equal(t, 4, records.Total)

	frame := records.Frame()
	assert.Equal(t, []string{"id"}, frame.Columns)
}

func TestTableInsertRecords(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}}, nil)
	ctx := context.Background()

	err := client.Table.InsertRecords(ctx, "sales", "", []Row{{"id": 1}, {"id": 2}})
	require.NoError(t, err)

	records, err := client.Table.GetRecords(ctx, "sales", TableRecordsInput{})
	require.NoError(t, err)
	assert.Equal(t, 2, records.Total)

	err = client.Table.InsertRecords(ctx, "sales", "", []Row{{"ghost": 1}})
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, 422, ae.StatusCode)
	assert.Contains(t, ae.Message, "ghost")
}

func TestTableUpload(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	csvPath := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,amount\n1,100\n"), 0o644))

	result, err := client.Table.Upload(ctx, "sales", TableUploadInput{
		File: csvPath,
		Table: &TableObject{
			Columns: []Column{NewColumn("id", "integer"), NewColumn("amount", "integer")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "sales", result.TableName)

	table, err := client.Table.Get(ctx, "sales", "")
	require.NoError(t, err)
	assert.Len(t, table.Columns, 2)

	// Default collision policy refuses to touch the existing table.
	_, err = client.Table.Upload(ctx, "sales", TableUploadInput{File: csvPath})
	assert.True(t, IsAlreadyExists(err))

	_, err = client.Table.Upload(ctx, "sales", TableUploadInput{File: csvPath, IfExists: IfExistsReplace})
	require.NoError(t, err)
}

func TestTableUploadRejectsUnknownExtension(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.Upload(context.Background(), "sales", TableUploadInput{File: "data.parquet"})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"file"}, invalid.Fields)
}

func TestTableUploadRejectsBadIfExists(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.Table.Upload(context.Background(), "sales", TableUploadInput{File: "data.csv", IfExists: "merge"})
	var invalid *InvalidArgumentError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, []string{"if_exists"}, invalid.Fields)
}

func TestTableGetRecordsAsCSV(t *testing.T) {
	client, engine := newTestClient(t)
	engine.SeedTable("public", "sales", [][2]string{{"id", "integer"}, {"amount", "integer"}}, []map[string]any{
		{"id": 1, "amount": 100},
	})

	outputPath := filepath.Join(t.TempDir(), "export.csv")
	written, err := client.Table.GetRecordsAsCSV(context.Background(), "sales", outputPath, TableRecordsInput{})
	require.NoError(t, err)
	assert.Equal(t, outputPath, written)

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,amount", lines[0])
	assert.Equal(t, "1,100", lines[1])
}
