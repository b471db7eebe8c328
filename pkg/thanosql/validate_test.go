package thanosql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateQueryExecute(t *testing.T) {
	tests := []struct {
		name       string
		input      QueryExecuteInput
		wantErr    bool
		wantFields []string
	}{
		{
			name:  "inline query only",
			input: QueryExecuteInput{QueryType: QueryTypeThanoSQL, Query: "SELECT 1"},
		},
		{
			name:  "template id only",
			input: QueryExecuteInput{QueryType: QueryTypeThanoSQL, TemplateID: 42},
		},
		{
			name:  "template name only",
			input: QueryExecuteInput{QueryType: QueryTypePSQL, TemplateName: "daily_report"},
		},
		{
			name:       "no query source",
			input:      QueryExecuteInput{QueryType: QueryTypeThanoSQL},
			wantErr:    true,
			wantFields: []string{"query", "template_id", "template_name"},
		},
		{
			name:       "template id and name together",
			input:      QueryExecuteInput{QueryType: QueryTypeThanoSQL, TemplateID: 42, TemplateName: "daily_report"},
			wantErr:    true,
			wantFields: []string{"template_id", "template_name"},
		},
		{
			name:       "inline query with template name",
			input:      QueryExecuteInput{QueryType: QueryTypeThanoSQL, Query: "SELECT 1", TemplateName: "daily_report"},
			wantErr:    true,
			wantFields: []string{"query", "template_name"},
		},
		{
			name:       "all three sources",
			input:      QueryExecuteInput{QueryType: QueryTypeThanoSQL, Query: "SELECT 1", TemplateID: 1, TemplateName: "x"},
			wantErr:    true,
			wantFields: []string{"query", "template_id", "template_name"},
		},
		{
			name:       "unknown query type",
			input:      QueryExecuteInput{QueryType: "mysql", Query: "SELECT 1"},
			wantErr:    true,
			wantFields: []string{"query_type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateQueryExecute(&tt.input)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var invalid *InvalidArgumentError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.wantFields, invalid.Fields)
		})
	}
}

func TestValidateOrderBy(t *testing.T) {
	assert.NoError(t, validateOrderBy(""))
	assert.NoError(t, validateOrderBy(OrderByRecent))
	assert.NoError(t, validateOrderBy(OrderByNameAsc))
	assert.NoError(t, validateOrderBy(OrderByNameDesc))

	var invalid *InvalidArgumentError
	require.ErrorAs(t, validateOrderBy("oldest"), &invalid)
	assert.Equal(t, []string{"order_by"}, invalid.Fields)
}

func TestValidateIfExists(t *testing.T) {
	assert.NoError(t, validateIfExists(""))
	assert.NoError(t, validateIfExists(IfExistsFail))
	assert.NoError(t, validateIfExists(IfExistsAppend))
	assert.NoError(t, validateIfExists(IfExistsReplace))

	var invalid *InvalidArgumentError
	require.ErrorAs(t, validateIfExists("random"), &invalid)
	assert.Equal(t, []string{"if_exists"}, invalid.Fields)
}

func TestValidateDrivePath(t *testing.T) {
	assert.NoError(t, validateDrivePath("drive/images/cat.jpeg"))

	var invalid *InvalidArgumentError
	require.ErrorAs(t, validateDrivePath("images/cat.jpeg"), &invalid)
	assert.Equal(t, []string{"path"}, invalid.Fields)
}
