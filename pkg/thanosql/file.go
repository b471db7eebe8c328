package thanosql

import (
	"context"
	"net/http"
)

// FileService manages files stored in the workspace drive. An upload or
// delete can also commit the file path into a table column in the same call.
type FileService struct {
	client *Client
}

// FileUploadInput describes an upload into the workspace drive.
type FileUploadInput struct {
	Path       string // local file to upload
	Dir        string // target drive directory, e.g. "drive/images"
	DBCommit   *bool  // also insert the stored path into a table column
	TableName  string
	ColumnName string
}

// FileUploadResult reports where the engine stored the file, and which table
// column was updated when DBCommit was set.
type FileUploadResult struct {
	FilePath   string `json:"file_path"`
	TableName  string `json:"table_name,omitempty"`
	ColumnName string `json:"column_name,omitempty"`
}

// Upload stores a local file in the workspace drive.
func (s *FileService) Upload(ctx context.Context, input FileUploadInput) (*FileUploadResult, error) {
	if input.Dir != "" {
		if err := validateDrivePath(input.Dir); err != nil {
			return nil, err
		}
	}

	qp := newQueryParams()
	qp.setString("dir", input.Dir)
	qp.setBoolPtr("db_commit", input.DBCommit)
	qp.setString("table_name", input.TableName)
	qp.setString("column_name", input.ColumnName)

	resp, err := s.client.do(ctx, &Request{
		Method: http.MethodPost,
		Path:   "/file/",
		Query:  qp.Values,
		Upload: &Upload{Path: input.Path},
	})
	if err != nil {
		return nil, err
	}

	var result FileUploadResult
	if err := decodeEnvelope(resp.Body, "data", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FileListResult is the reply to a drive listing: pathnames matching the
// requested glob.
type FileListResult struct {
	MatchedPathnames []string `json:"matched_pathnames"`
}

// List returns drive paths matching the given pattern. The pattern must be
// rooted under drive/; that is checked locally.
func (s *FileService) List(ctx context.Context, path string) (*FileListResult, error) {
	if err := validateDrivePath(path); err != nil {
		return nil, err
	}

	qp := newQueryParams()
	qp.setString("path", path)

	resp, err := s.client.do(ctx, &Request{Method: http.MethodGet, Path: "/file/", Query: qp.Values})
	if err != nil {
		return nil, err
	}

	var result FileListResult
	if err := decodeEnvelope(resp.Body, "data", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FileDeleteInput describes a drive file deletion, optionally removing the
// matching table record as well.
type FileDeleteInput struct {
	Path       string
	DBCommit   *bool
	TableName  string
	ColumnName string
}

// Delete removes a file from the workspace drive.
func (s *FileService) Delete(ctx context.Context, input FileDeleteInput) error {
	if err := validateDrivePath(input.Path); err != nil {
		return err
	}

	qp := newQueryParams()
	qp.setString("path", input.Path)
	qp.setBoolPtr("db_commit", input.DBCommit)
	qp.setString("table_name", input.TableName)
	qp.setString("column_name", input.ColumnName)

	_, err := s.client.do(ctx, &Request{Method: http.MethodDelete, Path: "/file/", Query: qp.Values})
	return err
}
