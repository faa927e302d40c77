package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writeCandidatesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "candidates.json")
	assert.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestFileSource_FetchCandidates(t *testing.T) {
	path := writeCandidatesFile(t, `[
		{"mls_number": "MLS-1", "city": "Boston", "square_feet": 2000},
		{"mls_number": "MLS-2", "city": "Boston", "bedrooms": 3}
	]`)

	source := NewFileSource(path)
	assert.Equal(t, "file:"+path, source.Name())

	properties, err := source.FetchCandidates(context.Background(), SearchCriteria{})
	assert.NoError(t, err)
	assert.Len(t, properties, 2)
	assert.Equal(t, "MLS-1", properties[0].MLSNumber)
	assert.NotNil(t, properties[0].SquareFeet)
	assert.Equal(t, 2000, *properties[0].SquareFeet)
	// Absent fields stay nil rather than zero.
	assert.Nil(t, properties[0].Bedrooms)
	assert.NotNil(t, properties[1].Bedrooms)
}

func TestFileSource_MaxResults(t *testing.T) {
	path := writeCandidatesFile(t, `[
		{"mls_number": "MLS-1"}, {"mls_number": "MLS-2"}, {"mls_number": "MLS-3"}
	]`)

	properties, err := NewFileSource(path).FetchCandidates(context.Background(), SearchCriteria{MaxResults: 2})
	assert.NoError(t, err)
	assert.Len(t, properties, 2)
}

func TestFileSource_Errors(t *testing.T) {
	_, err := NewFileSource("/nonexistent/candidates.json").FetchCandidates(context.Background(), SearchCriteria{})
	assert.Error(t, err)

	path := writeCandidatesFile(t, "{not json")
	_, err = NewFileSource(path).FetchCandidates(context.Background(), SearchCriteria{})
	assert.Error(t, err)
}
