package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedFilesArePaired(t *testing.T) {
	files, err := Files()
	require.NoError(t, err)
	assert.Contains(t, files, "0001_economy_documents.up.sql")
	assert.Contains(t, files, "0001_economy_documents.down.sql")
}
