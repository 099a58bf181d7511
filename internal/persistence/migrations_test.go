package persistence

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/parking-ticket-service/migrations"
)

func TestPendingMigrations(t *testing.T) {
	files := fstest.MapFS{
		"0002_index.sql":   {Data: []byte("SELECT 2")},
		"0001_tickets.sql": {Data: []byte("SELECT 1")},
		"0003_more.sql":    {Data: []byte("SELECT 3")},
		"README.md":        {Data: []byte("notes")},
		"nested/0004.sql":  {Data: []byte("SELECT 4")},
	}

	pending, err := pendingMigrations(files, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_tickets.sql", "0002_index.sql", "0003_more.sql"}, pending)

	pending, err = pendingMigrations(files, map[string]bool{"0001_tickets.sql": true, "0003_more.sql": true})
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_index.sql"}, pending)
}

func TestEmbeddedMigrationsCreateTicketTable(t *testing.T) {
	pending, err := pendingMigrations(migrations.Files, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pending)

	first, err := migrations.Files.ReadFile(pending[0])
	require.NoError(t, err)
	assert.Contains(t, string(first), "parking_tickets")
	assert.Contains(t, string(first), "charge NUMERIC(12,2)")
}
