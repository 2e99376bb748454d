package store

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/testutil"
)

func TestCatalogFolderNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT folder FROM meetings").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"folder"}))

	c := NewCatalogFromDB(db)
	_, err = c.Folder("missing")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogUpsertPropagatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO meetings").
		WillReturnError(assert.AnError)

	c := NewCatalogFromDB(db)
	m := testutil.NewTestMeeting("Any")
	err = c.Upsert(model.Summary{ID: "id-1", Name: m.Name, Folder: "f", CreatedAt: m.CreatedAt, Status: m.Status})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCatalogListScansRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	m := testutil.NewTestMeeting("Sync")
	rows := sqlmock.NewRows([]string{"id", "name", "folder", "created_at", "duration_ms", "status"}).
		AddRow("id-1", m.Name, "folder-1", m.CreatedAt, m.DurationMs, string(m.Status))
	mock.ExpectQuery("SELECT id, name, folder, created_at, duration_ms, status FROM meetings").
		WillReturnRows(rows)

	c := NewCatalogFromDB(db)
	out, err := c.List("", "")
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "id-1", out[0].ID)
	assert.Equal(t, model.StatusTranscribed, out[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
