package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/logger"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/testutil"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := t.TempDir()
	catalog, err := NewCatalog(filepath.Join(root, "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { catalog.Close() })

	s, err := New(root, catalog, logger.NewNop())
	require.NoError(t, err)
	return s, root
}

func TestCreateWritesFolderAndRecord(t *testing.T) {
	s, root := newTestStore(t)
	m := testutil.NewTestMeeting("Roadmap Review")

	id, err := s.Create(m)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	folder := filepath.Join(root, "2026-03-12_10-30-Roadmap_Review")
	assert.FileExists(t, filepath.Join(folder, "meeting.json"))
	assert.FileExists(t, filepath.Join(folder, "transcript.md"))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, m.Name, got.Name)
	assert.Equal(t, m.Status, got.Status)
	assert.Len(t, got.Utterances, len(m.Utterances))
}

func TestCommitRejectsStatusRegression(t *testing.T) {
	s, _ := newTestStore(t)
	m := testutil.NewTestMeeting("Standup")
	id, err := s.Create(m)
	require.NoError(t, err)

	m.Status = model.StatusRecorded
	err = s.Commit(id, m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrStatusRegression))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTranscribed, got.Status, "rejected commit must not change the record")
}

func TestCommitAllowsForwardAndEqualRank(t *testing.T) {
	s, _ := newTestStore(t)
	m := testutil.NewTestMeeting("Standup")
	id, err := s.Create(m)
	require.NoError(t, err)

	// Transcribed -> Failed is an equal-rank move, used when a reprocess pass
	// fails after a prior success.
	m.Status = model.StatusFailed
	m.Error = "service rejected audio"
	require.NoError(t, s.Commit(id, m))

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusFailed, got.Status)
	assert.Len(t, got.Utterances, len(testutil.TestUtterances),
		"a failed pass keeps the previous transcript")
}

func TestResetForReprocess(t *testing.T) {
	s, _ := newTestStore(t)
	id, err := s.Create(testutil.NewTestMeeting("Retro"))
	require.NoError(t, err)

	m, err := s.ResetForReprocess(id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusTranscribing, m.Status)
	assert.NotEmpty(t, m.Utterances, "prior utterances survive the reset")

	// Transcribing is not reprocessable.
	_, err = s.ResetForReprocess(id)
	assert.Error(t, err)
}

func TestResetForReprocessRejectsRecorded(t *testing.T) {
	s, _ := newTestStore(t)
	m := testutil.NewTestMeeting("Fresh")
	m.Status = model.StatusRecorded
	m.Utterances = nil
	id, err := s.Create(m)
	require.NoError(t, err)

	_, err = s.ResetForReprocess(id)
	assert.Error(t, err)
}

func TestGetUnknownMeeting(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Get("no-such-id")
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestGetCorruptRecord(t *testing.T) {
	s, root := newTestStore(t)
	id, err := s.Create(testutil.NewTestMeeting("Broken"))
	require.NoError(t, err)

	folder, err := s.catalog.Folder(id)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(root, folder, "meeting.json"), []byte("{not json"), 0o644))

	_, err = s.Get(id)
	assert.True(t, errors.Is(err, errors.ErrCorruptRecord))
}

func TestDeleteRemovesEverything(t *testing.T) {
	s, root := newTestStore(t)
	id, err := s.Create(testutil.NewTestMeeting("Doomed"))
	require.NoError(t, err)
	folder, err := s.catalog.Folder(id)
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))

	_, err = s.Get(id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	_, statErr := os.Stat(filepath.Join(root, folder))
	assert.True(t, os.IsNotExist(statErr))

	summaries, err := s.List(Filter{})
	require.NoError(t, err)
	assert.Empty(t, summaries)
}

func TestListFiltersAndOrder(t *testing.T) {
	s, _ := newTestStore(t)

	first := testutil.NewTestMeeting("Weekly Sync")
	first.CreatedAt = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	_, err := s.Create(first)
	require.NoError(t, err)

	second := testutil.NewTestMeeting("Design Review")
	second.CreatedAt = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	second.Status = model.StatusFailed
	_, err = s.Create(second)
	require.NoError(t, err)

	all, err := s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Design Review", all[0].Name, "newest first")

	byName, err := s.List(Filter{NameContains: "weekly"})
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Weekly Sync", byName[0].Name)

	byStatus, err := s.List(Filter{Status: model.StatusFailed})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, "Design Review", byStatus[0].Name)
}

func TestRefreshRebuildsCatalog(t *testing.T) {
	s, _ := newTestStore(t)
	id, err := s.Create(testutil.NewTestMeeting("Orphan"))
	require.NoError(t, err)

	// Simulate a stale catalog: folder on disk, no rows.
	require.NoError(t, s.catalog.Clear())
	summaries, err := s.List(Filter{})
	require.NoError(t, err)
	require.Empty(t, summaries)

	n, err := s.Refresh()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	summaries, err = s.List(Filter{})
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, id, summaries[0].ID)
}

func TestAdoptAudioMovesArtifact(t *testing.T) {
	s, root := newTestStore(t)
	m := testutil.NewTestMeeting("With Audio")
	m.AudioRef = ""
	id, err := s.Create(m)
	require.NoError(t, err)

	src := filepath.Join(t.TempDir(), "merged.mp3")
	require.NoError(t, os.WriteFile(src, []byte("audio"), 0o644))

	ref, err := s.AdoptAudio(id, src)
	require.NoError(t, err)
	assert.Equal(t, "audio.mp3", ref)

	folder, err := s.catalog.Folder(id)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, folder, "audio.mp3"))
	_, statErr := os.Stat(src)
	assert.True(t, os.IsNotExist(statErr), "source artifact is moved, not copied")
}

func TestCommitSurvivesCatalogLoss(t *testing.T) {
	// Folders stay authoritative: a record is still reachable by scan after
	// the catalog loses its row.
	s, _ := newTestStore(t)
	id, err := s.Create(testutil.NewTestMeeting("Resilient"))
	require.NoError(t, err)
	require.NoError(t, s.catalog.Clear())

	got, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Resilient", got.Name)
}
