package store

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

const (
	recordFile     = "meeting.json"
	transcriptFile = "transcript.md"
	audioFile      = "audio.mp3"
)

// Filter narrows List results.
type Filter struct {
	NameContains string
	Status       model.MeetingStatus
}

// Store persists one folder per meeting under the meetings directory, with a
// sqlite catalog for listing. Folders are the source of truth; every write
// goes through an atomic temp-then-rename commit and writes to the same id
// are serialized.
type Store struct {
	root    string
	catalog *Catalog
	log     *zap.SugaredLogger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at dir.
func New(root string, catalog *Catalog, log *zap.SugaredLogger) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating meetings directory")
	}
	return &Store{
		root:    root,
		catalog: catalog,
		log:     log,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

// Create allocates the meeting folder and writes the initial record, so a
// crash mid-transcription leaves a recoverable partial record behind.
func (s *Store) Create(m *model.Meeting) (string, error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if !m.Status.Valid() {
		m.Status = model.StatusRecording
	}

	folder := folderName(m)
	if err := os.MkdirAll(filepath.Join(s.root, folder), 0o755); err != nil {
		return "", errors.Wrap(err, "creating meeting folder")
	}
	if err := s.writeRecord(folder, m); err != nil {
		return "", err
	}
	if err := s.catalog.Upsert(summaryOf(m, folder)); err != nil {
		s.log.Warnw("catalog upsert failed", "meeting", m.ID, "error", err)
	}
	s.log.Infow("meeting created", "meeting", m.ID, "folder", folder)
	return m.ID, nil
}

// Commit atomically replaces the stored record. Status regressions are
// rejected; ResetForReprocess is the only sanctioned reset.
func (s *Store) Commit(id string, m *model.Meeting) error {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	existing, folder, err := s.load(id)
	if err != nil {
		return err
	}
	if !existing.Status.CanAdvanceTo(m.Status) {
		return errors.Wrapf(errors.ErrStatusRegression, "%s -> %s", existing.Status, m.Status)
	}
	m.ID = id

	if err := s.writeRecord(folder, m); err != nil {
		return err
	}
	if err := s.catalog.Upsert(summaryOf(m, folder)); err != nil {
		s.log.Warnw("catalog upsert failed", "meeting", id, "error", err)
	}
	return nil
}

// ResetForReprocess moves a Transcribed or Failed meeting back to
// Transcribing. Prior utterances are kept until a new pass completes.
func (s *Store) ResetForReprocess(id string) (*model.Meeting, error) {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	m, folder, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !m.Status.Reprocessable() {
		return nil, errors.Newf("meeting %s cannot be reprocessed from status %s", id, m.Status)
	}

	m.Status = model.StatusTranscribing
	m.Error = ""
	if err := s.writeRecord(folder, m); err != nil {
		return nil, err
	}
	if err := s.catalog.Upsert(summaryOf(m, folder)); err != nil {
		s.log.Warnw("catalog upsert failed", "meeting", id, "error", err)
	}
	return m, nil
}

// Get loads one meeting record.
func (s *Store) Get(id string) (*model.Meeting, error) {
	m, _, err := s.load(id)
	return m, err
}

// AudioPath returns the retained audio artifact path for a meeting, if any.
func (s *Store) AudioPath(id string) (string, error) {
	m, folder, err := s.load(id)
	if err != nil {
		return "", err
	}
	if m.AudioRef == "" {
		return "", errors.Wrapf(errors.ErrNotFound, "meeting %s has no retained audio", id)
	}
	return filepath.Join(s.root, folder, m.AudioRef), nil
}

// AdoptAudio moves the merged artifact into the meeting folder and returns
// the stored reference.
func (s *Store) AdoptAudio(id, srcPath string) (string, error) {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	_, folder, err := s.load(id)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(s.root, folder, audioFile)
	if err := moveFile(srcPath, dst); err != nil {
		return "", errors.Wrap(err, "moving audio into meeting folder")
	}
	return audioFile, nil
}

// List returns summaries sorted by creation time descending, optionally
// filtered by name substring and status.
func (s *Store) List(f Filter) ([]model.Summary, error) {
	return s.catalog.List(f.NameContains, f.Status)
}

// Delete removes the whole meeting unit. The folder is renamed aside first so
// the removal is all-or-nothing from the caller's perspective; on rename
// failure the record is untouched.
func (s *Store) Delete(id string) error {
	lock := s.lock(id)
	lock.Lock()
	defer lock.Unlock()

	_, folder, err := s.load(id)
	if err != nil {
		return err
	}

	full := filepath.Join(s.root, folder)
	doomed := full + ".deleting"
	if err := os.Rename(full, doomed); err != nil {
		return errors.Wrap(err, "deleting meeting")
	}
	if err := s.catalog.Delete(id); err != nil {
		s.log.Warnw("catalog delete failed", "meeting", id, "error", err)
	}
	if err := os.RemoveAll(doomed); err != nil {
		s.log.Warnw("removing renamed meeting folder failed", "path", doomed, "error", err)
	}
	s.log.Infow("meeting deleted", "meeting", id)
	return nil
}

// Refresh rescans the meetings directory and rebuilds the catalog, adopting
// folders written by a previous crash-interrupted run.
func (s *Store) Refresh() (int, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return 0, errors.Wrap(err, "reading meetings directory")
	}

	if err := s.catalog.Clear(); err != nil {
		return 0, errors.Wrap(err, "clearing catalog")
	}

	count := 0
	for _, e := range entries {
		if !e.IsDir() || strings.HasSuffix(e.Name(), ".deleting") {
			continue
		}
		m, err := s.readRecord(e.Name())
		if err != nil {
			s.log.Warnw("skipping unreadable meeting folder", "folder", e.Name(), "error", err)
			continue
		}
		if err := s.catalog.Upsert(summaryOf(m, e.Name())); err != nil {
			return count, errors.Wrap(err, "rebuilding catalog")
		}
		count++
	}
	return count, nil
}

func (s *Store) lock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *Store) load(id string) (*model.Meeting, string, error) {
	folder, err := s.catalog.Folder(id)
	if err == nil {
		m, rerr := s.readRecord(folder)
		if rerr == nil {
			return m, folder, nil
		}
		if errors.Is(rerr, errors.ErrCorruptRecord) {
			return nil, "", rerr
		}
	}

	// Catalog miss or stale entry: fall back to scanning the directory.
	entries, derr := os.ReadDir(s.root)
	if derr != nil {
		return nil, "", errors.Wrap(derr, "reading meetings directory")
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		m, rerr := s.readRecord(e.Name())
		if rerr != nil {
			continue
		}
		if m.ID == id {
			return m, e.Name(), nil
		}
	}
	return nil, "", errors.Wrapf(errors.ErrNotFound, "meeting %s", id)
}

func (s *Store) readRecord(folder string) (*model.Meeting, error) {
	data, err := os.ReadFile(filepath.Join(s.root, folder, recordFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "folder %s", folder)
		}
		return nil, errors.Wrap(err, "reading meeting record")
	}
	var m model.Meeting
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(errors.ErrCorruptRecord, err.Error())
	}
	return &m, nil
}

// writeRecord commits meeting.json and transcript.md via temp-then-rename so
// a reader never observes a partially written record.
func (s *Store) writeRecord(folder string, m *model.Meeting) error {
	dir := filepath.Join(s.root, folder)

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding meeting record")
	}
	if err := atomicWrite(filepath.Join(dir, recordFile), data); err != nil {
		return errors.Wrap(err, "writing meeting record")
	}
	if err := atomicWrite(filepath.Join(dir, transcriptFile), RenderTranscript(m)); err != nil {
		return errors.Wrap(err, "writing transcript")
	}
	return nil
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	// Cross-device rename fails; copy then remove.
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst + ".tmp")
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := os.Rename(dst+".tmp", dst); err != nil {
		return err
	}
	return os.Remove(src)
}

func summaryOf(m *model.Meeting, folder string) model.Summary {
	return model.Summary{
		ID:         m.ID,
		Name:       m.Name,
		CreatedAt:  m.CreatedAt,
		DurationMs: m.DurationMs,
		Status:     m.Status,
		Folder:     folder,
	}
}

func folderName(m *model.Meeting) string {
	return m.CreatedAt.Format("2006-01-02_15-04") + "-" + sanitizeName(m.Name)
}

func sanitizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "untitled"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r == ' ':
			b.WriteRune('_')
		case r == '/' || r == '\\' || r == ':' || r == '*' || r == '?' || r == '"' || r == '<' || r == '>' || r == '|':
			// path-unsafe, dropped
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
