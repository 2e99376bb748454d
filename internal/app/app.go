package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"meetscribe/internal/app/capture"
	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
	"meetscribe/internal/app/search"
	"meetscribe/internal/app/session"
	"meetscribe/internal/app/speaker"
	"meetscribe/internal/app/store"
	"meetscribe/internal/app/transcribe"
	"meetscribe/internal/config"
)

// App ties the recording, persistence, and transcription pieces together
// behind the operations the CLI exposes.
type App struct {
	cfg    *config.Config
	store  *store.Store
	engine capture.Engine
	orch   *transcribe.Orchestrator
	log    *zap.SugaredLogger
}

func New(cfg *config.Config, st *store.Store, engine capture.Engine, orch *transcribe.Orchestrator, log *zap.SugaredLogger) *App {
	return &App{cfg: cfg, store: st, engine: engine, orch: orch, log: log}
}

// Orchestrator exposes the transcription orchestrator, letting the CLI hook
// poll progress callbacks.
func (a *App) Orchestrator() *transcribe.Orchestrator { return a.orch }

// NewSession starts a recording session controller.
func (a *App) NewSession() *session.Controller {
	return session.New(a.engine, a.cfg.Bitrate, a.log)
}

// SaveRecording persists a finished recording as a new meeting and moves the
// merged artifact into its folder.
func (a *App) SaveRecording(name string, artifact capture.Artifact, createdAt time.Time) (*model.Meeting, error) {
	m := &model.Meeting{
		Name:       name,
		CreatedAt:  createdAt,
		DurationMs: artifact.DurationMs,
		Status:     model.StatusRecorded,
	}
	id, err := a.store.Create(m)
	if err != nil {
		return nil, err
	}

	ref, err := a.store.AdoptAudio(id, artifact.Path)
	if err != nil {
		return nil, err
	}
	m.AudioRef = ref
	if err := a.store.Commit(id, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Transcribe runs the full transcription pipeline for a recorded meeting and
// commits the outcome. A failed pass records the failure reason but leaves
// any previously stored utterances untouched.
func (a *App) Transcribe(ctx context.Context, id string) (*model.Meeting, error) {
	m, err := a.store.Get(id)
	if err != nil {
		return nil, err
	}
	audioPath, err := a.store.AudioPath(id)
	if err != nil {
		return nil, err
	}

	m.Status = model.StatusTranscribing
	m.Error = ""
	if err := a.store.Commit(id, m); err != nil {
		return nil, err
	}

	h, err := a.orch.Submit(ctx, transcribe.Request{
		AudioPath:        audioPath,
		SpeakersExpected: a.cfg.SpeakersExpected,
		LanguageCode:     a.cfg.LanguageCode,
	})
	if err != nil {
		return a.commitFailure(id, err.Error())
	}
	m.TranscriptID = h.RemoteID
	if err := a.store.Commit(id, m); err != nil {
		a.orch.Cancel(h)
		return nil, err
	}

	res := h.Wait(ctx)
	if res.Status == transcribe.StatusPending {
		// ctx expired before the job settled.
		a.orch.Cancel(h)
		return a.commitFailure(id, transcribe.ReasonCancelled)
	}
	if res.Status == transcribe.StatusFailed {
		return a.commitFailure(id, res.Reason)
	}

	m, err = a.store.Get(id)
	if err != nil {
		return nil, err
	}
	m.Status = model.StatusTranscribed
	m.Utterances = res.Utterances
	m.Error = ""
	if err := a.store.Commit(id, m); err != nil {
		return nil, err
	}
	a.log.Infow("meeting transcribed", "meeting", id, "utterances", len(m.Utterances))
	return m, nil
}

// Reprocess resets a Transcribed or Failed meeting and runs transcription
// again over its retained audio.
func (a *App) Reprocess(ctx context.Context, id string) (*model.Meeting, error) {
	if _, err := a.store.AudioPath(id); err != nil {
		return nil, errors.Wrap(err, "reprocess requires retained audio")
	}
	if _, err := a.store.ResetForReprocess(id); err != nil {
		return nil, err
	}
	return a.Transcribe(ctx, id)
}

// commitFailure marks the meeting Failed, keeping whatever utterances a
// previous successful pass produced.
func (a *App) commitFailure(id, reason string) (*model.Meeting, error) {
	m, err := a.store.Get(id)
	if err != nil {
		return nil, err
	}
	m.Status = model.StatusFailed
	m.Error = reason
	if err := a.store.Commit(id, m); err != nil {
		return nil, err
	}
	return m, errors.Wrapf(errors.New(reason), "transcription of meeting %s failed", id)
}

// Get loads one meeting.
func (a *App) Get(id string) (*model.Meeting, error) {
	return a.store.Get(id)
}

// List returns meeting summaries, newest first.
func (a *App) List(f store.Filter) ([]model.Summary, error) {
	return a.store.List(f)
}

// Delete removes a meeting and all of its files.
func (a *App) Delete(id string) error {
	return a.store.Delete(id)
}

// Refresh rebuilds the catalog from the meeting folders on disk.
func (a *App) Refresh() (int, error) {
	return a.store.Refresh()
}

// ResolvedUtterances returns the meeting's transcript with speaker names
// applied.
func (a *App) ResolvedUtterances(m *model.Meeting) []model.Utterance {
	return speaker.Resolve(m.Utterances, m.SpeakerMap)
}

// SetSpeakers merges the edits into the meeting's speaker map after checking
// every edited label was actually observed in the transcript.
func (a *App) SetSpeakers(id string, edits map[string]string) (*model.Meeting, error) {
	m, err := a.store.Get(id)
	if err != nil {
		return nil, err
	}
	if err := speaker.ValidateEdits(edits, m.Utterances); err != nil {
		return nil, err
	}
	m.SpeakerMap = speaker.UpdateMap(m.SpeakerMap, edits)
	if err := a.store.Commit(id, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Search finds term occurrences in the meeting's transcript.
func (a *App) Search(m *model.Meeting, term string) []search.Match {
	return search.Find(m.Utterances, term, true)
}
