package session

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/looplab/fsm"
	"go.uber.org/zap"

	"meetscribe/internal/app/capture"
	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

// Session states.
const (
	StateIdle      = "idle"
	StateRecording = "recording"
	StatePaused    = "paused"
	StateStopping  = "stopping"
	StateMerging   = "merging"
	StateDone      = "done"
	StateDiscarded = "discarded"
	StateError     = "error"
)

const (
	eventStart    = "start"
	eventPause    = "pause"
	eventResume   = "resume"
	eventStop     = "stop"
	eventMerge    = "merge"
	eventComplete = "complete"
	eventFail     = "fail"
	eventDiscard  = "discard"
)

// Controller owns one recording session: the state machine, segment
// bookkeeping, and the merge on stop. Pause and resume close and reopen
// segments when the capture backend cannot suspend in place; a signal is only
// effective once the engine call returns, and calls issued meanwhile queue on
// the controller mutex instead of being dropped.
type Controller struct {
	mu     sync.Mutex
	fsm    *fsm.FSM
	engine capture.Engine
	log    *zap.SugaredLogger

	id        string
	bitrate   string
	createdAt time.Time

	segments  []model.AudioSegment
	handle    capture.Handle
	openedAt  time.Time
	suspended bool
}

// New creates a controller in the Idle state.
func New(engine capture.Engine, bitrate string, log *zap.SugaredLogger) *Controller {
	c := &Controller{
		engine:    engine,
		log:       log,
		id:        uuid.New().String(),
		bitrate:   bitrate,
		createdAt: time.Now(),
	}
	c.fsm = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventStart, Src: []string{StateIdle}, Dst: StateRecording},
			{Name: eventPause, Src: []string{StateRecording}, Dst: StatePaused},
			{Name: eventResume, Src: []string{StatePaused}, Dst: StateRecording},
			{Name: eventStop, Src: []string{StateRecording, StatePaused}, Dst: StateStopping},
			{Name: eventMerge, Src: []string{StateStopping}, Dst: StateMerging},
			{Name: eventComplete, Src: []string{StateMerging}, Dst: StateDone},
			{Name: eventFail, Src: []string{StateRecording, StatePaused, StateMerging}, Dst: StateError},
			{Name: eventDiscard, Src: []string{StateRecording, StatePaused, StateMerging}, Dst: StateDiscarded},
		},
		fsm.Callbacks{},
	)
	return c
}

// ID returns the session id.
func (c *Controller) ID() string { return c.id }

// CreatedAt returns the session creation time.
func (c *Controller) CreatedAt() time.Time { return c.createdAt }

// State returns the current session state.
func (c *Controller) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fsm.Current()
}

// Segments returns a copy of the closed segments so far.
func (c *Controller) Segments() []model.AudioSegment {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.AudioSegment, len(c.segments))
	copy(out, c.segments)
	return out
}

// Elapsed returns the recorded duration so far, including the open segment.
func (c *Controller) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := time.Duration(model.TotalDurationMs(c.segments)) * time.Millisecond
	if c.handle != nil && !c.suspended {
		d += time.Since(c.openedAt)
	}
	return d
}

// Start opens segment 0. Valid only from Idle; a capture failure leaves the
// session in Idle.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fsm.Can(eventStart) {
		return errors.Wrapf(errors.ErrInvalidTransition, "start from %s", c.fsm.Current())
	}
	if err := c.openSegment(ctx, 0, 0); err != nil {
		return err
	}
	c.mustEvent(ctx, eventStart)
	c.log.Infow("recording started", "session", c.id)
	return nil
}

// Pause closes the current segment (or suspends in place when the engine
// supports it). Calling Pause while already paused is a no-op.
func (c *Controller) Pause(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fsm.Current() == StatePaused {
		return nil
	}
	if !c.fsm.Can(eventPause) {
		return errors.Wrapf(errors.ErrInvalidTransition, "pause from %s", c.fsm.Current())
	}

	if err := c.engine.Suspend(ctx, c.handle); err == nil {
		c.suspended = true
	} else if errors.Is(err, errors.ErrSuspendUnsupported) {
		if err := c.closeCurrentSegment(ctx); err != nil {
			c.failOnCrash(ctx, err)
			return err
		}
	} else {
		return errors.Wrap(err, "suspending capture")
	}

	c.mustEvent(ctx, eventPause)
	c.log.Infow("recording paused", "session", c.id, "segments", len(c.segments))
	return nil
}

// Resume continues recording after a pause, opening the next segment when the
// pause closed the previous one. Calling Resume while already recording is a
// no-op.
func (c *Controller) Resume(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.fsm.Current() == StateRecording {
		return nil
	}
	if !c.fsm.Can(eventResume) {
		return errors.Wrapf(errors.ErrInvalidTransition, "resume from %s", c.fsm.Current())
	}

	if c.suspended {
		if err := c.engine.Resume(ctx, c.handle); err != nil {
			return errors.Wrap(err, "resuming capture")
		}
		c.suspended = false
	} else {
		next := len(c.segments)
		if err := c.openSegment(ctx, next, model.TotalDurationMs(c.segments)); err != nil {
			return err
		}
	}

	c.mustEvent(ctx, eventResume)
	c.log.Infow("recording resumed", "session", c.id, "segment", len(c.segments))
	return nil
}

// Stop closes the last segment and merges everything in sequence order. On
// merge failure the session moves to Error and the closed segments are kept
// for manual recovery.
func (c *Controller) Stop(ctx context.Context) (capture.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fsm.Can(eventStop) {
		return capture.Artifact{}, errors.Wrapf(errors.ErrInvalidTransition, "stop from %s", c.fsm.Current())
	}

	if c.handle != nil {
		if err := c.closeCurrentSegment(ctx); err != nil {
			c.failOnCrash(ctx, err)
			return capture.Artifact{}, err
		}
	}
	c.mustEvent(ctx, eventStop)
	c.mustEvent(ctx, eventMerge)

	artifact, err := c.engine.Merge(ctx, c.segments)
	if err != nil {
		c.mustEvent(ctx, eventFail)
		c.log.Errorw("segment merge failed", "session", c.id, "error", err)
		return capture.Artifact{}, errors.Wrap(errors.ErrMergeFailed, err.Error())
	}

	c.mustEvent(ctx, eventComplete)
	c.log.Infow("recording stopped",
		"session", c.id, "segments", len(c.segments), "duration_ms", artifact.DurationMs)
	return artifact, nil
}

// Discard deletes every segment artifact, all-or-nothing, and moves the
// session to Discarded. Valid any time before Done.
func (c *Controller) Discard(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.fsm.Can(eventDiscard) {
		return errors.Wrapf(errors.ErrInvalidTransition, "discard from %s", c.fsm.Current())
	}

	if c.handle != nil {
		seg, err := c.engine.Close(ctx, c.handle)
		c.handle = nil
		c.suspended = false
		if err == nil {
			c.segments = append(c.segments, seg)
		}
	}

	if err := removeAllOrNothing(segmentPaths(c.segments)); err != nil {
		return errors.Wrap(err, "discarding segments")
	}

	c.segments = nil
	c.mustEvent(ctx, eventDiscard)
	c.log.Infow("recording discarded", "session", c.id)
	return nil
}

func (c *Controller) openSegment(ctx context.Context, index int, startOffsetMs int64) error {
	h, err := c.engine.Open(ctx, capture.SegmentSpec{
		SessionID:     c.id,
		SequenceIndex: index,
		StartOffsetMs: startOffsetMs,
		Bitrate:       c.bitrate,
	})
	if err != nil {
		return errors.Wrapf(err, "opening segment %d", index)
	}
	c.handle = h
	c.openedAt = time.Now()
	return nil
}

func (c *Controller) closeCurrentSegment(ctx context.Context) error {
	seg, err := c.engine.Close(ctx, c.handle)
	c.handle = nil
	if err != nil {
		return errors.Wrap(err, "closing segment")
	}
	c.segments = append(c.segments, seg)
	return nil
}

// failOnCrash aborts the session when the capture process died underneath it.
// Closed segments are kept for manual recovery.
func (c *Controller) failOnCrash(ctx context.Context, err error) {
	if !errors.Is(err, errors.ErrCaptureCrashed) || !c.fsm.Can(eventFail) {
		return
	}
	c.mustEvent(ctx, eventFail)
	c.log.Errorw("capture process crashed", "session", c.id, "error", err)
}

// mustEvent fires a transition already validated with Can.
func (c *Controller) mustEvent(ctx context.Context, event string) {
	if err := c.fsm.Event(ctx, event); err != nil {
		c.log.Errorw("state machine rejected validated event", "event", event, "error", err)
	}
}

func segmentPaths(segments []model.AudioSegment) []string {
	paths := make([]string, 0, len(segments))
	for _, seg := range segments {
		paths = append(paths, seg.Path)
	}
	return paths
}

// removeAllOrNothing moves every file into a trash directory first, restoring
// the already-moved ones if any move fails, then deletes the trash. Deletion
// after a successful move phase is best-effort.
func removeAllOrNothing(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	trash, err := os.MkdirTemp(filepath.Dir(paths[0]), ".discard-")
	if err != nil {
		return err
	}

	moved := make(map[string]string, len(paths))
	for _, p := range paths {
		if _, err := os.Stat(p); os.IsNotExist(err) {
			continue
		}
		dst := filepath.Join(trash, filepath.Base(p))
		if err := os.Rename(p, dst); err != nil {
			for orig, tmp := range moved {
				_ = os.Rename(tmp, orig)
			}
			_ = os.RemoveAll(trash)
			return err
		}
		moved[p] = dst
	}

	return os.RemoveAll(trash)
}
