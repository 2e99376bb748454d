package capture

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"meetscribe/internal/app/errors"
	"meetscribe/internal/app/model"
)

// FFmpegEngine captures audio with parecord and encodes/merges with ffmpeg.
// True suspension is not portable across pulse backends, so Suspend reports
// unsupported and the controller closes segments across pauses instead.
type FFmpegEngine struct {
	tempDir string
	log     *zap.SugaredLogger
}

func NewFFmpegEngine(log *zap.SugaredLogger) (*FFmpegEngine, error) {
	for _, bin := range []string{"ffmpeg", "ffprobe", "parecord"} {
		if _, err := exec.LookPath(bin); err != nil {
			return nil, errors.Wrapf(errors.ErrNoAudioDevice, "%s not found in PATH", bin)
		}
	}
	return &FFmpegEngine{tempDir: os.TempDir(), log: log}, nil
}

type ffmpegHandle struct {
	spec     SegmentSpec
	cmd      *exec.Cmd
	wavPath  string
	openedAt time.Time
}

func (h *ffmpegHandle) Spec() SegmentSpec { return h.spec }

func (e *FFmpegEngine) Open(ctx context.Context, spec SegmentSpec) (Handle, error) {
	wavPath := filepath.Join(e.tempDir,
		fmt.Sprintf("meetscribe_%s_%d.wav", spec.SessionID, spec.SequenceIndex))

	cmd := exec.Command("parecord", "--file-format=wav", wavPath)
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.ErrNoAudioDevice, err.Error())
	}

	// parecord exits immediately when no source is available.
	time.Sleep(100 * time.Millisecond)
	if err := cmd.Process.Signal(syscall.Signal(0)); err != nil {
		_ = cmd.Wait()
		return nil, errors.Wrap(errors.ErrNoAudioDevice, "parecord exited on startup")
	}

	e.log.Debugw("segment capture started",
		"session", spec.SessionID, "segment", spec.SequenceIndex, "wav", wavPath)

	return &ffmpegHandle{spec: spec, cmd: cmd, wavPath: wavPath, openedAt: time.Now()}, nil
}

func (e *FFmpegEngine) Close(ctx context.Context, h Handle) (model.AudioSegment, error) {
	fh, ok := h.(*ffmpegHandle)
	if !ok {
		return model.AudioSegment{}, errors.New("handle does not belong to this engine")
	}

	if fh.cmd.Process != nil {
		sigErr := fh.cmd.Process.Signal(os.Interrupt)
		waitErr := fh.cmd.Wait()
		if sigErr != nil {
			// The process was already gone before we asked it to stop.
			return model.AudioSegment{}, errors.Wrap(errors.ErrCaptureCrashed, describeExit(waitErr))
		}
		if waitErr != nil && !exitedByInterrupt(waitErr) {
			return model.AudioSegment{}, errors.Wrap(errors.ErrCaptureCrashed, waitErr.Error())
		}
	}

	mp3Path := strings.TrimSuffix(fh.wavPath, ".wav") + ".mp3"
	bitrate := fh.spec.Bitrate
	if bitrate == "" {
		bitrate = "192k"
	}
	if err := e.run(ctx, "ffmpeg",
		"-i", fh.wavPath,
		"-c:a", "libmp3lame", "-b:a", bitrate,
		"-y", mp3Path,
	); err != nil {
		return model.AudioSegment{}, errors.Wrap(err, "encoding segment")
	}
	_ = os.Remove(fh.wavPath)

	durationMs, err := e.probeDurationMs(ctx, mp3Path)
	if err != nil {
		// Fall back to wall-clock elapsed time when ffprobe cannot read
		// the freshly encoded file.
		durationMs = time.Since(fh.openedAt).Milliseconds()
	}

	seg := model.AudioSegment{
		SequenceIndex: fh.spec.SequenceIndex,
		Path:          mp3Path,
		StartOffsetMs: fh.spec.StartOffsetMs,
		DurationMs:    durationMs,
	}
	e.log.Debugw("segment closed",
		"segment", seg.SequenceIndex, "duration_ms", seg.DurationMs)
	return seg, nil
}

func (e *FFmpegEngine) Suspend(ctx context.Context, h Handle) error {
	return errors.ErrSuspendUnsupported
}

func (e *FFmpegEngine) Resume(ctx context.Context, h Handle) error {
	return errors.ErrSuspendUnsupported
}

func (e *FFmpegEngine) Merge(ctx context.Context, segments []model.AudioSegment) (Artifact, error) {
	if len(segments) == 0 {
		return Artifact{}, errors.Wrap(errors.ErrMergeFailed, "no segments to merge")
	}

	if len(segments) == 1 {
		return Artifact{Path: segments[0].Path, DurationMs: segments[0].DurationMs}, nil
	}

	listPath := filepath.Join(e.tempDir, fmt.Sprintf("meetscribe_concat_%d.txt", time.Now().UnixNano()))
	var list bytes.Buffer
	for _, seg := range segments {
		fmt.Fprintf(&list, "file '%s'\n", seg.Path)
	}
	if err := os.WriteFile(listPath, list.Bytes(), 0o644); err != nil {
		return Artifact{}, errors.Wrap(errors.ErrMergeFailed, err.Error())
	}
	defer os.Remove(listPath)

	outPath := filepath.Join(e.tempDir, fmt.Sprintf("meetscribe_merged_%d.mp3", time.Now().UnixNano()))
	if err := e.run(ctx, "ffmpeg",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c", "copy",
		"-y", outPath,
	); err != nil {
		return Artifact{}, errors.Wrap(errors.ErrMergeFailed, err.Error())
	}

	// Segment mp3s are only removed after a successful merge; on failure
	// they stay behind for manual recovery.
	for _, seg := range segments {
		_ = os.Remove(seg.Path)
	}

	return Artifact{Path: outPath, DurationMs: model.TotalDurationMs(segments)}, nil
}

func (e *FFmpegEngine) run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Newf("%s failed: %v, stderr: %s", name, err, truncate(stderr.String(), 500))
	}
	return nil
}

func (e *FFmpegEngine) probeDurationMs(ctx context.Context, path string) (int64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, err
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(string(output)), 64)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(seconds * 1000)), nil
}

// exitedByInterrupt reports whether the process ended because of the SIGINT
// we sent it, which is the expected way a capture stops.
func exitedByInterrupt(waitErr error) bool {
	var ee *exec.ExitError
	if !errors.As(waitErr, &ee) {
		return false
	}
	ws, ok := ee.ProcessState.Sys().(syscall.WaitStatus)
	return ok && ws.Signaled() && ws.Signal() == syscall.SIGINT
}

func describeExit(waitErr error) string {
	if waitErr == nil {
		return "capture process exited before stop was requested"
	}
	return waitErr.Error()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
