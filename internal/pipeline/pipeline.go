package pipeline

import (
	"context"
	"fmt"
	"math"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DV0x/fashion-shoot-agent-sub001/internal/config"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/easing"
	apperrors "github.com/DV0x/fashion-shoot-agent-sub001/internal/errors"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/ffmpeg"
	"github.com/DV0x/fashion-shoot-agent-sub001/internal/logging"
	"github.com/DV0x/fashion-shoot-agent-sub001/pkg/util"
)

// Pipeline runs retime and stitch jobs. Jobs share nothing but the output
// guard, so one Pipeline may run many jobs concurrently.
type Pipeline struct {
	logger  zerolog.Logger
	config  *config.Config
	media   Media
	outputs *outputGuard
}

// New creates a pipeline backed by the ffmpeg executor described by appCfg.
func New(logger zerolog.Logger, appCfg *config.Config) (*Pipeline, error) {
	if appCfg == nil {
		appCfg = config.Default()
	}

	ffmpegExec, err := ffmpeg.New(logger, appCfg.ExecutorConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ffmpeg: %w", err)
	}

	return NewWithMedia(logger, appCfg, ffmpegExec), nil
}

// NewWithMedia creates a pipeline over any Media implementation.
func NewWithMedia(logger zerolog.Logger, appCfg *config.Config, media Media) *Pipeline {
	if appCfg == nil {
		appCfg = config.Default()
	}
	return &Pipeline{
		logger:  logging.WithComponent(logger, "pipeline"),
		config:  appCfg,
		media:   media,
		outputs: processOutputs,
	}
}

// CheckRetime runs every check Retime makes before its first subprocess.
func CheckRetime(appCfg *config.Config, req RetimeRequest) error {
	_, err := NewWithMedia(zerolog.Nop(), appCfg, nil).validateRetime(req)
	return err
}

// CheckStitch runs every check Stitch makes before its first subprocess.
func CheckStitch(appCfg *config.Config, req StitchRequest) error {
	_, err := NewWithMedia(zerolog.Nop(), appCfg, nil).validateStitch(req)
	return err
}

// job carries the per-run state shared by retime and stitch.
type job struct {
	id      string
	logger  zerolog.Logger
	machine *stateMachine
	keep    bool
	started time.Time

	ws      *workspace
	release func()

	progressMu sync.Mutex
	onProgress ProgressFunc
	clips      int
	total      int
}

func (p *Pipeline) newJob(kind string, keep bool, onProgress ProgressFunc) *job {
	j := &job{
		id:         uuid.NewString(),
		keep:       keep,
		started:    time.Now(),
		onProgress: onProgress,
	}
	j.logger = logging.WithJob(p.logger, j.id).With().Str("kind", kind).Logger()
	j.machine = newStateMachine(j.entered)
	return j
}

// entered runs after every transition. Terminal states release the
// scratch directory and the output claim.
func (j *job) entered(from, to State) {
	j.logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("job state")

	if to.Terminal() {
		j.cleanup()
	}
	j.emit(ProgressEvent{State: to})
}

func (j *job) cleanup() {
	if j.ws != nil {
		if err := j.ws.release(j.keep); err != nil {
			j.logger.Warn().Err(err).Str("dir", j.ws.dir).Msg("failed to remove scratch dir")
		} else if j.keep {
			j.logger.Info().Str("dir", j.ws.dir).Msg("scratch dir retained")
		}
	}
	if j.release != nil {
		j.release()
	}
}

func (j *job) emit(ev ProgressEvent) {
	if j.onProgress == nil {
		return
	}
	j.progressMu.Lock()
	defer j.progressMu.Unlock()
	ev.JobID = j.id
	if ev.State == StateIdle {
		ev.State = j.machine.current()
	}
	if ev.Clips == 0 {
		ev.Clips = j.clips
	}
	if ev.Total == 0 {
		ev.Total = j.total
	}
	j.onProgress(ev)
}

// advance moves the job forward; an illegal edge fails the job.
func (j *job) advance(to State) error {
	if err := j.machine.transition(to); err != nil {
		return j.fail(err)
	}
	return nil
}

// fail moves the job to Failed and returns err unchanged.
func (j *job) fail(err error) error {
	j.logger.Error().
		Err(err).
		Str("code", string(apperrors.GetCode(err))).
		Str("state", j.machine.current().String()).
		Msg("job failed")
	if terr := j.machine.transition(StateFailed); terr != nil {
		// Already terminal; make sure resources are gone anyway
		j.cleanup()
	}
	return err
}

// claim reserves the output path for this job.
func (j *job) claim(g *outputGuard, output string) error {
	release, err := g.acquire(output, j.id)
	if err != nil {
		return apperrors.ValidationField("output", err.Error())
	}
	j.release = release
	return nil
}

func (j *job) openWorkspace(root string) error {
	ws, err := newWorkspace(root, j.id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "job.workspace", "cannot create scratch directory")
	}
	j.ws = ws
	j.logger.Debug().Str("dir", ws.dir).Msg("scratch dir created")
	return nil
}

// settings are a request's parameters after defaults are applied.
type settings struct {
	duration float64
	fps      float64
	bitrate  string
	fn       easing.Func
	label    string
}

func (p *Pipeline) resolveSettings(duration, fps float64, name string, spec *easing.BezierSpec, bitrate string) (settings, error) {
	d := p.config.Defaults
	s := settings{duration: duration, fps: fps, bitrate: bitrate}

	if s.duration == 0 {
		s.duration = d.OutputDuration
	}
	if s.fps == 0 {
		s.fps = d.OutputFPS
	}
	if s.bitrate == "" {
		s.bitrate = d.Bitrate
	}
	if name == "" && spec == nil {
		name = d.Easing
	}

	switch {
	case !(s.duration > 0) || math.IsInf(s.duration, 0):
		return settings{}, apperrors.ValidationField("output_duration", "output duration must be positive")
	case !(s.fps > 0) || math.IsInf(s.fps, 0):
		return settings{}, apperrors.ValidationField("output_fps", "output fps must be positive")
	}
	if err := validateBitrate(s.bitrate); err != nil {
		return settings{}, err
	}

	fn, label, err := easing.Resolve(name, spec)
	if err != nil {
		return settings{}, err
	}
	s.fn = fn
	s.label = label
	return s, nil
}

// validateBitrate accepts ffmpeg-style rates such as 25M, 8000k or 2500000.
func validateBitrate(bitrate string) error {
	if _, err := util.ParseBitrate(bitrate); err != nil {
		return apperrors.ValidationField("bitrate", err.Error())
	}
	return nil
}

// checkInputs reports every path that is missing or empty in one error.
func checkInputs(paths []string) error {
	var missing []string
	var causes []error
	for _, path := range paths {
		if err := util.NonEmptyFile(path); err != nil {
			missing = append(missing, path)
			causes = append(causes, err)
		}
	}
	if len(missing) > 0 {
		return apperrors.MissingClips(missing, causes)
	}
	return nil
}

// encode runs the single encode of a job over frames [0, count).
func (p *Pipeline) encode(ctx context.Context, j *job, output string, count int, fps float64, bitrate string) error {
	return p.media.EncodeFramesToVideo(ctx, ffmpeg.EncodeOptions{
		FramePattern: filepath.Join(j.ws.frames, ffmpeg.FramePattern(p.config.FFmpeg.FrameFormat)),
		StartNumber:  0,
		FrameCount:   count,
		Output:       output,
		FPS:          fps,
		Bitrate:      bitrate,
		Codec:        p.config.CodecOptions(),
		ProgressFunc: func(pr *ffmpeg.Progress) {
			j.emit(ProgressEvent{State: StateEncoding, Done: count, Encode: pr})
		},
	})
}

// batch builds the extraction options shared by every clip of a job.
func (p *Pipeline) batch(j *job, clip int, input string, timestamps []float64, r FrameRange, target *ffmpeg.Dimensions) ffmpeg.BatchOptions {
	ff := p.config.FFmpeg
	return ffmpeg.BatchOptions{
		Input:      input,
		Timestamps: timestamps,
		DestDir:    j.ws.frames,
		Offset:     r.Start,
		Target:     target,
		Format:     ff.FrameFormat,
		PadColor:   ff.PadColor,
		Retries:    ff.ExtractRetries,
		Workers:    p.config.Concurrency,
		OnProgress: func(done, _ int) {
			j.emit(ProgressEvent{State: StateExtracting, Clip: clip, Done: r.Start + done})
		},
	}
}

// finish builds the Result and moves the job to Done.
func (j *job) finish(res *Result) (*Result, error) {
	res.JobID = j.id
	res.Size = util.FileSize(res.Output)
	res.SizeHuman = humanize.Bytes(uint64(res.Size))
	if j.keep && j.ws != nil {
		res.TempDir = j.ws.dir
	}
	if err := j.advance(StateDone); err != nil {
		return nil, err
	}
	res.Elapsed = time.Since(j.started)

	j.logger.Info().
		Str("output", res.Output).
		Int("frames", res.Frames).
		Float64("duration", res.Duration).
		Str("size", res.SizeHuman).
		Dur("elapsed", res.Elapsed).
		Msg("job complete")
	return res, nil
}
