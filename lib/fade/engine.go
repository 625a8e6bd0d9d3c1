// Package fade owns the channel vector and turns scene changes into
// timed crossfades of console commands.
//
// Every mutation runs under one engine lock: a crossfade holds it until
// its last step is sent, so a fader set or another scene change waits
// for the fade in progress. Reads of the vector never wait; they see the
// last committed values.
package fade

import (
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"

	"ma3bridge/lib/logging"
)

const (
	// MinSteps is the step count used for short and zero-length fades.
	MinSteps = 5
	// FrameInterval is the target spacing between transmitted steps.
	FrameInterval = 20 * time.Millisecond
)

var (
	ErrInvalidScene    = errors.New("invalid scene id")
	ErrInvalidChannel  = errors.New("invalid fader id")
	ErrInvalidValue    = errors.New("invalid fader value")
	ErrInvalidDuration = errors.New("invalid crossfade duration")
)

type Encoder interface {
	Encode(channel, value int) string
}

type Sender interface {
	Send(cmd string)
}

// Update describes values that were just transmitted. Scene is zero for
// manual fader sets. Final is set on the last step of a crossfade and on
// every fader set.
type Update struct {
	Values []int
	Scene  int
	Final  bool
}

type Result struct {
	Scene int
	XFade int
	Steps int
}

type Options struct {
	Scenes int
	Logger *slog.Logger
	// Sleep replaces time.Sleep between steps.
	Sleep func(time.Duration)
}

type Engine struct {
	store  *Store
	enc    Encoder
	sender Sender
	scenes int
	logger *slog.Logger
	sleep  func(time.Duration)

	mu sync.Mutex

	subMu sync.Mutex
	subs  []chan Update
}

func New(store *Store, enc Encoder, sender Sender, opts Options) *Engine {
	e := &Engine{
		store:  store,
		enc:    enc,
		sender: sender,
		scenes: opts.Scenes,
		logger: opts.Logger,
		sleep:  opts.Sleep,
	}
	if e.logger == nil {
		e.logger = logging.NewNop()
	}
	if e.sleep == nil {
		e.sleep = time.Sleep
	}
	return e
}

func (e *Engine) Channels() int { return e.store.Len() }
func (e *Engine) Scenes() int   { return e.scenes }

// Snapshot returns the last committed channel vector.
func (e *Engine) Snapshot() []int {
	return e.store.Get()
}

// Steps returns how many steps a crossfade of xfadeMs milliseconds sends.
func Steps(xfadeMs int) int {
	return max(MinSteps, xfadeMs/int(FrameInterval/time.Millisecond))
}

// StepDelay returns the pause between consecutive steps. The whole
// milliseconds and the remainder are scaled separately so that long
// durations cannot overflow time.Duration.
func StepDelay(xfadeMs, steps int) time.Duration {
	if xfadeMs <= 0 || steps <= 0 {
		return 0
	}
	whole := time.Duration(xfadeMs/steps) * time.Millisecond
	frac := time.Duration(math.Round(float64(xfadeMs%steps) / float64(steps) * float64(time.Millisecond)))
	return whole + frac
}

// Target returns the one-hot vector of scene over n channels. Scenes
// beyond n select no channel, so every value is zero.
func Target(scene, n int) []int {
	end := make([]int, n)
	if scene >= 1 && scene <= n {
		end[scene-1] = MaxValue
	}
	return end
}

// Interpolate blends start towards end. Results are rounded half away
// from zero.
func Interpolate(start, end []int, progress float64) []int {
	out := make([]int, len(start))
	for i := range start {
		out[i] = int(math.Round(float64(start[i]) + float64(end[i]-start[i])*progress))
	}
	return out
}

// Crossfade moves every channel from its current value to the one-hot
// vector of scene over xfadeMs milliseconds, then commits that vector.
// It blocks until the last step is sent and cannot be cancelled.
func (e *Engine) Crossfade(scene, xfadeMs int) (Result, error) {
	if scene < 1 || scene > e.scenes {
		return Result{}, ErrInvalidScene
	}
	if xfadeMs < 0 {
		return Result{}, ErrInvalidDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	end := Target(scene, e.store.Len())
	start := e.store.Get()
	steps := Steps(xfadeMs)
	delay := StepDelay(xfadeMs, steps)

	log := e.logger.With(slog.String("fade_id", uuid.NewString()))
	log.Info("crossfade started",
		slog.Int("scene", scene),
		slog.Int("xfade_ms", xfadeMs),
		slog.Int("steps", steps),
		slog.Any("from", start))

	for step := 1; step <= steps; step++ {
		progress := 1.0
		if xfadeMs > 0 {
			progress = float64(step) / float64(steps)
		}
		values := Interpolate(start, end, progress)
		e.transmit(values)
		e.publish(Update{Values: values, Scene: scene, Final: step == steps})

		if step < steps && delay > 0 {
			e.sleep(delay)
		}
	}

	if err := e.store.ReplaceAll(end); err != nil {
		return Result{}, err
	}

	log.Info("crossfade complete", slog.Int("scene", scene), slog.Int("xfade_ms", xfadeMs))
	return Result{Scene: scene, XFade: xfadeMs, Steps: steps}, nil
}

// SetFader sets one channel (1-based) and sends its command.
func (e *Engine) SetFader(channel, value int) error {
	if channel < 1 || channel > e.store.Len() {
		return ErrInvalidChannel
	}
	if value < MinValue || value > MaxValue {
		return ErrInvalidValue
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Set(channel-1, value); err != nil {
		return err
	}
	e.sender.Send(e.enc.Encode(channel, value))
	e.publish(Update{Values: e.store.Get(), Final: true})

	e.logger.Info("fader set", slog.Int("fader", channel), slog.Int("value", value))
	return nil
}

// transmit sends one command per channel in ascending channel order.
func (e *Engine) transmit(values []int) {
	for i, v := range values {
		e.sender.Send(e.enc.Encode(i+1, v))
	}
}

// Subscribe returns a channel receiving every transmitted update. Updates
// are dropped for a subscriber whose buffer is full.
func (e *Engine) Subscribe() <-chan Update {
	ch := make(chan Update, 64)
	e.subMu.Lock()
	e.subs = append(e.subs, ch)
	e.subMu.Unlock()
	return ch
}

func (e *Engine) publish(u Update) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- u:
		default:
		}
	}
}
