package studio

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/Deva-here/ScribbleForge/pkg/errors"
	"github.com/Deva-here/ScribbleForge/pkg/observability"
	"github.com/Deva-here/ScribbleForge/pkg/style"
)

// TextGenerator produces body text from a free-text prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// StyleAnalyzer infers a partial settings record from an encoded image.
type StyleAnalyzer interface {
	AnalyzeHandwriting(ctx context.Context, image string) (style.Partial, error)
}

// Flow names a remote flow.
type Flow string

const (
	FlowGenerate Flow = "generate"
	FlowAnalyze  Flow = "analyze"
)

// Controller owns one session's state. All methods are safe for concurrent
// use.
type Controller struct {
	gen    TextGenerator
	an     StyleAnalyzer
	logger *log.Logger

	singleFlight bool
	initial      State

	mu       sync.Mutex
	state    State
	inFlight map[Flow]bool
	subs     map[int]chan State
	nextSub  int
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger flow failures are written to.
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSingleFlight rejects a flow while another of the same kind is pending.
// The rejected call returns FLOW_IN_FLIGHT and leaves state untouched.
func WithSingleFlight(enabled bool) Option {
	return func(c *Controller) { c.singleFlight = enabled }
}

// WithInitialState starts the session from s instead of [InitialState].
// Reset returns to s as well. Invalid settings in s are replaced by the
// defaults.
func WithInitialState(s State) Option {
	return func(c *Controller) {
		if err := s.Settings.Validate(); err != nil {
			s.Settings = style.Default()
		}
		s.Busy = false
		s.Error = ""
		c.initial = s
	}
}

// New creates a controller. Either collaborator may be nil, in which case
// the corresponding flow always fails.
func New(gen TextGenerator, an StyleAnalyzer, opts ...Option) *Controller {
	c := &Controller{
		gen:      gen,
		an:       an,
		logger:   log.Default(),
		initial:  InitialState(),
		inFlight: make(map[Flow]bool),
		subs:     make(map[int]chan State),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.state = c.initial
	return c
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives every new state and a function
// that ends the subscription and closes the channel. The channel holds only
// the latest state: a slow reader skips intermediate states but always sees
// the most recent one.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextSub
	c.nextSub++
	ch := make(chan State, 1)
	c.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs, id)
			close(ch)
		})
	}
}

// SetText replaces the text.
func (c *Controller) SetText(text string) {
	c.update(func(s State) State {
		s.Text = text
		return s
	})
}

// ChangeSetting applies a single-field update through the settings reducer.
// Selecting pen, pencil or marker also applies that instrument's preset.
// An invalid field or value leaves the settings unchanged.
func (c *Controller) ChangeSetting(field style.Field, value any) error {
	var applyErr error
	c.update(func(s State) State {
		next, err := style.Apply(s.Settings, field, value)
		if err != nil {
			applyErr = err
			return s
		}
		s.Settings = next
		return s
	})
	return applyErr
}

// Reset returns the session to its initial state. Flows still pending will
// apply their results when they finish.
func (c *Controller) Reset() {
	c.update(func(State) State { return c.initial })
}

// GenerateText runs the text generation flow for prompt.
//
// On success the text is replaced. On failure the error field is set to
// [GenerationFailedMessage] and the text is left unchanged; the returned
// error carries GENERATION_FAILED and wraps the cause. The state already
// reflects the outcome, so callers may ignore the error.
func (c *Controller) GenerateText(ctx context.Context, prompt string) error {
	if err := c.begin(FlowGenerate); err != nil {
		return err
	}
	return c.runGenerate(ctx, prompt)
}

// StartGenerateText begins the text generation flow and returns as soon as
// the session is busy. The remote call runs in its own goroutine; its
// result is sent on the returned channel, which is then closed.
func (c *Controller) StartGenerateText(ctx context.Context, prompt string) (<-chan error, error) {
	if err := c.begin(FlowGenerate); err != nil {
		return nil, err
	}
	return c.start(func() error { return c.runGenerate(ctx, prompt) }), nil
}

// AnalyzeStyle runs the style analysis flow for an encoded image.
//
// On success the analyzer's fields are merged over the current settings
// and the instrument is forced to custom, whether or not the analyzer
// supplied one. Fields outside their domain are dropped first, so the
// settings stay valid. On failure the error field is set to
// [AnalysisFailedMessage] and the settings are left unchanged; the
// returned error carries ANALYSIS_FAILED.
func (c *Controller) AnalyzeStyle(ctx context.Context, image string) error {
	if err := c.begin(FlowAnalyze); err != nil {
		return err
	}
	return c.runAnalyze(ctx, image)
}

// StartAnalyzeStyle is the asynchronous form of AnalyzeStyle, with the
// same contract as StartGenerateText.
func (c *Controller) StartAnalyzeStyle(ctx context.Context, image string) (<-chan error, error) {
	if err := c.begin(FlowAnalyze); err != nil {
		return nil, err
	}
	return c.start(func() error { return c.runAnalyze(ctx, image) }), nil
}

func (c *Controller) start(run func() error) <-chan error {
	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- run()
	}()
	return done
}

func (c *Controller) runGenerate(ctx context.Context, prompt string) error {
	text, err := c.callGenerator(ctx, prompt)
	if err != nil {
		c.fail(FlowGenerate, GenerationFailedMessage, err)
		return errs.Wrap(errs.ErrCodeGenerationFailed, err, GenerationFailedMessage)
	}

	c.finish(FlowGenerate, func(s State) State {
		s.Text = text
		return s
	})
	return nil
}

func (c *Controller) runAnalyze(ctx context.Context, image string) error {
	partial, err := c.callAnalyzer(ctx, image)
	if err != nil {
		c.fail(FlowAnalyze, AnalysisFailedMessage, err)
		return errs.Wrap(errs.ErrCodeAnalysisFailed, err, AnalysisFailedMessage)
	}

	clean, dropped := partial.Sanitize()
	if len(dropped) > 0 {
		c.logger.Warn("analyzer returned out-of-range fields", "flow", FlowAnalyze, "dropped", dropped)
	}
	c.finish(FlowAnalyze, func(s State) State {
		s.Settings = style.Merge(s.Settings, clean)
		s.Settings.Instrument = style.InstrumentCustom
		return s
	})
	return nil
}

func (c *Controller) callGenerator(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	observability.Flow().OnFlowStart(ctx, string(FlowGenerate))
	defer func() {
		observability.Flow().OnFlowComplete(ctx, string(FlowGenerate), time.Since(start), err)
	}()

	if c.gen == nil {
		return "", errs.New(errs.ErrCodeUnsupported, "no text generator configured")
	}
	return c.gen.GenerateText(ctx, prompt)
}

func (c *Controller) callAnalyzer(ctx context.Context, image string) (p style.Partial, err error) {
	start := time.Now()
	observability.Flow().OnFlowStart(ctx, string(FlowAnalyze))
	defer func() {
		observability.Flow().OnFlowComplete(ctx, string(FlowAnalyze), time.Since(start), err)
	}()

	if c.an == nil {
		return style.Partial{}, errs.New(errs.ErrCodeUnsupported, "no style analyzer configured")
	}
	return c.an.AnalyzeHandwriting(ctx, image)
}

// begin marks a flow as started: busy on, error cleared.
func (c *Controller) begin(f Flow) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.singleFlight && c.inFlight[f] {
		return errs.New(errs.ErrCodeFlowInFlight, "%s already in progress", f)
	}
	c.inFlight[f] = true

	next := c.state
	next.Busy = true
	next.Error = ""
	c.setLocked(next)
	return nil
}

// finish applies a successful flow's result: busy off, error cleared.
func (c *Controller) finish(f Flow, apply func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, f)
	next := apply(c.state)
	next.Busy = false
	next.Error = ""
	c.setLocked(next)
}

// fail records a failed flow: busy off, fixed message set, cause logged.
func (c *Controller) fail(f Flow, msg string, cause error) {
	c.logger.Error(msg, "flow", f, "err", cause)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inFlight, f)
	next := c.state
	next.Busy = false
	next.Error = msg
	c.setLocked(next)
}

func (c *Controller) update(fn func(State) State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(fn(c.state))
}

// setLocked swaps in s and notifies subscribers. c.mu must be held.
func (c *Controller) setLocked(s State) {
	c.state = s
	for _, ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
