package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/comalice/boundsx"
	"github.com/comalice/boundsx/realtime"
	"github.com/comalice/boundsx/testutil"
)

// ErrExpression is wrapped by expression compile and evaluation errors.
var ErrExpression = errors.New("expression error")

// DefaultFrames is used by navigation steps that leave Frames at zero.
const DefaultFrames = 10

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger used for step traces.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithEngineOptions adds options applied to every engine the runner creates.
func WithEngineOptions(opts ...boundsx.Option) Option {
	return func(r *Runner) {
		r.engineOpts = append(r.engineOpts, opts...)
	}
}

// Runner executes scenarios. It is safe to reuse across runs.
type Runner struct {
	logger     *log.Logger
	engineOpts []boundsx.Option
}

// NewRunner creates a runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Check is the outcome of one expectation expression.
type Check struct {
	Step       int           `json:"step" yaml:"step"`
	Tag        boundsx.TagID `json:"tag" yaml:"tag"`
	Expression string        `json:"expression" yaml:"expression"`
	Passed     bool          `json:"passed" yaml:"passed"`
}

// Result summarizes a run.
type Result struct {
	Name   string        `json:"name" yaml:"name"`
	Steps  int           `json:"steps" yaml:"steps"`
	Checks []Check       `json:"checks" yaml:"checks"`
	State  boundsx.State `json:"state" yaml:"state"`
}

// Failed returns the checks that did not pass.
func (r *Result) Failed() []Check {
	var out []Check
	for _, c := range r.Checks {
		if !c.Passed {
			out = append(out, c)
		}
	}
	return out
}

// Passed reports whether every check passed.
func (r *Result) Passed() bool {
	return len(r.Failed()) == 0
}

type simHost struct {
	def     HostSpec
	fake    *testutil.FakeHost
	id      realtime.HostID
	mounted bool
}

type run struct {
	r       *Runner
	sc      *Scenario
	engine  *boundsx.Engine
	driver  *testutil.StepDriver
	hosts   map[string]*simHost
	order   []string
	visible boundsx.ScreenKey
	result  *Result
}

// Run executes sc on a fresh engine. Failed expectations are reported in the
// result; an error means the scenario itself could not run.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Result, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	opts := append([]boundsx.Option{boundsx.WithLogger(r.logger)}, r.engineOpts...)
	if sc.Config != nil {
		opts = append(opts, boundsx.WithConfig(*sc.Config))
	}
	engine := boundsx.NewEngine(opts...)

	st := &run{
		r:      r,
		sc:     sc,
		engine: engine,
		driver: testutil.NewStepDriver(engine),
		hosts:  make(map[string]*simHost, len(sc.Hosts)),
		result: &Result{Name: sc.Name},
	}
	for _, h := range sc.Hosts {
		fake := testutil.NewFakeHost(h.Bounds, boundsx.Styles(h.Styles))
		if h.FailFirst > 0 {
			fake.FailNext(h.FailFirst)
		}
		st.hosts[h.ID] = &simHost{def: h, fake: fake}
		st.order = append(st.order, h.ID)
	}
	for _, id := range st.order {
		if !st.hosts[id].def.Deferred {
			if err := st.mount(id); err != nil {
				return nil, err
			}
		}
	}
	if err := st.driver.Play(testutil.Idle("")); err != nil {
		return nil, err
	}

	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		if err := st.apply(i, step); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		st.result.Steps++
	}

	st.result.State = engine.Dump()
	if failed := st.result.Failed(); len(failed) > 0 {
		r.logger.Warn("scenario failed", "name", sc.Name, "failed", len(failed), "checks", len(st.result.Checks))
	} else {
		r.logger.Info("scenario passed", "name", sc.Name, "checks", len(st.result.Checks))
	}
	return st.result, nil
}

func (st *run) mount(id string) error {
	h := st.hosts[id]
	if h.mounted {
		return nil
	}
	hid, err := st.driver.Runtime().Attach(realtime.Host{
		Tag:            h.def.tag(),
		Screen:         h.def.Screen.Identifier(),
		Config:         h.def.Boundary,
		Group:          h.def.Group,
		MemberID:       h.def.Member,
		CaptureOnFocus: h.def.CaptureOnFocus,
		Measure:        h.fake.Measure,
	})
	if err != nil {
		return fmt.Errorf("mount %s: %w", id, err)
	}
	h.id, h.mounted = hid, true
	return nil
}

func (st *run) unmount(id string) error {
	h := st.hosts[id]
	if !h.mounted {
		return nil
	}
	if err := st.driver.Runtime().Detach(h.id); err != nil {
		return fmt.Errorf("unmount %s: %w", id, err)
	}
	h.mounted = false
	return nil
}

func (st *run) idle() error {
	return st.driver.Play(testutil.Idle(st.visible))
}

func frameCount(n int) int {
	if n <= 0 {
		return DefaultFrames
	}
	return n
}

func screenOf(key string, ancestors []string) boundsx.ScreenIdentifier {
	return ScreenSpec{Key: key, Ancestors: ancestors}.Identifier()
}

func (st *run) apply(i int, step Step) error {
	rt := st.driver.Runtime()
	e := st.engine
	logger := st.r.logger

	switch {
	case step.Push != nil:
		nav := step.Push
		logger.Debug("push", "step", i, "from", nav.From, "to", nav.To)
		frames := testutil.PushFrames(boundsx.ScreenKey(nav.From), screenOf(nav.To, nav.Ancestors), frameCount(nav.Frames))
		if err := st.driver.Play(frames...); err != nil {
			return err
		}
		st.visible = boundsx.ScreenKey(nav.To)
		return st.idle()

	case step.Dismiss != nil:
		nav := step.Dismiss
		logger.Debug("dismiss", "step", i, "from", nav.From, "to", nav.To)
		frames := testutil.DismissFrames(screenOf(nav.From, nav.Ancestors), boundsx.ScreenKey(nav.To), frameCount(nav.Frames))
		if err := st.driver.Play(frames...); err != nil {
			return err
		}
		st.visible = boundsx.ScreenKey(nav.To)
		return st.idle()

	case step.Idle != "":
		st.visible = boundsx.ScreenKey(step.Idle)
		return st.idle()

	case len(step.Mount) > 0:
		for _, id := range step.Mount {
			if err := st.mount(id); err != nil {
				return err
			}
		}
		return st.idle()

	case len(step.Unmount) > 0:
		for _, id := range step.Unmount {
			if err := st.unmount(id); err != nil {
				return err
			}
		}
		return st.idle()

	case step.Move != nil:
		st.hosts[step.Move.Host].fake.SetBounds(step.Move.Bounds)
		return nil

	case step.Fail != nil:
		st.hosts[step.Fail.Host].fake.FailNext(step.Fail.Times)
		return nil

	case step.Layout != "":
		h := st.hosts[step.Layout]
		if !h.mounted {
			return fmt.Errorf("layout %s: host not mounted", step.Layout)
		}
		if err := rt.NotifyLayout(h.id); err != nil {
			return err
		}
		return st.idle()

	case step.Focus != "":
		if err := rt.NotifyFocus(boundsx.ScreenKey(step.Focus)); err != nil {
			return err
		}
		return st.idle()

	case step.Blur != "":
		if err := rt.NotifyBlur(boundsx.ScreenKey(step.Blur)); err != nil {
			return err
		}
		return st.idle()

	case step.ScrollSettled != "":
		if err := rt.NotifyScrollSettled(boundsx.ScreenKey(step.ScrollSettled)); err != nil {
			return err
		}
		return st.idle()

	case step.GroupActive != nil:
		if err := rt.SetGroupActive(step.GroupActive.Group, step.GroupActive.ID); err != nil {
			return err
		}
		return st.idle()

	case step.Clear != "":
		e.Clear(boundsx.ScreenKey(step.Clear))
		return nil

	case step.ClearByAncestor != "":
		e.ClearByAncestor(boundsx.ScreenKey(step.ClearByAncestor))
		return nil

	case step.ClearByBranch != "":
		e.ClearByBranch(boundsx.NavigatorKey(step.ClearByBranch))
		return nil

	case step.Expect != nil:
		return st.expect(i, *step.Expect)
	}
	return fmt.Errorf("%w: empty step", ErrInvalidScenario)
}

func (st *run) expect(i int, ex Expectation) error {
	e := st.engine
	rc := ex.context()
	pair := e.ResolveTransitionPair(ex.Tag, rc)
	env := st.environment(ex, pair)

	for _, src := range ex.That {
		program, err := compile(src)
		if err != nil {
			return err
		}
		out, err := exprlang.Run(program, env)
		if err != nil {
			return fmt.Errorf("%w: %q: %v", ErrExpression, src, err)
		}
		passed, ok := out.(bool)
		if !ok {
			return fmt.Errorf("%w: %q: result %v is not a bool", ErrExpression, src, out)
		}
		st.result.Checks = append(st.result.Checks, Check{Step: i, Tag: ex.Tag, Expression: src, Passed: passed})
		if !passed {
			st.r.logger.Warn("expectation failed", "step", i, "tag", ex.Tag, "expr", src)
		}
	}
	return nil
}

func compile(src string) (*exprvm.Program, error) {
	program, err := exprlang.Compile(src,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrExpression, src, err)
	}
	return program, nil
}

// environment exposes the resolved pair, its placement and the tag's engine
// state to expressions.
func (st *run) environment(ex Expectation, pair boundsx.ResolvedPair) map[string]any {
	e := st.engine
	current := boundsx.ScreenKey(ex.Current)

	env := map[string]any{
		"resolved":                pair.Resolved(),
		"source":                  boundsEnv(pair.SourceBounds),
		"destination":             boundsEnv(pair.DestinationBounds),
		"sourceStyles":            map[string]any(pair.SourceStyles),
		"destinationStyles":       map[string]any(pair.DestinationStyles),
		"sourceScreen":            string(pair.SourceScreenKey),
		"destinationScreen":       string(pair.DestinationScreenKey),
		"usedPending":             pair.UsedPending,
		"usedSnapshotSource":      pair.UsedSnapshotSource,
		"usedSnapshotDestination": pair.UsedSnapshotDestination,
		"links":                   len(e.Links(ex.Tag)),
		"pending":                 e.HasPendingLink(ex.Tag),
		"present":                 e.HasBoundaryPresence(ex.Tag, current),
		"generation":              e.Generation(),
		"placement":               nil,
	}

	cfg, _ := e.BoundaryConfig(ex.Tag, current)
	req := boundsx.RequestFromConfig(cfg, ex.Entering)
	req.ViewportWidth, req.ViewportHeight = st.sc.Viewport.Width, st.sc.Viewport.Height
	if p, ok := boundsx.Place(pair, req); ok {
		env["placement"] = map[string]any{
			"translateX": p.TranslateX,
			"translateY": p.TranslateY,
			"scaleX":     p.ScaleX,
			"scaleY":     p.ScaleY,
			"width":      p.Width,
			"height":     p.Height,
		}
	}
	return env
}

func boundsEnv(b *boundsx.Bounds) any {
	if b == nil {
		return nil
	}
	return map[string]any{
		"x":      b.X,
		"y":      b.Y,
		"width":  b.Width,
		"height": b.Height,
		"pageX":  b.PageX,
		"pageY":  b.PageY,
	}
}
