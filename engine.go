package boundsx

import (
	"io"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// Option applies configuration to an Engine via the functional options pattern.
type Option func(*Engine)

// WithConfig sets the engine configuration. Zero fields take defaults.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		e.cfg = cfg
	}
}

// WithLogger sets the logger used for debug traces of committed changes.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPublisher forwards every change to p.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		e.publisher = p
	}
}

// WithIDGenerator replaces the UUID link id generator.
func WithIDGenerator(gen func() string) Option {
	return func(e *Engine) {
		if gen != nil {
			e.newID = gen
		}
	}
}

// Engine owns the snapshot registry, link stacks, presence map and group
// registry for one navigation root.
//
// Every method is safe for concurrent use and never blocks: reads are a
// single atomic load of an immutable registry, and writes build a new
// registry and publish it with compare-and-swap, retrying on contention.
type Engine struct {
	state     atomic.Pointer[registry]
	cfg       Config
	logger    *log.Logger
	publisher Publisher
	newID     func() string
}

// NewEngine creates an empty engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cfg:    DefaultConfig(),
		logger: log.New(io.Discard),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cfg = e.cfg.WithDefaults()
	if err := e.cfg.Validate(); err != nil {
		e.logger.Warn("falling back to default config", "err", err)
		e.cfg = DefaultConfig()
	}
	e.state.Store(emptyRegistry())
	return e
}

// Config returns the effective configuration.
func (e *Engine) Config() Config {
	return e.cfg
}

// Logger returns the engine logger.
func (e *Engine) Logger() *log.Logger {
	return e.logger
}

// Generation returns a counter bumped by every committed write. Readers can
// compare generations to detect that nothing changed since their last look.
func (e *Engine) Generation() uint64 {
	return e.load().generation
}

func (e *Engine) load() *registry {
	return e.state.Load()
}

// mutation derives the next registry from cur. It must not modify cur or
// anything reachable from it. A nil registry means no write; the returned
// changes are still reported.
type mutation func(cur *registry) (*registry, []Change)

// commit applies m with a compare-and-swap loop and reports whether a new
// registry was published.
func (e *Engine) commit(m mutation) bool {
	for {
		cur := e.state.Load()
		next, changes := m(cur)
		if next == nil {
			e.emit(changes)
			return false
		}
		next.generation = cur.generation + 1
		if e.state.CompareAndSwap(cur, next) {
			for i := range changes {
				changes[i].Generation = next.generation
			}
			e.emit(changes)
			return true
		}
	}
}

// Report publishes a change that did not alter state, such as a measurement
// that yielded no geometry.
func (e *Engine) Report(c Change) {
	e.emit([]Change{c})
}

func (e *Engine) emit(changes []Change) {
	for _, c := range changes {
		if e.logger.GetLevel() <= log.DebugLevel {
			e.logger.Debug(string(c.Kind), "tag", c.Tag, "screen", c.Screen, "link", c.LinkID, "detail", c.Detail, "gen", c.Generation)
		}
		if e.publisher != nil {
			e.publisher.Publish(c)
		}
	}
}
