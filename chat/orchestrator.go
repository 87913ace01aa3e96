package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var ErrUnknownModel = errors.New("unknown model")

const (
	msgKeyConfigured   = "API key configured (%s...)"
	msgKeyMissing      = "API key not configured. Please add it to your .env.local file."
	msgKeyProbeFailed  = "Failed to check API key status."
	errKeyMissing      = "OpenAI API key is not configured. Please add it to your .env.local file."
	errGenerateDefault = "Failed to generate response"
	errFallbackDefault = "Failed to generate response with fallback model"
)

// Orchestrator owns the conversation state of a single chat session. All
// mutations go through its methods; renderers read Snapshot or Subscribe.
type Orchestrator struct {
	gateway      Gateway
	catalog      Catalog
	log          *slog.Logger
	timeout      time.Duration
	probeTimeout time.Duration
	newID        func() string

	initOnce sync.Once

	mu      sync.Mutex
	state   State
	subs    map[int]chan State
	nextSub int
}

type Option func(*Orchestrator)

func WithCatalog(c Catalog) Option {
	return func(o *Orchestrator) { o.catalog = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

// WithRequestTimeout bounds each completion call. Zero means no bound.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.timeout = d }
}

func WithProbeTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.probeTimeout = d }
}

func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) { o.newID = fn }
}

func New(gw Gateway, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway:      gw,
		catalog:      DefaultCatalog(),
		log:          slog.Default(),
		probeTimeout: 10 * time.Second,
		newID:        func() string { return ulid.Make().String() },
		subs:         map[int]chan State{},
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state = State{
		Messages: []Message{},
		Phase:    PhaseIdle,
		Model:    o.catalog.Balanced.ID,
		Theme:    ThemeDark,
	}
	return o
}

func (o *Orchestrator) Catalog() Catalog { return o.catalog }

// Initialize probes the gateway credential once. Later calls return the
// stored status without probing again.
func (o *Orchestrator) Initialize(ctx context.Context) KeyStatus {
	o.initOnce.Do(func() {
		if o.probeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, o.probeTimeout)
			defer cancel()
		}
		probe, err := o.gateway.CheckKeyStatus(ctx)
		status := DescribeKey(probe, err)

		o.mu.Lock()
		defer o.mu.Unlock()
		switch {
		case err != nil:
			o.log.Error("api key probe failed", "error", err)
		case !probe.Configured:
			o.log.Warn("api key not configured")
			o.state.Error = errKeyMissing
		default:
			o.log.Info("api key configured", "prefix", probe.KeyPrefix)
		}
		o.state.KeyStatus = status
		o.publishLocked()
	})
	return o.Snapshot().KeyStatus
}

// DescribeKey turns a probe result into the status line shown to the user.
func DescribeKey(probe KeyProbe, err error) KeyStatus {
	switch {
	case err != nil:
		return KeyStatus{Configured: false, Message: msgKeyProbeFailed}
	case !probe.Configured:
		return KeyStatus{Configured: false, Message: msgKeyMissing}
	default:
		return KeyStatus{Configured: true, Message: fmt.Sprintf(msgKeyConfigured, probe.KeyPrefix)}
	}
}

func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator) SetInput(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Input == text {
		return
	}
	o.state.Input = text
	o.publishLocked()
}

func (o *Orchestrator) SetModel(id string) error {
	if _, ok := o.catalog.Lookup(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, id)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Model != id {
		o.state.Model = id
		o.publishLocked()
	}
	return nil
}

func (o *Orchestrator) ToggleTheme() Theme {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Theme == ThemeDark {
		o.state.Theme = ThemeLight
	} else {
		o.state.Theme = ThemeDark
	}
	o.publishLocked()
	return o.state.Theme
}

// Submit sends text as a user turn and blocks until the request, including at
// most one fallback call, has resolved. It reports false without touching any
// state when text is blank, a request is in flight, or the key is not
// configured.
func (o *Orchestrator) Submit(ctx context.Context, text string) bool {
	content := strings.TrimSpace(text)

	o.mu.Lock()
	if content == "" || o.state.Busy || !o.state.KeyStatus.Configured {
		o.mu.Unlock()
		return false
	}
	o.state.Error = ""
	o.state.Messages = append(o.state.Messages, Message{ID: o.newID(), Role: RoleUser, Content: content})
	o.state.Input = ""
	o.setPhaseLocked(PhaseSubmitting)
	turns := Turns(o.state.Messages)
	model := o.state.Model
	o.publishLocked()
	o.mu.Unlock()

	outcome := o.complete(ctx, turns, model)
	errDefault := errGenerateDefault
	if !outcome.Success && outcome.Fallback {
		fallback := o.catalog.Fast.ID
		o.log.Warn("primary model failed, retrying with fallback",
			"model", model, "fallback", fallback, "kind", outcome.Kind, "error", outcome.Error)

		o.mu.Lock()
		o.state.Model = fallback
		o.setPhaseLocked(PhaseRetrying)
		o.publishLocked()
		o.mu.Unlock()

		model = fallback
		outcome = o.complete(ctx, turns, model)
		errDefault = errFallbackDefault
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if outcome.Success {
		o.state.Messages = append(o.state.Messages, Message{ID: o.newID(), Role: RoleAssistant, Content: outcome.Content})
		o.state.Error = ""
	} else {
		o.log.Error("completion failed", "model", model, "kind", outcome.Kind, "error", outcome.Error)
		o.state.Error = outcome.Error
		if o.state.Error == "" {
			o.state.Error = errDefault
		}
	}
	o.setPhaseLocked(PhaseIdle)
	o.publishLocked()
	return true
}

func (o *Orchestrator) complete(ctx context.Context, turns []Turn, model string) Outcome {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.gateway.Complete(ctx, turns, model)
}

func (o *Orchestrator) setPhaseLocked(p Phase) {
	o.state.Phase = p
	o.state.Busy = p != PhaseIdle
}

// Subscribe returns a channel that always holds the most recent state. A slow
// reader skips intermediate states but never sees them out of order. The
// returned func unsubscribes and closes the channel.
func (o *Orchestrator) Subscribe() (<-chan State, func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSub
	o.nextSub++
	ch := make(chan State, 1)
	ch <- o.snapshotLocked()
	o.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			o.mu.Lock()
			defer o.mu.Unlock()
			delete(o.subs, id)
			close(ch)
		})
	}
}

func (o *Orchestrator) snapshotLocked() State {
	s := o.state
	s.Messages = slices.Clone(o.state.Messages)
	return s
}

// publishLocked must be called with o.mu held; only the publisher sends on
// subscriber channels, so drain-then-send cannot block.
func (o *Orchestrator) publishLocked() {
	if len(o.subs) == 0 {
		return
	}
	s := o.snapshotLocked()
	for _, ch := range o.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
