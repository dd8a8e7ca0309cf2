package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/logger"
	"github.com/samvad-hq/samvad-mirror-gateway/pkg/httpclient"
	"github.com/samvad-hq/samvad-mirror-gateway/pkg/providers"
)

const (
	DefaultAttemptTimeout = 3 * time.Second
	DefaultGlobalDeadline = 10 * time.Second
	DefaultGuardBand      = time.Second
)

// Observer receives one report per finished Resolve call. Implementations
// must not block.
type Observer interface {
	Observe(report domain.ResolveReport)
}

// Options tunes an Orchestrator. Zero durations fall back to the defaults.
type Options struct {
	AttemptTimeout time.Duration
	GlobalDeadline time.Duration
	GuardBand      time.Duration

	Client   httpclient.Client
	Observer Observer
	Logger   logger.Logger
	Now      func() time.Time
}

// Orchestrator resolves a resource path against an ordered provider list,
// one provider at a time, until one returns HTTP 200 with valid JSON or the
// time budget runs out. It holds no per-call state and is safe for
// concurrent use.
type Orchestrator struct {
	providers      *providers.List
	client         httpclient.Client
	observer       Observer
	log            logger.Logger
	now            func() time.Time
	attemptTimeout time.Duration
	globalDeadline time.Duration
	guardBand      time.Duration
}

// New builds an Orchestrator over list.
func New(list *providers.List, opts Options) (*Orchestrator, error) {
	if list == nil {
		return nil, fmt.Errorf("provider list must not be nil")
	}
	if opts.AttemptTimeout <= 0 {
		opts.AttemptTimeout = DefaultAttemptTimeout
	}
	if opts.GlobalDeadline <= 0 {
		opts.GlobalDeadline = DefaultGlobalDeadline
	}
	if opts.GuardBand < 0 {
		return nil, fmt.Errorf("guard band must not be negative")
	}
	if opts.GuardBand >= opts.GlobalDeadline {
		return nil, fmt.Errorf("guard band %s must be below global deadline %s", opts.GuardBand, opts.GlobalDeadline)
	}
	if opts.Client == nil {
		opts.Client = httpclient.NewRestyClient(opts.AttemptTimeout)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Orchestrator{
		providers:      list,
		client:         opts.Client,
		observer:       opts.Observer,
		log:            logger.Ensure(opts.Logger),
		now:            opts.Now,
		attemptTimeout: opts.AttemptTimeout,
		globalDeadline: opts.GlobalDeadline,
		guardBand:      opts.GuardBand,
	}, nil
}

type state int

const (
	stateTrying state = iota
	stateSucceeded
	stateExhausted
	stateExpired
)

// Resolve returns the first valid JSON body for path. On failure the error
// is a *ResolveError matching ErrExhausted or ErrDeadlineExceeded.
func (o *Orchestrator) Resolve(ctx context.Context, path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyPath
	}
	if ctx == nil {
		ctx = context.Background()
	}

	dl := newDeadline(o.now, o.globalDeadline, o.guardBand)
	list := o.providers.All()
	attempts := make([]domain.Attempt, 0, len(list))

	var (
		body []byte
		used string
		st   = stateTrying
	)
	for i := 0; st == stateTrying; {
		switch {
		case i >= len(list):
			st = stateExhausted
		case dl.Expired() || ctx.Err() != nil:
			st = stateExpired
		default:
			attempt, b := o.attempt(ctx, list[i], path)
			attempts = append(attempts, attempt)
			if attempt.Outcome == domain.AttemptOK {
				body, used = b, attempt.ProviderID
				st = stateSucceeded
				continue
			}
			o.log.WarnObj("provider attempt failed", "provider_attempt", attempt)
			i++
		}
	}

	safePath := RedactQuery(path)
	report := domain.ResolveReport{
		Path:       safePath,
		ProviderID: used,
		Attempts:   attempts,
		StartedAt:  dl.start.UTC(),
		ElapsedMs:  dl.Elapsed().Milliseconds(),
	}

	var err error
	switch st {
	case stateSucceeded:
		report.Outcome = domain.ResolveSucceeded
		o.log.DebugObj("resolve succeeded", "resolve_meta", map[string]any{
			"path":        safePath,
			"provider_id": used,
			"attempts":    len(attempts),
			"elapsed_ms":  report.ElapsedMs,
		})
	case stateExpired:
		report.Outcome = domain.ResolveDeadlineExceeded
		err = &ResolveError{Path: safePath, Reason: ErrDeadlineExceeded, Attempts: attempts}
	default:
		report.Outcome = domain.ResolveExhausted
		err = &ResolveError{Path: safePath, Reason: ErrExhausted, Attempts: attempts}
	}
	if err != nil {
		o.log.WarnObj("resolve failed", "resolve_meta", map[string]any{
			"path":       safePath,
			"outcome":    report.Outcome,
			"attempts":   len(attempts),
			"skipped":    len(list) - len(attempts),
			"elapsed_ms": report.ElapsedMs,
		})
	}

	if o.observer != nil {
		o.observer.Observe(report)
	}
	return body, err
}

// attempt issues one bounded GET and classifies the outcome. The recorded
// URL and error carry no query string.
func (o *Orchestrator) attempt(ctx context.Context, p providers.Provider, path string) (a domain.Attempt, body []byte) {
	url := p.URL(path)
	start := o.now()
	a = domain.Attempt{ProviderID: p.ID, URL: RedactQuery(url)}

	defer func() {
		if r := recover(); r != nil {
			a.Outcome = domain.AttemptTransport
			a.Error = fmt.Sprintf("panic: %v", r)
			body = nil
		}
		a.Error = redactError(a.Error, url)
		a.ElapsedMs = o.now().Sub(start).Milliseconds()
	}()

	actx, cancel := context.WithTimeout(ctx, o.attemptTimeout)
	defer cancel()

	resp, err := o.client.Get(actx, url, providers.Headers(p))
	switch {
	case err != nil && (httpclient.IsTimeout(err) || errors.Is(actx.Err(), context.DeadlineExceeded)):
		a.Outcome = domain.AttemptTimeout
		a.Error = err.Error()
	case err != nil:
		a.Outcome = domain.AttemptTransport
		a.Error = err.Error()
	case resp == nil:
		a.Outcome = domain.AttemptTransport
		a.Error = "nil response"
	case resp.StatusCode() != http.StatusOK:
		a.Outcome = domain.AttemptStatus
		a.StatusCode = resp.StatusCode()
	case !Valid(resp.Body()):
		a.Outcome = domain.AttemptInvalid
		a.StatusCode = resp.StatusCode()
	default:
		a.Outcome = domain.AttemptOK
		a.StatusCode = resp.StatusCode()
		body = resp.Body()
	}
	return a, body
}
