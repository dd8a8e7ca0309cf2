package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/adapter"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/config"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/fetch"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/logger"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/web"
	"github.com/samvad-hq/samvad-mirror-gateway/pkg/httpclient"
	"github.com/samvad-hq/samvad-mirror-gateway/pkg/providers"
	"github.com/samvad-hq/samvad-mirror-gateway/pkg/publishers"
)

// Gateway is the mirror gateway runtime: the fiber app in front of the
// fallback orchestrator, plus the optional telemetry dispatcher.
type Gateway struct {
	cfg        *config.Config
	server     *fiber.App
	dispatcher *publishers.Dispatcher
	log        logger.Logger
}

// NewGateway builds a gateway from config.
func NewGateway(ctx context.Context, cfg *config.Config, log logger.Logger) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	log = logger.Ensure(log)
	if ctx == nil {
		ctx = context.Background()
	}

	list, err := providers.LoadList(cfg.ProvidersFile)
	if err != nil {
		return nil, fmt.Errorf("load providers: %w", err)
	}
	log.InfoObj("providers loaded", "providers_meta", map[string]any{
		"count": list.Len(),
		"ids":   list.IDs(),
		"file":  cfg.ProvidersFile,
	})

	dispatcher, err := newDispatcher(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	opts := fetch.Options{
		AttemptTimeout: cfg.AttemptTimeout,
		GlobalDeadline: cfg.GlobalDeadline,
		GuardBand:      cfg.GuardBand,
		Client:         httpclient.NewRestyClient(cfg.AttemptTimeout),
		Logger:         log,
	}
	if dispatcher != nil {
		opts.Observer = dispatcher
	}
	orchestrator, err := fetch.New(list, opts)
	if err != nil {
		closeDispatcher(dispatcher, log, time.Second)
		return nil, fmt.Errorf("init orchestrator: %w", err)
	}

	server, err := web.New(adapter.New(orchestrator, log), web.Options{
		AppName:      cfg.AppName,
		CookieName:   cfg.GateCookieName,
		CookieMaxAge: cfg.GateCookieMaxAge,
		StaticDirs:   cfg.StaticDirs,
		Logger:       log,
	})
	if err != nil {
		closeDispatcher(dispatcher, log, time.Second)
		return nil, fmt.Errorf("init web: %w", err)
	}

	return &Gateway{
		cfg:        cfg,
		server:     server,
		dispatcher: dispatcher,
		log:        log,
	}, nil
}

// newDispatcher returns nil when no telemetry sinks are enabled.
func newDispatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*publishers.Dispatcher, error) {
	pubCfgs, err := publishers.LoadConfigs(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	if len(pubCfgs) == 0 {
		log.InfoObj("resolve telemetry disabled", "publishers_meta", map[string]any{
			"file": cfg.PublishersFile,
		})
		return nil, nil
	}

	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), pubCfgs, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubs)

	summaries := make([]map[string]string, 0, len(pubCfgs))
	for _, pc := range pubCfgs {
		summaries = append(summaries, map[string]string{"id": pc.ID, "type": pc.Type})
	}
	log.InfoObj("resolve telemetry enabled", "publishers_meta", map[string]any{
		"count":      fanout.Size(),
		"publishers": summaries,
		"queue_size": cfg.TelemetryQueueSize,
	})

	return publishers.NewDispatcher(fanout, cfg.TelemetryQueueSize, log), nil
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	if g == nil || g.server == nil {
		return fmt.Errorf("gateway is not initialized")
	}

	errCh := make(chan error, 1)
	go func() {
		g.log.InfoObj("gateway listening", "gateway_state", map[string]any{
			"addr": g.cfg.ListenAddr,
		})
		errCh <- g.server.Listen(g.cfg.ListenAddr)
	}()

	var runErr error
	select {
	case err := <-errCh:
		if err != nil {
			runErr = fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
		g.log.InfoObj("gateway shutting down", "reason", ctx.Err())
		if err := g.server.ShutdownWithTimeout(g.cfg.ShutdownTimeout); err != nil {
			g.log.ErrorObj("server shutdown failed", "error", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
			g.log.WarnObj("listener returned error during shutdown", "error", err)
		}
	}

	closeDispatcher(g.dispatcher, g.log, g.cfg.ShutdownTimeout)
	return runErr
}

// Handler exposes the fiber app for tests and embedding.
func (g *Gateway) Handler() *fiber.App { return g.server }

func closeDispatcher(d *publishers.Dispatcher, log logger.Logger, timeout time.Duration) {
	if d == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := d.Close(ctx); err != nil {
		log.ErrorObj("telemetry drain failed", "error", err)
	}
	log.InfoObj("telemetry closed", "telemetry_meta", map[string]any{
		"sinks":     d.Sinks(),
		"published": d.Published(),
		"dropped":   d.Dropped(),
	})
}
