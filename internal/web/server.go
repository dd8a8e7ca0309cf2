package web

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/domain"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/logger"
)

const (
	defaultCookieName   = "yuki"
	defaultCookieMaxAge = 7 * 24 * time.Hour
)

// Pages fetches the view models behind the HTML pages.
type Pages interface {
	Video(ctx context.Context, id string) (domain.VideoPage, error)
	Search(ctx context.Context, q string, page int) (domain.SearchPage, error)
	Channel(ctx context.Context, id string) (domain.ChannelPage, error)
}

// Options configures the web layer.
type Options struct {
	AppName      string
	CookieName   string
	CookieMaxAge time.Duration
	StaticDirs   []string
	Logger       logger.Logger
}

type server struct {
	pages Pages
	gate  gate
	views *views
	log   logger.Logger
}

// New builds the fiber app serving the gated pages.
func New(pages Pages, opts Options) (*fiber.App, error) {
	if pages == nil {
		return nil, errors.New("web: pages must not be nil")
	}
	if strings.TrimSpace(opts.CookieName) == "" {
		opts.CookieName = defaultCookieName
	}
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = defaultCookieMaxAge
	}

	v, err := loadViews()
	if err != nil {
		return nil, err
	}

	s := &server{
		pages: pages,
		gate:  gate{name: opts.CookieName, maxAge: opts.CookieMaxAge},
		views: v,
		log:   logger.Ensure(opts.Logger),
	}

	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/", s.home)
	app.Get("/word", s.word)
	app.Post("/word/unlock", s.unlock)

	app.Get("/watch", s.gate.require, s.watch)
	app.Get("/search", s.gate.require, s.search)
	app.Get("/channel/:channelId", s.gate.require, s.channel)

	for _, dir := range opts.StaticDirs {
		if !isDir(dir) {
			s.log.DebugObj("static directory skipped", "web_static", map[string]any{"dir": dir})
			continue
		}
		app.Static("/", dir)
	}

	return app, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
