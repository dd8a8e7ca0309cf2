package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/adapter"
	"github.com/samvad-hq/samvad-mirror-gateway/internal/fetch"
)

func (s *server) home(c *fiber.Ctx) error {
	if !s.gate.open(c) {
		return c.Redirect("/word", fiber.StatusFound)
	}
	s.gate.grant(c)
	return s.render(c, fiber.StatusOK, "home", nil)
}

func (s *server) word(c *fiber.Ctx) error {
	return s.render(c, fiber.StatusOK, "word", nil)
}

func (s *server) unlock(c *fiber.Ctx) error {
	s.gate.grant(c)
	return c.Redirect("/", fiber.StatusFound)
}

func (s *server) watch(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Query("v"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing video id")
	}
	page, err := s.pages.Video(c.UserContext(), id)
	if err != nil {
		return s.upstreamError(c, err)
	}
	return s.render(c, fiber.StatusOK, "video", page)
}

func (s *server) search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing search query")
	}
	page, err := s.pages.Search(c.UserContext(), q, c.QueryInt("page", 1))
	if err != nil {
		return s.upstreamError(c, err)
	}
	return s.render(c, fiber.StatusOK, "search", page)
}

func (s *server) channel(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("channelId"))
	if id == "" {
		return fiber.NewError(fiber.StatusBadRequest, "missing channel id")
	}
	page, err := s.pages.Channel(c.UserContext(), id)
	if err != nil {
		return s.upstreamError(c, err)
	}
	return s.render(c, fiber.StatusOK, "channel", page)
}

// upstreamError logs the cause and maps it to a status without exposing it.
func (s *server) upstreamError(c *fiber.Ctx, err error) error {
	status := fiber.StatusBadGateway
	if errors.Is(err, adapter.ErrInvalidArgument) {
		status = fiber.StatusBadRequest
	}

	meta := map[string]any{
		"route":  c.Route().Path,
		"status": status,
		"error":  err.Error(),
	}
	var rerr *fetch.ResolveError
	if errors.As(err, &rerr) {
		meta["attempts"] = len(rerr.Attempts)
	}
	s.log.WarnObj("page request failed", "web_upstream_error", meta)

	return fiber.NewError(status, "upstream unavailable")
}

// handleError renders every error as the generic error page.
func (s *server) handleError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		status = ferr.Code
	}
	if status >= fiber.StatusInternalServerError && status != fiber.StatusBadGateway {
		s.log.ErrorObj("request failed", "web_error", map[string]any{
			"path":  c.Path(),
			"error": err.Error(),
		})
	}
	return s.render(c, status, "error", errorView{Status: status, Message: statusMessage(status)})
}

type errorView struct {
	Status  int
	Message string
}

func statusMessage(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "The request is missing something we need."
	case fiber.StatusNotFound:
		return "Nothing lives here."
	case fiber.StatusBadGateway:
		return "None of the mirrors answered in time. Try again in a moment."
	default:
		return "Something went wrong."
	}
}
