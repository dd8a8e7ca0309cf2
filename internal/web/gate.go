package web

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

const gateCookieValue = "True"

// gate is the cookie check in front of the content pages. It is not
// authentication: anyone can obtain the cookie from the cover page.
type gate struct {
	name   string
	maxAge time.Duration
}

func (g gate) open(c *fiber.Ctx) bool {
	return c.Cookies(g.name) != ""
}

// grant sets or refreshes the gate cookie.
func (g gate) grant(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     g.name,
		Value:    gateCookieValue,
		Path:     "/",
		MaxAge:   int(g.maxAge / time.Second),
		Expires:  time.Now().Add(g.maxAge),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// require sends visitors without the cookie back to the home page.
func (g gate) require(c *fiber.Ctx) error {
	if !g.open(c) {
		return c.Redirect("/", fiber.StatusFound)
	}
	return c.Next()
}
