// Package hooks exposes handlers for Heroku deploy callbacks.
package hooks

import "github.com/gofiber/fiber/v3"

// Routes wires the Heroku deploy endpoints under /heroku.
func Routes(app fiber.Router, h *Handler) {
	group := app.Group("/heroku")

	// POST /heroku/webhook receives release notifications from the Heroku
	// webhook API; POST /heroku/deploy_hook supports the classic HTTP-post
	// deploy hook, which carries the revision range in the form body.
	group.Post("/webhook", h.webhookHandler)
	group.Post("/deploy_hook", h.deployHookHandler)
}
