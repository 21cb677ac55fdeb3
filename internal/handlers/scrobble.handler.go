package handlers

import (
	"errors"
	"strconv"

	"soundtrace/internal/app"
	scrobbleController "soundtrace/internal/controllers/scrobbles"
	"soundtrace/internal/handlers/middleware"
	"soundtrace/internal/types"

	logger "github.com/Bparsons0904/goLogger"

	"github.com/gofiber/fiber/v2"
)

type ScrobbleHandler struct {
	Handler
	scrobbleController scrobbleController.ScrobbleControllerInterface
}

func NewScrobbleHandler(app app.App, router fiber.Router) *ScrobbleHandler {
	log := logger.New("handlers").File("scrobble_handler")
	return &ScrobbleHandler{
		scrobbleController: app.Controllers.Scrobble,
		Handler: Handler{
			log:        log,
			router:     router,
			middleware: app.Middleware,
		},
	}
}

func (h *ScrobbleHandler) Register() {
	scrobbles := h.router.Group("/scrobbles")
	scrobbles.Use(h.middleware.RequireAuth())
	scrobbles.Post("", h.submitScrobble)
	scrobbles.Get("", h.getRecentScrobbles)
}

// submitScrobble accepts a play event and returns 202 immediately; the
// pipeline runs on a detached context.
func (h *ScrobbleHandler) submitScrobble(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	var event types.PlayEvent
	if err := c.BodyParser(&event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if err := h.scrobbleController.SubmitScrobble(c.Context(), user, &event); err != nil {
		if errors.Is(err, scrobbleController.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to submit scrobble",
		})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "accepted",
	})
}

func (h *ScrobbleHandler) getRecentScrobbles(c *fiber.Ctx) error {
	user := middleware.GetUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	scrobbles, err := h.scrobbleController.GetRecentScrobbles(c.Context(), user, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load scrobbles",
		})
	}

	return c.JSON(fiber.Map{
		"scrobbles": scrobbles,
	})
}
