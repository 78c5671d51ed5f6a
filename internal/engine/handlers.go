package engine

import (
	"errors"
	"time"

	"github.com/MacTheAnon/DriverPro/internal/geo"
	"github.com/MacTheAnon/DriverPro/internal/location"
	"github.com/MacTheAnon/DriverPro/internal/pending"

	"github.com/gofiber/fiber/v2"
)

type samplePayload struct {
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	CapturedAt time.Time `json:"captured_at"`
}

func (p samplePayload) point() geo.Point {
	captured := p.CapturedAt
	if captured.IsZero() {
		captured = time.Now()
	}
	return geo.Point{Lat: p.Lat, Lng: p.Lng, CapturedAt: captured}
}

func userFrom(c *fiber.Ctx) string {
	if id, ok := c.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

// RegisterRoutes exposes the tracking engine: session control, the foreground
// sample feed, and the background batch ingest that only ever touches the
// durable pending queue.
func RegisterRoutes(r fiber.Router, mgr *Manager, feed *location.Feed, store *pending.Store, authMiddleware fiber.Handler) {
	r.Post("/start", authMiddleware, func(c *fiber.Ctx) error {
		var opts StartOptions
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&opts); err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}
		opts.AutoStarted = false

		if err := mgr.Start(c.Context(), userFrom(c), opts); err != nil {
			switch {
			case errors.Is(err, ErrAlreadyTracking):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrBackgroundPermissionDenied):
				return fiber.NewError(fiber.StatusForbidden, err.Error())
			default:
				return fiber.NewError(fiber.StatusInternalServerError, err.Error())
			}
		}
		return c.Status(fiber.StatusCreated).JSON(mgr.Status(userFrom(c)))
	})

	r.Post("/stop", authMiddleware, func(c *fiber.Ctx) error {
		result, err := mgr.Stop(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		if !result.Stopped {
			return c.JSON(fiber.Map{"stopped": false, "message": "nothing to stop"})
		}
		return c.JSON(result)
	})

	r.Get("/status", authMiddleware, func(c *fiber.Ctx) error {
		return c.JSON(mgr.Status(userFrom(c)))
	})

	r.Post("/samples", authMiddleware, func(c *fiber.Ctx) error {
		var req samplePayload
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		feed.Push(userFrom(c), req.point())
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/background/samples", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			Samples []samplePayload `json:"samples"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		points := make([]geo.Point, 0, len(req.Samples))
		for _, sp := range req.Samples {
			points = append(points, sp.point())
		}
		if err := store.Append(c.Context(), userFrom(c), points); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusAccepted)
	})

	r.Post("/income", authMiddleware, func(c *fiber.Ctx) error {
		var req struct {
			GrossUSD float64 `json:"gross_usd"`
		}
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := mgr.SetGigIncome(userFrom(c), req.GrossUSD); err != nil {
			return fiber.NewError(fiber.StatusConflict, err.Error())
		}
		return c.JSON(mgr.Status(userFrom(c)))
	})

	r.Post("/resubmit", authMiddleware, func(c *fiber.Ctx) error {
		saved, err := mgr.Resubmit(c.Context(), userFrom(c))
		if err != nil && len(saved) == 0 {
			if errors.Is(err, ErrNothingHeld) {
				return fiber.NewError(fiber.StatusNotFound, err.Error())
			}
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		return c.JSON(fiber.Map{"submitted": saved})
	})

	r.Post("/discard", authMiddleware, func(c *fiber.Ctx) error {
		if err := mgr.Discard(userFrom(c)); err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}
