package geofence

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

type armPayload struct {
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	RadiusMeters float64 `json:"radius_m"`
}

type eventPayload struct {
	Handle string `json:"handle"`
	Event  string `json:"event"`
}

// RegisterRoutes mounts the geofence endpoints. The events endpoint is the
// callback target for the platform's region monitoring push.
func RegisterRoutes(r fiber.Router, m *Monitor, authMiddleware fiber.Handler) {
	g := r.Group("/geofence", authMiddleware)

	g.Post("/arm", func(c *fiber.Ctx) error {
		userID := userFrom(c)
		var payload armPayload
		if err := c.BodyParser(&payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}

		cfg, err := m.profiles.GetGeofence(c.Context(), userID)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load geofence config")
		}
		cfg.AnchorLat = payload.Lat
		cfg.AnchorLng = payload.Lng
		if payload.RadiusMeters > 0 {
			cfg.RadiusMeters = payload.RadiusMeters
		}

		if err := m.Arm(c.Context(), userID, cfg); err != nil {
			if errors.Is(err, ErrPermissionDenied) {
				return fiber.NewError(fiber.StatusForbidden, "region monitoring permission denied; tracking stays manual")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"armed": true})
	})

	g.Post("/disarm", func(c *fiber.Ctx) error {
		if err := m.Disarm(c.Context(), userFrom(c)); err != nil {
			if errors.Is(err, ErrNotArmed) {
				return fiber.NewError(fiber.StatusNotFound, "geofence not armed")
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	g.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"armed": m.Armed(userFrom(c))})
	})

	g.Post("/events", func(c *fiber.Ctx) error {
		var payload eventPayload
		if err := c.BodyParser(&payload); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid body")
		}
		err := m.HandleEvent(c.Context(), RegionHandle(payload.Handle), EventType(payload.Event))
		switch {
		case err == nil:
			return c.SendStatus(fiber.StatusAccepted)
		case errors.Is(err, ErrUnknownRegion):
			return fiber.NewError(fiber.StatusNotFound, "unknown region")
		default:
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
	})
}

func userFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
