package profile

import (
	"github.com/gofiber/fiber/v2"
)

type schedulePayload struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

type odometerPayload struct {
	Miles float64 `json:"miles"`
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	g := r.Group("/profile", authMiddleware)

	g.Get("/", func(c *fiber.Ctx) error {
		p, err := svc.Get(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(p)
	})

	g.Put("/", func(c *fiber.Ctx) error {
		var req Profile
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		req.UserID = userFrom(c)
		if err := svc.Save(c.Context(), req); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(req)
	})

	g.Get("/schedule", func(c *fiber.Ctx) error {
		cfg, err := svc.GetSchedule(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(schedulePayload{
			Enabled: cfg.Enabled,
			Start:   FormatClock(cfg.StartMinuteOfDay),
			End:     FormatClock(cfg.EndMinuteOfDay),
		})
	})

	g.Put("/schedule", func(c *fiber.Ctx) error {
		var req schedulePayload
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		start, err := ParseClock(req.Start)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		end, err := ParseClock(req.End)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cfg := ScheduleConfig{Enabled: req.Enabled, StartMinuteOfDay: start, EndMinuteOfDay: end}
		if err := svc.SaveSchedule(c.Context(), userFrom(c), cfg); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(req)
	})

	g.Get("/odometer", func(c *fiber.Ctx) error {
		miles, err := svc.GetOdometer(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(odometerPayload{Miles: miles})
	})

	g.Put("/odometer", func(c *fiber.Ctx) error {
		var req odometerPayload
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Miles < 0 {
			return fiber.NewError(fiber.StatusBadRequest, "miles must not be negative")
		}
		if err := svc.SetOdometer(c.Context(), userFrom(c), req.Miles); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(req)
	})

	g.Get("/geofence", func(c *fiber.Ctx) error {
		cfg, err := svc.GetGeofence(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(cfg)
	})
}

func userFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
