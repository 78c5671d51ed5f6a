package trips

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	g := r.Group("/trips", authMiddleware)

	g.Get("/", func(c *fiber.Ctx) error {
		records, err := svc.List(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(records)
	})

	g.Get("/summary", func(c *fiber.Ctx) error {
		sum, err := svc.Summarize(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(sum)
	})

	g.Delete("/:id", func(c *fiber.Ctx) error {
		if err := svc.Delete(c.Context(), userFrom(c), c.Params("id")); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

func userFrom(c *fiber.Ctx) string {
	if v, ok := c.Locals("user_id").(string); ok {
		return v
	}
	return ""
}
