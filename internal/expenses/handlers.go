package expenses

import (
	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	g := r.Group("/expenses", authMiddleware)

	g.Post("/", func(c *fiber.Ctx) error {
		var req Expense
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.AmountUSD <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "amount_usd must be positive")
		}
		req.UserID = userFrom(c)
		e, err := svc.Create(c.Context(), req)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	})

	g.Get("/", func(c *fiber.Ctx) error {
		results, err := svc.List(c.Context(), userFrom(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(results)
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
