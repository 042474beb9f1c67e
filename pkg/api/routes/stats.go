package routes

import (
	"github.com/gofiber/fiber/v2"
)

func StatsRouter(router fiber.Router, board BoardProvider) {
	router.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"caches": board.CacheStats(),
		})
	})
}
