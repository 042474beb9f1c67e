package routes

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/travigo/busboard/pkg/ctdf"
	"github.com/travigo/busboard/pkg/departureboard"
)

type BoardProvider interface {
	Board(ctx context.Context, groupID string) (*ctdf.Board, error)
	CacheStats() []ctdf.CacheStats
}

func DataRouter(router fiber.Router, board BoardProvider) {
	router.Get("/data", getBoardData(board))
}

func getBoardData(board BoardProvider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groupID := c.Query("direction_group")

		boardData, err := board.Board(c.UserContext(), groupID)
		if errors.Is(err, departureboard.ErrUnknownGroup) {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Unknown direction group",
			})
		} else if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		groups := []string{"basic"}
		if c.Query("debug") == "1" {
			groups = append(groups, "debug")
		}

		boardReduced, err := sheriff.Marshal(&sheriff.Options{
			Groups: groups,
		}, boardData)

		if err != nil {
			c.SendStatus(fiber.StatusInternalServerError)
			return c.JSON(fiber.Map{
				"error": "Sherrif could not reduce board",
			})
		}

		return c.JSON(boardReduced)
	}
}
