package routes

import (
	"bytes"
	"html/template"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/config"
)

type indexPage struct {
	Groups       []config.RouteGroup
	DefaultGroup string
	GeneratedAt  string
}

func IndexRouter(router fiber.Router, indexTemplate *template.Template, busboardConfig *config.Config) {
	router.Get("/", func(c *fiber.Ctx) error {
		page := indexPage{
			Groups:       busboardConfig.Groups,
			DefaultGroup: busboardConfig.Board.DefaultGroup,
			GeneratedAt:  time.Now().In(busboardConfig.Location).Format("2006-01-02 15:04:05 MST"),
		}

		var rendered bytes.Buffer
		if err := indexTemplate.Execute(&rendered, page); err != nil {
			log.Error().Err(err).Msg("Failed to render index page")
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to render page")
		}

		c.Type("html", "utf-8")
		return c.Send(rendered.Bytes())
	})
}
