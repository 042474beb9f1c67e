package api

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/travigo/busboard/pkg/api/routes"
	"github.com/travigo/busboard/pkg/config"
)

//go:embed web
var webFiles embed.FS

func NewApp(board routes.BoardProvider, busboardConfig *config.Config) (*fiber.App, error) {
	indexTemplate, err := template.ParseFS(webFiles, "web/index.html")
	if err != nil {
		return nil, err
	}

	staticFiles, err := fs.Sub(webFiles, "web/static")
	if err != nil {
		return nil, err
	}

	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	webApp.Use("/static", filesystem.New(filesystem.Config{
		Root: http.FS(staticFiles),
	}))

	routes.IndexRouter(webApp, indexTemplate, busboardConfig)

	group := webApp.Group("/api")

	group.Get("version", routes.APIVersion)

	routes.DataRouter(group, board)
	routes.StatsRouter(group.Group("/stats"), board)

	return webApp, nil
}

func SetupServer(listen string, board routes.BoardProvider, busboardConfig *config.Config) error {
	webApp, err := NewApp(board, busboardConfig)
	if err != nil {
		return err
	}

	return webApp.Listen(listen)
}
