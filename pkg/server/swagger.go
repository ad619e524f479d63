package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"

	"phonecleaner/pkg/log"

	"github.com/labstack/echo/v4"
)

//go:embed web/swagger-ui.html web/swagger.yml
var webAssets embed.FS

// assets returns the swagger asset filesystem, preferring webDir when set.
func (cs *ChannelServer) assets() fs.FS {
	if cs.webDir != "" {
		return os.DirFS(cs.webDir)
	}
	sub, err := fs.Sub(webAssets, "web")
	if err != nil {
		// Only reachable if the embed directive and path disagree.
		panic(err)
	}
	return sub
}

func (cs *ChannelServer) serveSwaggerUI(ctx echo.Context) error {
	tmpl, err := template.ParseFS(cs.assets(), "swagger-ui.html")
	if err != nil {
		log.Error().Err(err).Str("web_dir", cs.webDir).Msg("Failed to load template")
		return ctx.String(http.StatusInternalServerError, fmt.Sprintf("Failed to load template: %v", err))
	}

	data := struct {
		Title       string
		SwaggerPath string
	}{
		Title:       "Storage Channel API Documentation",
		SwaggerPath: "/swagger.yml",
	}

	ctx.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	ctx.Response().WriteHeader(http.StatusOK)
	return tmpl.Execute(ctx.Response().Writer, data)
}

func (cs *ChannelServer) serveSwaggerSpec(ctx echo.Context) error {
	spec, err := fs.ReadFile(cs.assets(), "swagger.yml")
	if err != nil {
		log.Error().Err(err).Str("web_dir", cs.webDir).Msg("Failed to load swagger spec")
		return ctx.JSON(http.StatusNotFound, map[string]string{
			"error": "swagger spec not found",
		})
	}
	return ctx.Blob(http.StatusOK, "application/yaml", spec)
}
