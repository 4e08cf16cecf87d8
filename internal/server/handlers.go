// Package server provides HTTP handlers and server setup for the catalog addon.
package server

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"indcat/internal/catalog"
	"indcat/internal/core"
	"indcat/internal/languages"
	"indcat/internal/userconfig"
)

//go:embed configure.html.tmpl
var templateFS embed.FS

var configureTmpl = template.Must(template.ParseFS(templateFS, "configure.html.tmpl"))

// Handler holds the HTTP handlers
type Handler struct {
	service  *catalog.Service
	registry *languages.Registry
}

// NewHandler creates a new handler backed by the given catalog service.
func NewHandler(service *catalog.Service, registry *languages.Registry) *Handler {
	return &Handler{
		service:  service,
		registry: registry,
	}
}

// metasResponse is the catalog payload shape the client expects.
type metasResponse struct {
	Metas []core.CatalogItem `json:"metas"`
}

// Home handles GET / and redirects to the configuration page.
func (h *Handler) Home(c echo.Context) error {
	return c.Redirect(http.StatusFound, "/configure")
}

type configureLanguage struct {
	Code    string
	Name    string
	Checked bool
}

// ConfigureForm handles GET /configure
func (h *Handler) ConfigureForm(c echo.Context) error {
	codes := h.registry.Codes()
	sort.Strings(codes)

	langs := make([]configureLanguage, 0, len(codes))
	for _, code := range codes {
		langs = append(langs, configureLanguage{
			Code:    code,
			Name:    h.registry.Name(code),
			Checked: code == userconfig.DefaultLanguages[0],
		})
	}

	var buf bytes.Buffer
	if err := configureTmpl.Execute(&buf, map[string]any{"Languages": langs}); err != nil {
		slog.Error("rendering configure page", "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}
	return c.HTML(http.StatusOK, buf.String())
}

// ConfigureSubmit handles POST /configure: it encodes the submitted
// configuration and redirects to the configured manifest URL.
func (h *Handler) ConfigureSubmit(c echo.Context) error {
	apiKey := strings.TrimSpace(c.FormValue("api_key"))
	if apiKey == "" {
		return handleError(c, core.NewInvalidConfigError("API key is required", nil))
	}

	form, err := c.FormParams()
	if err != nil {
		return handleError(c, core.NewInvalidConfigError("invalid form submission", err))
	}
	langs := form["languages"]
	if len(langs) == 0 {
		langs = userconfig.DefaultLanguages
	}

	encoded, err := userconfig.Encode(&userconfig.UserConfig{
		APIKey:    apiKey,
		Languages: langs,
	})
	if err != nil {
		slog.Error("encoding user config", "error", err)
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.Redirect(http.StatusFound, "/"+encoded+"/manifest.json")
}

// DefaultManifest handles GET /manifest.json for unconfigured installs.
func (h *Handler) DefaultManifest(c echo.Context) error {
	return c.JSON(http.StatusOK, defaultManifest())
}

// Manifest handles GET /:config/manifest.json
func (h *Handler) Manifest(c echo.Context) error {
	cfg, err := userconfig.Decode(c.Param("config"))
	if err != nil {
		return handleError(c, core.NewInvalidConfigError("invalid configuration", err))
	}
	return c.JSON(http.StatusOK, manifestFor(cfg, h.registry))
}

// Catalog handles GET /:config/catalog/movie/:id with optional ?skip=N.
// The client never sees fetch errors: an invalid configuration yields empty
// metas with a 400, everything else an empty or populated list.
func (h *Handler) Catalog(c echo.Context) error {
	cfg, err := userconfig.Decode(c.Param("config"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, metasResponse{Metas: []core.CatalogItem{}})
	}

	category := strings.TrimSuffix(c.Param("id"), ".json")

	// Absent or malformed skip reads as 0.
	skip, _ := strconv.Atoi(c.QueryParam("skip"))

	metas, err := h.service.List(c.Request().Context(), cfg.APIKey, category, skip)
	if err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, metasResponse{Metas: metas})
}

// Refresh handles GET /:config/refresh: it kicks background repopulation
// for every configured language and returns immediately.
func (h *Handler) Refresh(c echo.Context) error {
	cfg, err := userconfig.Decode(c.Param("config"))
	if err != nil {
		return handleError(c, core.NewInvalidConfigError("invalid configuration", err))
	}

	if err := h.service.Refresh(c.Request().Context(), cfg.APIKey, cfg.Languages); err != nil {
		return handleError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "refresh started in background"})
}

// Health handles GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError converts addon errors to appropriate HTTP responses
func handleError(c echo.Context, err error) error {
	var addonErr *core.AddonError
	if errors.As(err, &addonErr) {
		return c.JSON(addonErr.HTTPStatusCode(), addonErr.ToJSON())
	}

	// Fallback for unexpected errors
	return c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"error": map[string]interface{}{
			"type":    "internal_error",
			"message": "an unexpected error occurred",
		},
	})
}
