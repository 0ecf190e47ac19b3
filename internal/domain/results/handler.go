package results

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/domain/catalog"
)

// Handler exposes the test catalog and per-case test results over HTTP.
type Handler struct {
	svc      *Service
	registry *cases.Registry
}

// NewHandler creates a results handler.
func NewHandler(svc *Service, registry *cases.Registry) *Handler {
	return &Handler{svc: svc, registry: registry}
}

// RegisterRoutes binds test routes onto the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/tests", h.ListTests)
	g.GET("/cases/:caseId/tests/:testId", h.GetTestResult)
}

// ListTests handles GET /tests.
func (h *Handler) ListTests(c echo.Context) error {
	tests := h.svc.ListTests()
	return c.JSON(http.StatusOK, map[string]any{
		"data":  tests,
		"total": len(tests),
	})
}

// GetTestResult handles GET /cases/:caseId/tests/:testId. The case's
// authored results, when present, supersede generated normals.
func (h *Handler) GetTestResult(c echo.Context) error {
	cc, err := h.registry.Get(c.Param("caseId"))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "case not found"})
	}

	result, err := h.svc.GetTestResult(c.Param("testId"), cc)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownTest) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "test not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, result)
}
