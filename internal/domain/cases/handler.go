package cases

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gvaxx/ai-patient/pkg/pagination"
)

// Handler exposes case browsing endpoints. Only the answer-free
// presentation of a case is ever served.
type Handler struct {
	registry *Registry
}

// NewHandler creates a case browsing handler.
func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

// RegisterRoutes binds case routes onto the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.GET("/cases", h.ListCases)
	g.GET("/cases/:id", h.GetCase)
}

// ListCases handles GET /cases.
func (h *Handler) ListCases(c echo.Context) error {
	p := pagination.FromContext(c)
	all := h.registry.List()

	start := p.Offset
	if start > len(all) {
		start = len(all)
	}
	end := start + p.Limit
	if end > len(all) {
		end = len(all)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(all[start:end], len(all), p.Limit, p.Offset))
}

// GetCase handles GET /cases/:id.
func (h *Handler) GetCase(c echo.Context) error {
	cc, err := h.registry.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrUnknownCase) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "case not found"})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"case_id":         cc.CaseID,
		"title":           cc.Title,
		"patient":         cc.Patient,
		"chief_complaint": cc.ChiefComplaint,
		"history":         cc.History,
		"symptoms":        cc.Symptoms,
	})
}
