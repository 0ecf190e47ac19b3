package session

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/gvaxx/ai-patient/internal/domain/cases"
	"github.com/gvaxx/ai-patient/internal/domain/catalog"
	"github.com/gvaxx/ai-patient/internal/platform/auth"
	"github.com/gvaxx/ai-patient/pkg/pagination"
)

// Handler exposes the session lifecycle over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler creates a session handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes binds session routes onto the given group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/sessions", h.StartSession)
	g.GET("/sessions", h.ListSessions)
	g.GET("/sessions/:id", h.GetSession)
	g.POST("/sessions/:id/ask", h.Ask)
	g.POST("/sessions/:id/tests/:testId", h.OrderTest)
	g.POST("/sessions/:id/submit", h.Submit)
}

type startRequest struct {
	CaseID  string `json:"case_id"`
	Learner string `json:"learner"`
}

// StartSession handles POST /sessions.
func (h *Handler) StartSession(c echo.Context) error {
	var req startRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.CaseID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "case_id is required")
	}

	// Sessions are attributed to the identity the auth middleware
	// verified. The body field can only name an otherwise-anonymous
	// learner.
	learner := auth.LearnerFromContext(c)
	if learner == auth.AnonymousLearner && req.Learner != "" {
		learner = req.Learner
	}

	sess, err := h.svc.Start(c.Request().Context(), req.CaseID, learner)
	if err != nil {
		if errors.Is(err, cases.ErrUnknownCase) {
			return echo.NewHTTPError(http.StatusNotFound, "case not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, sess)
}

// ListSessions handles GET /sessions.
func (h *Handler) ListSessions(c echo.Context) error {
	pg := pagination.FromContext(c)
	sessions, total, err := h.svc.List(c.Request().Context(), c.QueryParam("case_id"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(sessions, total, pg.Limit, pg.Offset))
}

// GetSession handles GET /sessions/:id.
func (h *Handler) GetSession(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sess, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

type askRequest struct {
	Question string `json:"question"`
}

// Ask handles POST /sessions/:id/ask.
func (h *Handler) Ask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req askRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}

	answer, err := h.svc.Ask(c.Request().Context(), id, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		case errors.Is(err, ErrSessionClosed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNoResponder):
			return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
		default:
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"answer": answer})
}

// OrderTest handles POST /sessions/:id/tests/:testId.
func (h *Handler) OrderTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result, err := h.svc.OrderTest(c.Request().Context(), id, c.Param("testId"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		case errors.Is(err, catalog.ErrUnknownTest):
			return echo.NewHTTPError(http.StatusNotFound, "test not found")
		case errors.Is(err, ErrSessionClosed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, result)
}

type submitRequest struct {
	Diagnosis string         `json:"diagnosis"`
	Treatment map[string]any `json:"treatment"`
}

// Submit handles POST /sessions/:id/submit.
func (h *Handler) Submit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.Diagnosis == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "diagnosis is required")
	}

	sub, err := h.svc.Submit(c.Request().Context(), id, req.Diagnosis, req.Treatment)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "session not found")
		case errors.Is(err, ErrSessionClosed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, sub)
}
