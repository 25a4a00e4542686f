package sharing

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/auth"
	"github.com/phr/phr/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/share-requests", h.CreateShareRequest)
	api.GET("/share-requests", h.ListAsPatient)
	api.GET("/share-requests/incoming", h.ListAsProvider)
	api.POST("/share-requests/:id/approve", h.ApproveShareRequest)
	api.POST("/share-requests/:id/reject", h.RejectShareRequest)
}

func (h *Handler) CreateShareRequest(c echo.Context) error {
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, apperr.InvalidArgument("invalid request body: %v", err))
	}
	caller := auth.CallerFromContext(c.Request().Context())
	r, err := h.svc.Create(c.Request().Context(), caller, req)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusCreated, r)
}

func (h *Handler) ApproveShareRequest(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	r, err := h.svc.Approve(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, r)
}

func (h *Handler) RejectShareRequest(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	r, err := h.svc.Reject(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, r)
}

func (h *Handler) ListAsPatient(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	requests, err := h.svc.ListForPatient(c.Request().Context(), caller)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, requests)
}

func (h *Handler) ListAsProvider(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	requests, err := h.svc.ListForProvider(c.Request().Context(), caller)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, requests)
}
