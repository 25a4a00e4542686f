package record

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/auth"
	"github.com/phr/phr/internal/platform/identity"
	"github.com/phr/phr/internal/platform/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/records", h.CreateRecord)
	api.GET("/records", h.ListOwnedRecords)
	api.GET("/records/shared", h.ListAccessibleRecords)
	api.GET("/records/:id", h.GetRecord)
	api.PATCH("/records/:id", h.UpdateRecord)
	api.DELETE("/records/:id", h.DeleteRecord)
	api.DELETE("/records/:id/shares/:provider", h.RevokeAccess)
}

func (h *Handler) CreateRecord(c echo.Context) error {
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

func (h *Handler) GetRecord(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	r, err := h.svc.Get(c.Request().Context(), caller, c.Param("id"))
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, r)
}

func (h *Handler) ListOwnedRecords(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	records, err := h.svc.ListOwned(c.Request().Context(), caller)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, records)
}

func (h *Handler) ListAccessibleRecords(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	records, err := h.svc.ListAccessible(c.Request().Context(), caller)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, records)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return respond.Err(c, apperr.InvalidArgument("invalid request body: %v", err))
	}
	caller := auth.CallerFromContext(c.Request().Context())
	r, err := h.svc.Update(c.Request().Context(), caller, c.Param("id"), req)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, r)
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	if err := h.svc.Delete(c.Request().Context(), caller, c.Param("id")); err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, nil)
}

func (h *Handler) RevokeAccess(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	grantee := identity.Ref(c.Param("provider"))
	r, err := h.svc.Revoke(c.Request().Context(), caller, c.Param("id"), grantee)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, r)
}
