package directory

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/phr/phr/internal/platform/apperr"
	"github.com/phr/phr/internal/platform/auth"
	"github.com/phr/phr/internal/platform/identity"
	"github.com/phr/phr/internal/platform/respond"
	"github.com/phr/phr/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/patients", h.RegisterPatient)
	api.GET("/patients/me", h.GetOwnPatientProfile)
	api.PUT("/patients/me", h.UpdateOwnPatientProfile)
	api.POST("/providers", h.RegisterProvider)
	api.GET("/providers", h.ListProviders)
	api.GET("/providers/:id", h.GetProvider)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return respond.Err(c, apperr.InvalidArgument("invalid request body: %v", err))
	}
	caller := auth.CallerFromContext(c.Request().Context())
	created, err := h.svc.RegisterPatient(c.Request().Context(), caller, &p)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusCreated, created)
}

func (h *Handler) GetOwnPatientProfile(c echo.Context) error {
	caller := auth.CallerFromContext(c.Request().Context())
	p, err := h.svc.GetPatient(c.Request().Context(), caller)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, p)
}

func (h *Handler) UpdateOwnPatientProfile(c echo.Context) error {
	var p Patient
	if err := c.Bind(&p); err != nil {
		return respond.Err(c, apperr.InvalidArgument("invalid request body: %v", err))
	}
	caller := auth.CallerFromContext(c.Request().Context())
	updated, err := h.svc.UpdatePatient(c.Request().Context(), caller, &p)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, updated)
}

func (h *Handler) RegisterProvider(c echo.Context) error {
	var p Provider
	if err := c.Bind(&p); err != nil {
		return respond.Err(c, apperr.InvalidArgument("invalid request body: %v", err))
	}
	caller := auth.CallerFromContext(c.Request().Context())
	created, err := h.svc.RegisterProvider(c.Request().Context(), caller, &p)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusCreated, created)
}

func (h *Handler) GetProvider(c echo.Context) error {
	p, err := h.svc.GetProvider(c.Request().Context(), identity.Ref(c.Param("id")))
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, p)
}

func (h *Handler) ListProviders(c echo.Context) error {
	pg := pagination.FromContext(c)
	providers, total, err := h.svc.ListProviders(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return respond.Err(c, err)
	}
	return respond.OK(c, http.StatusOK, pagination.NewResponse(providers, total, pg.Limit, pg.Offset))
}
