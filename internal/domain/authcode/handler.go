package authcode

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/altuhealth/claims-api/internal/platform/auth"
	"github.com/altuhealth/claims-api/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/authorization-codes")

	g.POST("", h.Create, auth.RequireRole("admin", "staff"))
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update, auth.RequireRole("admin", "staff"))

	g.GET("/verify/:code", h.Verify)
	g.POST("/use/:code", h.Use)
	g.POST("/cancel/:code", h.Cancel, auth.RequireRole("admin", "staff"))
}

func httpError(err error) error {
	var ve *ValidationError
	var se *StateError
	var nf *NotFoundError
	switch {
	case errors.As(err, &ve):
		return echo.NewHTTPError(http.StatusBadRequest, ve.Error())
	case errors.As(err, &se):
		return echo.NewHTTPError(http.StatusBadRequest, se.Error())
	case errors.As(err, &nf):
		return echo.NewHTTPError(http.StatusNotFound, nf.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

type codeEnvelope struct {
	Success bool               `json:"success"`
	Code    *AuthorizationCode `json:"authorizationCode"`
}

type createRequest struct {
	EnrolleeID       uuid.UUID  `json:"enrolleeId" validate:"required"`
	ProviderID       *uuid.UUID `json:"providerId"`
	DiagnosisID      *uuid.UUID `json:"diagnosisId"`
	ValidFrom        time.Time  `json:"validFrom"`
	ValidTo          time.Time  `json:"validTo" validate:"required"`
	AmountAuthorized float64    `json:"amountAuthorized" validate:"required,gt=0"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ac := AuthorizationCode{
		EnrolleeID:       req.EnrolleeID,
		ProviderID:       req.ProviderID,
		DiagnosisID:      req.DiagnosisID,
		ValidFrom:        req.ValidFrom,
		ValidTo:          req.ValidTo,
		AmountAuthorized: req.AmountAuthorized,
		Notes:            req.Notes,
	}
	if err := h.svc.Create(c.Request().Context(), &ac); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, codeEnvelope{Success: true, Code: &ac})
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ac, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, codeEnvelope{Success: true, Code: ac})
}

func (h *Handler) List(c echo.Context) error {
	var filter ListFilter
	if e := c.QueryParam("enrolleeId"); e != "" {
		eid, err := uuid.Parse(e)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid enrolleeId")
		}
		filter.EnrolleeID = &eid
	}
	if p := c.QueryParam("providerId"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid providerId")
		}
		filter.ProviderID = &pid
	}
	if s := c.QueryParam("status"); s != "" {
		filter.Status = Status(s)
	}

	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), filter, pg.Limit, pg.Offset())
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*AuthorizationCode{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":            true,
		"authorizationCodes": items,
		"pagination":         pagination.NewMeta(total, pg),
	})
}

type updateRequest struct {
	ValidTo          *time.Time `json:"validTo"`
	AmountAuthorized *float64   `json:"amountAuthorized"`
	Notes            *string    `json:"notes"`
}

func (h *Handler) Update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ac, err := h.svc.UpdateValidity(c.Request().Context(), id, req.ValidTo, req.AmountAuthorized, req.Notes)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, codeEnvelope{Success: true, Code: ac})
}

func (h *Handler) Verify(c echo.Context) error {
	res, err := h.svc.Verify(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success":           true,
		"valid":             res.Valid,
		"reason":            res.Reason,
		"authorizationCode": res.Code,
	})
}

type useRequest struct {
	Amount float64 `json:"amount"`
}

func (h *Handler) Use(c echo.Context) error {
	var req useRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ac, err := h.svc.Use(c.Request().Context(), c.Param("code"), req.Amount)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, codeEnvelope{Success: true, Code: ac})
}

func (h *Handler) Cancel(c echo.Context) error {
	ac, err := h.svc.Cancel(c.Request().Context(), c.Param("code"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, codeEnvelope{Success: true, Code: ac})
}
