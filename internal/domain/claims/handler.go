package claims

import (
	"errors"
	"net/http"
	"strconv"

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
	g := api.Group("/claims")

	g.POST("", h.CreateClaim)
	g.GET("/list", h.ListClaims)
	g.GET("/:id", h.GetClaim)
	g.PUT("/:id", h.UpdateClaim)
	g.DELETE("/:id", h.DeleteClaim)

	g.POST("/:id/submit", h.Submit)
	g.POST("/:id/vet", h.Vet, auth.RequireRole("admin", "vetter"))
	g.POST("/:id/approve", h.Approve, auth.RequireRole("admin", "vetter"))
	g.POST("/:id/reject", h.Reject, auth.RequireRole("admin", "vetter"))
	g.POST("/:id/query", h.Query, auth.RequireRole("admin", "vetter"))
	g.POST("/:id/mark-paid", h.MarkPaid, auth.RequireRole("admin", "finance"))
	g.POST("/:id/mark-partially-paid", h.MarkPartiallyPaid, auth.RequireRole("admin", "finance"))

	g.GET("/filter/by-provider/:providerId", h.FilterByProvider)
	g.GET("/filter/by-status/:status", h.FilterByStatus)
	g.GET("/filter/by-period", h.FilterByPeriod)
	g.GET("/filter/by-submitter/:submittedById", h.FilterBySubmitter)

	g.GET("/analytics/summary", h.AnalyticsSummary)
	g.GET("/analytics/by-status", h.AnalyticsByStatus)
	g.GET("/analytics/by-provider", h.AnalyticsByProvider)
	g.GET("/analytics/payment-stats", h.AnalyticsPaymentStats)

	g.GET("/:claimId/details", h.ListDetails)
	g.POST("/:claimId/details", h.AddDetail)
	g.GET("/:claimId/details/:detailId", h.GetDetail)
	g.PUT("/:claimId/details/:detailId", h.UpdateDetail)
	g.DELETE("/:claimId/details/:detailId", h.DeleteDetail)
}

// httpError maps domain errors onto HTTP status codes. The response envelope
// itself is rendered by the shared error handler.
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

func pathID(c echo.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

type claimEnvelope struct {
	Success bool   `json:"success"`
	Claim   *Claim `json:"claim"`
}

type listEnvelope struct {
	Success    bool            `json:"success"`
	Claims     []*Claim        `json:"claims"`
	Pagination pagination.Meta `json:"pagination"`
}

// -- Claim CRUD --

func (h *Handler) CreateClaim(c echo.Context) error {
	var cl Claim
	if err := c.Bind(&cl); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateClaim(c.Request().Context(), &cl); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, claimEnvelope{Success: true, Claim: &cl})
}

func (h *Handler) GetClaim(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	cl, err := h.svc.GetClaim(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, claimEnvelope{Success: true, Claim: cl})
}

func (h *Handler) ListClaims(c echo.Context) error {
	filter, err := filterFromQuery(c)
	if err != nil {
		return err
	}
	return h.list(c, filter)
}

func (h *Handler) list(c echo.Context, filter ListFilter) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListClaims(c.Request().Context(), filter, pg.Limit, pg.Offset())
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*Claim{}
	}
	return c.JSON(http.StatusOK, listEnvelope{
		Success:    true,
		Claims:     items,
		Pagination: pagination.NewMeta(total, pg),
	})
}

func filterFromQuery(c echo.Context) (ListFilter, error) {
	var f ListFilter
	if s := c.QueryParam("status"); s != "" {
		f.Status = Status(s)
	}
	if p := c.QueryParam("providerId"); p != "" {
		pid, err := uuid.Parse(p)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid providerId")
		}
		f.ProviderID = &pid
	}
	if y := c.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
		f.Year = year
	}
	if m := c.QueryParam("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return f, echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		f.Month = month
	}
	return f, nil
}

func (h *Handler) UpdateClaim(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var upd Claim
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := h.svc.UpdateClaim(c.Request().Context(), id, &upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, claimEnvelope{Success: true, Claim: cl})
}

func (h *Handler) DeleteClaim(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteClaim(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "claim deleted",
	})
}

// -- Transitions --

type transitionRequest struct {
	VetterNotes     string     `json:"vetterNotes"`
	RejectionReason string     `json:"rejectionReason"`
	AmountProcessed *float64   `json:"amountProcessed"`
	PartialAmount   float64    `json:"partialAmount"`
	PaymentBatchID  *uuid.UUID `json:"paymentBatchId"`
}

func (h *Handler) transition(c echo.Context, fn func(id uuid.UUID, req transitionRequest) (*Claim, error)) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cl, err := fn(id, req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, claimEnvelope{Success: true, Claim: cl})
}

func (h *Handler) Submit(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.Submit(c.Request().Context(), id, req.VetterNotes)
	})
}

func (h *Handler) Vet(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.Vet(c.Request().Context(), id, req.VetterNotes)
	})
}

func (h *Handler) Approve(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.Approve(c.Request().Context(), id, req.AmountProcessed)
	})
}

func (h *Handler) Reject(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.Reject(c.Request().Context(), id, req.RejectionReason)
	})
}

func (h *Handler) Query(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.Query(c.Request().Context(), id, req.VetterNotes)
	})
}

func (h *Handler) MarkPaid(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.MarkPaid(c.Request().Context(), id, req.PaymentBatchID)
	})
}

func (h *Handler) MarkPartiallyPaid(c echo.Context) error {
	return h.transition(c, func(id uuid.UUID, req transitionRequest) (*Claim, error) {
		return h.svc.MarkPartiallyPaid(c.Request().Context(), id, req.PartialAmount, req.PaymentBatchID)
	})
}

// -- Filter routes --

func (h *Handler) FilterByProvider(c echo.Context) error {
	pid, err := pathID(c, "providerId")
	if err != nil {
		return err
	}
	return h.list(c, ListFilter{ProviderID: &pid})
}

func (h *Handler) FilterByStatus(c echo.Context) error {
	status := Status(c.Param("status"))
	if !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
	}
	return h.list(c, ListFilter{Status: status})
}

func (h *Handler) FilterByPeriod(c echo.Context) error {
	year, err := strconv.Atoi(c.QueryParam("year"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
	}
	filter := ListFilter{Year: year}
	if m := c.QueryParam("month"); m != "" {
		month, err := strconv.Atoi(m)
		if err != nil || month < 1 || month > 12 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid month")
		}
		filter.Month = month
	}
	return h.list(c, filter)
}

func (h *Handler) FilterBySubmitter(c echo.Context) error {
	submitter := c.Param("submittedById")
	if submitter == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid submittedById")
	}
	return h.list(c, ListFilter{SubmittedByID: submitter})
}

// -- Analytics --

func (h *Handler) AnalyticsSummary(c echo.Context) error {
	sum, err := h.svc.Summary(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "summary": sum})
}

func (h *Handler) AnalyticsByStatus(c echo.Context) error {
	counts, err := h.svc.CountByStatus(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if counts == nil {
		counts = []*StatusCount{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "statuses": counts})
}

func (h *Handler) AnalyticsByProvider(c echo.Context) error {
	rows, err := h.svc.SummaryByProvider(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	if rows == nil {
		rows = []*ProviderSummary{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "providers": rows})
}

func (h *Handler) AnalyticsPaymentStats(c echo.Context) error {
	stats, err := h.svc.PaymentStats(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "paymentStats": stats})
}

// -- Claim details --

type detailEnvelope struct {
	Success bool    `json:"success"`
	Detail  *Detail `json:"claimDetail"`
}

func (h *Handler) ListDetails(c echo.Context) error {
	claimID, err := pathID(c, "claimId")
	if err != nil {
		return err
	}
	items, err := h.svc.ListDetails(c.Request().Context(), claimID)
	if err != nil {
		return httpError(err)
	}
	if items == nil {
		items = []*Detail{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"success": true, "claimDetails": items})
}

func (h *Handler) AddDetail(c echo.Context) error {
	claimID, err := pathID(c, "claimId")
	if err != nil {
		return err
	}
	var d Detail
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.AddDetail(c.Request().Context(), claimID, &d); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, detailEnvelope{Success: true, Detail: &d})
}

func (h *Handler) GetDetail(c echo.Context) error {
	claimID, err := pathID(c, "claimId")
	if err != nil {
		return err
	}
	detailID, err := pathID(c, "detailId")
	if err != nil {
		return err
	}
	d, err := h.svc.GetDetail(c.Request().Context(), claimID, detailID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detailEnvelope{Success: true, Detail: d})
}

func (h *Handler) UpdateDetail(c echo.Context) error {
	claimID, err := pathID(c, "claimId")
	if err != nil {
		return err
	}
	detailID, err := pathID(c, "detailId")
	if err != nil {
		return err
	}
	var upd Detail
	if err := c.Bind(&upd); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateDetail(c.Request().Context(), claimID, detailID, &upd)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, detailEnvelope{Success: true, Detail: d})
}

func (h *Handler) DeleteDetail(c echo.Context) error {
	claimID, err := pathID(c, "claimId")
	if err != nil {
		return err
	}
	detailID, err := pathID(c, "detailId")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteDetail(c.Request().Context(), claimID, detailID); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "claim detail deleted",
	})
}
