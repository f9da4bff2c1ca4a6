package api

import (
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"salarydash/internal/display"
	"salarydash/internal/engine"
	"salarydash/internal/export"
	"salarydash/internal/models"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	store atomic.Pointer[engine.ColumnStore]
	opts  engine.Options
}

// NewHandler creates a handler. A nil store keeps data routes answering 503
// until SetStore is called.
func NewHandler(store *engine.ColumnStore, opts engine.Options) *Handler {
	h := &Handler{opts: opts}
	if store != nil {
		h.store.Store(store)
	}
	return h
}

// SetStore publishes the loaded dataset.
func (h *Handler) SetStore(store *engine.ColumnStore) {
	h.store.Store(store)
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)

	api := e.Group("/api", h.requireStore)
	api.GET("/filters", h.GetFilters)
	api.GET("/dashboard", h.GetDashboard)
	api.GET("/kpis", h.GetKPIs)
	api.GET("/roles/top", h.GetTopRoles)
	api.GET("/salaries/distribution", h.GetDistribution)
	api.GET("/remote", h.GetRemoteShare)
	api.GET("/countries", h.GetCountryMeans)
	api.GET("/records", h.GetRecords)
	api.GET("/records.arrow", h.GetRecordsArrow)
}

// requireStore answers 503 while the dataset is still loading.
func (h *Handler) requireStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if h.store.Load() == nil {
			return echo.NewHTTPError(http.StatusServiceUnavailable, "dataset is loading")
		}
		return next(c)
	}
}

// --- SELECTION ---

// selectionFromQuery builds a FilterSelection from repeated or
// comma-separated query parameters. An absent parameter selects every value
// of its dimension; a present but empty one selects none. A parameter equal to
// a known value is never split, so values containing commas stay selectable.
func selectionFromQuery(q url.Values, opts models.FilterOptions) (models.FilterSelection, error) {
	sel := opts.Selection()

	if raw, ok := q[string(engine.DimYear)]; ok {
		sel.Years = []int{}
		for _, s := range splitValues(raw, nil) {
			y, err := strconv.Atoi(s)
			if err != nil {
				return sel, echo.NewHTTPError(http.StatusBadRequest, "invalid year: "+s)
			}
			sel.Years = append(sel.Years, y)
		}
	}
	if raw, ok := q[string(engine.DimSeniority)]; ok {
		sel.Seniorities = splitValues(raw, opts.Seniorities)
	}
	if raw, ok := q[string(engine.DimContractType)]; ok {
		sel.ContractTypes = splitValues(raw, opts.ContractTypes)
	}
	if raw, ok := q[string(engine.DimCompanySize)]; ok {
		sel.CompanySizes = splitValues(raw, opts.CompanySizes)
	}
	return sel, nil
}

func splitValues(raw, known []string) []string {
	out := []string{}
	for _, r := range raw {
		if v := strings.TrimSpace(r); v != "" && slices.Contains(known, v) {
			out = append(out, v)
			continue
		}
		for _, part := range strings.Split(r, ",") {
			if v := strings.TrimSpace(part); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// view resolves the request selection against the current store.
func (h *Handler) view(c echo.Context) (engine.View, error) {
	store := h.store.Load()
	sel, err := selectionFromQuery(c.QueryParams(), store.FilterOptions())
	if err != nil {
		return engine.View{}, err
	}
	return store.Filter(sel), nil
}

// --- HANDLERS ---

func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) Health(c echo.Context) error {
	store := h.store.Load()
	if store == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"status": "ready", "rows": store.Len()})
}

func (h *Handler) GetFilters(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Load().FilterOptions())
}

func (h *Handler) GetDashboard(c echo.Context) error {
	store := h.store.Load()
	sel, err := selectionFromQuery(c.QueryParams(), store.FilterOptions())
	if err != nil {
		return err
	}
	data := display.Decorate(store.Dashboard(sel, h.opts), h.opts.FocusRole)
	return c.JSON(http.StatusOK, data)
}

func (h *Handler) GetKPIs(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	kpi := engine.Summarize(v)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"kpi":     kpi,
		"display": display.KPI(kpi),
	})
}

// returns the top roles by mean salary, ascending
func (h *Handler) GetTopRoles(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.TopRoles(v, h.opts.TopRoles))
}

func (h *Handler) GetDistribution(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.Distribution(v, h.opts.Bins))
}

func (h *Handler) GetRemoteShare(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.RemoteShare(v))
}

// mean salary per country for the focus role; absent countries have no data
func (h *Handler) GetCountryMeans(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, engine.CountryMeans(v, h.opts.FocusRole))
}

func (h *Handler) GetRecords(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	total := v.Len()
	limit, offset := getPaginationParams(c, 100)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":   v.Records(offset, limit),
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func (h *Handler) GetRecordsArrow(c echo.Context) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, export.ArrowStreamMIME)
	c.Response().WriteHeader(http.StatusOK)
	return export.WriteArrow(c.Response(), v)
}
