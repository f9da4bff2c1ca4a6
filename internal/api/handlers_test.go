package api

import (
	"bytes"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"salarydash/internal/engine"
	"salarydash/internal/export"
	"salarydash/internal/models"

	"github.com/apache/arrow/go/v18/arrow/ipc"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

func testStore() *engine.ColumnStore {
	return engine.FromRecords([]models.Record{
		{Year: 2023, Seniority: "Senior", ContractType: "CLT", CompanySize: "M", Role: "Data Scientist", RemoteType: "Remote", Country: "BRA", SalaryUSD: 120000},
		{Year: 2023, Seniority: "Junior", ContractType: "CLT", CompanySize: "M", Role: "Analyst", RemoteType: "Hybrid", Country: "USA", SalaryUSD: 60000},
		{Year: 2024, Seniority: "Senior", ContractType: "PJ", CompanySize: "L", Role: "Data Scientist", RemoteType: "Remote", Country: "USA", SalaryUSD: 150000},
	})
}

func newTestServer(store *engine.ColumnStore) (*echo.Echo, *Handler) {
	h := NewHandler(store, engine.DefaultOptions())
	return NewServer(h), h
}

func get(t *testing.T, e *echo.Echo, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func TestLoadingReturns503(t *testing.T) {
	e, h := newTestServer(nil)

	if rec := get(t, e, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("healthz while loading: got %d", rec.Code)
	}
	if rec := get(t, e, "/api/dashboard"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("dashboard while loading: got %d", rec.Code)
	}

	h.SetStore(testStore())

	rec := get(t, e, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz after load: got %d", rec.Code)
	}
	var health struct {
		Status string `json:"status"`
		Rows   int    `json:"rows"`
	}
	decode(t, rec, &health)
	if health.Status != "ready" || health.Rows != 3 {
		t.Errorf("unexpected health %+v", health)
	}
	if rec.Header().Get(echo.HeaderXRequestID) == "" {
		t.Error("expected a request id header")
	}
}

func TestGetFilters(t *testing.T) {
	e, _ := newTestServer(testStore())
	rec := get(t, e, "/api/filters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var opts models.FilterOptions
	decode(t, rec, &opts)
	if len(opts.Years) != 2 || opts.Years[0] != 2023 {
		t.Errorf("years: %v", opts.Years)
	}
	if len(opts.Seniorities) != 2 || opts.Seniorities[0] != "Junior" {
		t.Errorf("seniorities: %v", opts.Seniorities)
	}
}

func TestGetDashboard(t *testing.T) {
	e, _ := newTestServer(testStore())

	rec := get(t, e, "/api/dashboard?seniority=Senior&year=2023")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var data models.DashboardData
	decode(t, rec, &data)

	if data.KPI.RecordCount != 1 || data.KPI.MeanSalary != 120000 || data.KPI.MostFrequentRole != "Data Scientist" {
		t.Errorf("unexpected KPI %+v", data.KPI)
	}
	if data.KPIDisplay.MeanSalary != "$120,000" {
		t.Errorf("unexpected display %+v", data.KPIDisplay)
	}
	if len(data.CountryMeans) != 1 || data.CountryMeans[0].Country != "BRA" {
		t.Errorf("unexpected countries %+v", data.CountryMeans)
	}
	if len(data.Options.Years) != 2 {
		t.Errorf("options should list every year, got %v", data.Options.Years)
	}
	if _, ok := data.Charts["top_roles"]; !ok {
		t.Error("missing chart metadata")
	}
}

func TestDashboardEmptySelection(t *testing.T) {
	e, _ := newTestServer(testStore())

	rec := get(t, e, "/api/dashboard?company_size=")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	var data models.DashboardData
	decode(t, rec, &data)
	if data.KPI != (models.KPI{}) {
		t.Errorf("expected zero KPI, got %+v", data.KPI)
	}
	if len(data.TopRoles) != 0 {
		t.Errorf("expected empty top roles array, got %#v", data.TopRoles)
	}
	if data.Charts["distribution"].Empty == "" {
		t.Error("expected empty-state message for distribution")
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"country_means":[]`)) {
		t.Errorf("empty aggregates must encode as [], body: %s", rec.Body.String())
	}
}

func TestInvalidYear(t *testing.T) {
	e, _ := newTestServer(testStore())
	if rec := get(t, e, "/api/kpis?year=twenty"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestAggregateEndpoints(t *testing.T) {
	e, _ := newTestServer(testStore())

	var roles []models.RoleSalary
	decode(t, get(t, e, "/api/roles/top"), &roles)
	if len(roles) != 2 || roles[0].Role != "Analyst" || roles[1].Role != "Data Scientist" {
		t.Errorf("top roles: %+v", roles)
	}

	var bins []models.Bin
	decode(t, get(t, e, "/api/salaries/distribution"), &bins)
	if len(bins) != engine.DefaultBins {
		t.Errorf("expected %d bins, got %d", engine.DefaultBins, len(bins))
	}

	var shares []models.Share
	decode(t, get(t, e, "/api/remote?year=2023,2024"), &shares)
	if len(shares) != 2 || shares[0].Value != "Remote" || shares[0].Count != 2 {
		t.Errorf("remote share: %+v", shares)
	}

	var countries []models.CountryMean
	decode(t, get(t, e, "/api/countries?year=2023&year=2024"), &countries)
	if len(countries) != 2 || countries[1].Country != "USA" || countries[1].MeanSalary != 150000 {
		t.Errorf("countries: %+v", countries)
	}

	var kpis struct {
		KPI     models.KPI        `json:"kpi"`
		Display models.KPIDisplay `json:"display"`
	}
	decode(t, get(t, e, "/api/kpis?contract_type=PJ"), &kpis)
	if kpis.KPI.RecordCount != 1 || kpis.Display.MaxSalary != "$150,000" {
		t.Errorf("kpis: %+v", kpis)
	}
}

func TestGetRecords(t *testing.T) {
	e, _ := newTestServer(testStore())

	var page struct {
		Data   []models.Record `json:"data"`
		Total  int             `json:"total"`
		Limit  int             `json:"limit"`
		Offset int             `json:"offset"`
	}
	decode(t, get(t, e, "/api/records?limit=1&offset=1&seniority=Senior"), &page)
	if page.Total != 2 || page.Limit != 1 || page.Offset != 1 {
		t.Errorf("unexpected page meta %+v", page)
	}
	if len(page.Data) != 1 || page.Data[0].SalaryUSD != 150000 {
		t.Errorf("unexpected page data %+v", page.Data)
	}
}

func TestGetRecordsArrow(t *testing.T) {
	e, _ := newTestServer(testStore())

	rec := get(t, e, "/api/records.arrow?year=2024")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != export.ArrowStreamMIME {
		t.Errorf("content type %q", ct)
	}

	r, err := ipc.NewReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	defer r.Release()
	var rows int64
	for r.Next() {
		rows += r.Record().NumRows()
	}
	if rows != 1 {
		t.Errorf("expected 1 row, got %d", rows)
	}
}

func TestGetRecordsHugeLimit(t *testing.T) {
	e, _ := newTestServer(testStore())

	rec := get(t, e, fmt.Sprintf("/api/records?limit=%d&offset=1", math.MaxInt))
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Data  []models.Record `json:"data"`
		Total int             `json:"total"`
	}
	decode(t, rec, &page)
	if page.Total != 3 || len(page.Data) != 2 {
		t.Errorf("expected 2 of 3 rows, got %d of %d", len(page.Data), page.Total)
	}
}

func TestOutOfRangeYearMatchesNothing(t *testing.T) {
	e, _ := newTestServer(testStore())

	var page struct {
		Total int `json:"total"`
	}
	decode(t, get(t, e, "/api/records?year=4294969319"), &page)
	if page.Total != 0 {
		t.Errorf("expected no rows, got %d", page.Total)
	}
}

func TestSelectValueWithComma(t *testing.T) {
	store := engine.FromRecords([]models.Record{
		{Year: 2024, Seniority: "Senior", ContractType: "PJ, Part-time", CompanySize: "M", Role: "Analyst", SalaryUSD: 50000},
		{Year: 2024, Seniority: "Senior", ContractType: "PJ", CompanySize: "M", Role: "Analyst", SalaryUSD: 70000},
		{Year: 2024, Seniority: "Senior", ContractType: "CLT", CompanySize: "M", Role: "Analyst", SalaryUSD: 90000},
	})
	e, _ := newTestServer(store)

	var page struct {
		Data  []models.Record `json:"data"`
		Total int             `json:"total"`
	}
	decode(t, get(t, e, "/api/records?contract_type=PJ,%20Part-time"), &page)
	if page.Total != 1 || page.Data[0].SalaryUSD != 50000 {
		t.Errorf("known value with a comma: %+v", page)
	}

	decode(t, get(t, e, "/api/records?contract_type=PJ,CLT"), &page)
	if page.Total != 2 {
		t.Errorf("comma-separated values: expected 2 rows, got %d", page.Total)
	}
}
