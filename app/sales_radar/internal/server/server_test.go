package server

import (
	"context"
	"encoding/json"
	"errors"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/service"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/dashboard"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

var testConfig = &config.Config{
	OData:  config.ODataConfig{Company: "usmf"},
	Server: config.ServerConfig{Timeout: "5s"},
}

type fakeLines struct {
	lines []sales.SalesLine
	err   error
}

func (f *fakeLines) FetchLines(ctx context.Context) ([]sales.SalesLine, error) {
	return f.lines, f.err
}

type fakeCompleter struct{ answer string }

func (f *fakeCompleter) Complete(ctx context.Context, prompt string, opts llm.Options) string {
	return f.answer
}

func (f *fakeCompleter) Model() string { return "qwen3:8b" }

type fakeSource struct{}

func (fakeSource) Orders(ctx context.Context, q odata.Query) ([]odata.SalesOrder, error) {
	return []odata.SalesOrder{{SalesOrderNumber: "000697", SalesOrderStatus: "Backorder", OrderingCustomerAccountNumber: "US-004"}}, nil
}

func (fakeSource) Customers(ctx context.Context, q odata.Query) ([]odata.Customer, error) {
	return nil, nil
}

type fakeQuerier struct{ err error }

func (f fakeQuerier) Query(ctx context.Context, entity string, q odata.Query) ([]json.RawMessage, error) {
	return nil, f.err
}

func (fakeQuerier) Company() string { return "usmf" }

func revenueServer(lines *fakeLines) *http.Server {
	svc := service.NewRevenueService(testConfig, lines, &fakeCompleter{answer: "Revenue is **healthy**."},
		dashboard.NewRenderer("usmf", ""), log.DefaultLogger)
	return NewRevenueHTTPServer(testConfig, svc, log.DefaultLogger)
}

func assistantServer() *http.Server {
	svc := service.NewAssistantService(testConfig, fakeQuerier{err: odata.ErrAuth}, fakeSource{},
		&fakeCompleter{answer: "Order 000697 is on backorder."}, log.DefaultLogger)
	return NewAssistantHTTPServer(testConfig, svc, log.DefaultLogger)
}

func do(srv *http.Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestRevenue_Health(t *testing.T) {
	rec := do(revenueServer(&fakeLines{}), nethttp.MethodGet, "/health", "")

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got service.HealthReply
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Company != "usmf" || got.Project == "" {
		t.Errorf("health = %+v", got)
	}
	if rec.Header().Get(RequestIDHeader) == "" {
		t.Error("request id header missing")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}

func TestRevenue_Dashboard(t *testing.T) {
	lines := &fakeLines{lines: []sales.SalesLine{
		{SalesOrderNum: "1", CustomerAccount: "US-002", ItemNumber: "P1", ProductName: "Projector", LineAmount: 1000},
	}}
	srv := revenueServer(lines)

	for _, tc := range []struct{ method, path string }{
		{nethttp.MethodGet, "/dashboard"},
		{nethttp.MethodPost, "/ask-chart"},
	} {
		rec := do(srv, tc.method, tc.path, "")
		if rec.Code != nethttp.StatusOK {
			t.Errorf("%s %s status = %d", tc.method, tc.path, rec.Code)
		}
		if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html") {
			t.Errorf("%s content type = %q", tc.path, rec.Header().Get("Content-Type"))
		}
		if !strings.Contains(rec.Body.String(), "<strong>healthy</strong>") {
			t.Errorf("%s narrative missing", tc.path)
		}
	}
}

func TestRevenue_DashboardFetchErrorIs500Page(t *testing.T) {
	rec := do(revenueServer(&fakeLines{err: errors.New("odata SalesOrderLines failed (status 503): busy")}),
		nethttp.MethodGet, "/dashboard", "")

	if rec.Code != nethttp.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "status 503") {
		t.Errorf("error page missing cause: %s", rec.Body.String())
	}
}

func TestRevenue_TestSalesDataError(t *testing.T) {
	rec := do(revenueServer(&fakeLines{err: odata.ErrAuth}), nethttp.MethodGet, "/test-sales-data", "")

	if rec.Code != nethttp.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var got struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Reason != "SALES_DATA_UNAVAILABLE" || got.Message != odata.ErrAuth.Error() {
		t.Errorf("error = %+v", got)
	}
}

func TestAssistant_Ask(t *testing.T) {
	rec := do(assistantServer(), nethttp.MethodPost, "/ask", `{"question":"Why is order 000697 delayed?"}`)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var got service.AskReply
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Answer != "Order 000697 is on backorder." || !got.DataUsed.OrderFound || got.DataUsed.Backorders != 1 {
		t.Errorf("reply = %+v", got)
	}
}

func TestAssistant_AskText(t *testing.T) {
	rec := do(assistantServer(), nethttp.MethodPost, "/ask-text", `{"question":"status of 000697","customer_id":"US-004"}`)

	if rec.Code != nethttp.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("content type = %q", rec.Header().Get("Content-Type"))
	}
	if rec.Body.String() != "Order 000697 is on backorder." {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestAssistant_AskRequiresQuestion(t *testing.T) {
	rec := do(assistantServer(), nethttp.MethodPost, "/ask", `{"sales_order_id":"000697"}`)

	if rec.Code != nethttp.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var got struct {
		Reason   string            `json:"reason"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Reason != "INVALID_REQUEST" || got.Metadata["question"] != "required" {
		t.Errorf("error = %+v", got)
	}
}

func TestAssistant_TestODataReportsDisconnected(t *testing.T) {
	rec := do(assistantServer(), nethttp.MethodGet, "/test-odata", "")

	var got service.ConnectionReply
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Connected || !strings.Contains(got.Error, "Azure AD") {
		t.Errorf("reply = %+v", got)
	}
}

func TestFilters_PreflightAndRequestID(t *testing.T) {
	srv := assistantServer()

	rec := do(srv, nethttp.MethodOptions, "/ask", "")
	if rec.Code != nethttp.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}

	req := httptest.NewRequest(nethttp.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	out := httptest.NewRecorder()
	srv.ServeHTTP(out, req)
	if got := out.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want echoed", got)
	}
}

func TestRequestID_FromContext(t *testing.T) {
	var seen string
	h := requestIDFilter(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		seen = RequestID(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(nethttp.MethodGet, "/", nil))
	if len(seen) != 36 {
		t.Errorf("generated id = %q, want uuid", seen)
	}
	if RequestIDValuer()(context.Background()) != "" {
		t.Error("valuer without request id should be empty")
	}
}
