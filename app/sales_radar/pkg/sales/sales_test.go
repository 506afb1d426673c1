package sales

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

func f64(v float64) *float64 { return &v }

func rawLine(order, customer, item string, amount float64) odata.SalesOrderLine {
	return odata.SalesOrderLine{
		SalesOrderNumber:     order,
		SalesOrderLineStatus: "Invoiced",
		ItemNumber:           item,
		LineDescription:      "Product " + item,
		OrderedSalesQuantity: f64(1),
		SalesPrice:           f64(amount),
		LineAmount:           f64(amount),
		CurrencyCode:         "USD",
		RequestedReceiptDate: "2024-05-06T12:00:00Z",
		SalesOrderHeader: &odata.LineHeader{
			OrderingCustomerAccountNumber: customer,
			SalesOrderStatus:              "Invoiced",
		},
	}
}

func TestNormalizeLine_Drops(t *testing.T) {
	notInvoicedLine := rawLine("000001", "US-001", "A", 100)
	notInvoicedLine.SalesOrderLineStatus = "Delivered"

	headerBackorder := rawLine("000002", "US-001", "A", 100)
	headerBackorder.SalesOrderHeader.SalesOrderStatus = "Backorder"

	noHeader := rawLine("000003", "US-001", "A", 100)
	noHeader.SalesOrderHeader = nil

	nullAmount := rawLine("000004", "US-001", "A", 0)
	nullAmount.LineAmount = nil

	tests := map[string]odata.SalesOrderLine{
		"zero amount":         rawLine("000005", "US-001", "A", 0),
		"negative amount":     rawLine("000006", "US-001", "A", -5),
		"null amount":         nullAmount,
		"line not invoiced":   notInvoicedLine,
		"header not invoiced": headerBackorder,
		"header missing":      noHeader,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, ok := NormalizeLine(raw); ok {
				t.Errorf("NormalizeLine() kept %+v", raw)
			}
		})
	}
}

func TestNormalizeLine_Fields(t *testing.T) {
	raw := rawLine("000007", "US-003", "T0001", 250.5)
	raw.CurrencyCode = ""
	raw.OrderedSalesQuantity = nil

	line, ok := NormalizeLine(raw)
	if !ok {
		t.Fatal("NormalizeLine() dropped a valid line")
	}
	if line.Currency != "USD" {
		t.Errorf("Currency = %q, want USD default", line.Currency)
	}
	if line.Quantity != 0 {
		t.Errorf("Quantity = %v, want 0 for null", line.Quantity)
	}
	if line.CustomerAccount != "US-003" || line.LineAmount != 250.5 {
		t.Errorf("line = %+v", line)
	}
	if line.RequestedDate == nil || line.RequestedDate.Format("2006-01-02") != "2024-05-06" {
		t.Errorf("RequestedDate = %v", line.RequestedDate)
	}
}

func TestNormalizeLine_DiscardsBadDates(t *testing.T) {
	for _, in := range []string{"1900-01-01T12:00:00Z", "", "not-a-date", "1989-12-31"} {
		raw := rawLine("000008", "US-001", "A", 10)
		raw.RequestedReceiptDate = in
		line, ok := NormalizeLine(raw)
		if !ok {
			t.Fatalf("NormalizeLine(%q) dropped the line", in)
		}
		if line.RequestedDate != nil {
			t.Errorf("RequestedDate for %q = %v, want nil", in, line.RequestedDate)
		}
	}
}

func TestRevenueTier_Boundaries(t *testing.T) {
	tests := []struct {
		revenue string
		want    Tier
	}{
		{"10000000", TierPlatinum},
		{"9999999.99", TierGold},
		{"5000000", TierGold},
		{"4999999.99", TierSilver},
		{"1000000", TierSilver},
		{"999999.99", TierBronze},
		{"0", TierBronze},
	}
	for _, tt := range tests {
		if got := RevenueTier(decimal.RequireFromString(tt.revenue)); got != tt.want {
			t.Errorf("RevenueTier(%s) = %s, want %s", tt.revenue, got, tt.want)
		}
	}
}

type fakeQuerier struct {
	rows []json.RawMessage
	err  error
	got  odata.Query
}

func (f *fakeQuerier) Query(ctx context.Context, entity string, q odata.Query) ([]json.RawMessage, error) {
	f.got = q
	return f.rows, f.err
}

func (f *fakeQuerier) Company() string { return "usmf" }

func mustRows(t *testing.T, lines ...odata.SalesOrderLine) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(lines))
	for _, l := range lines {
		b, err := json.Marshal(l)
		if err != nil {
			t.Fatalf("Marshal() error = %v", err)
		}
		out = append(out, b)
	}
	return out
}

func TestFetchAndSummarise_EndToEnd(t *testing.T) {
	q := &fakeQuerier{rows: mustRows(t,
		rawLine("000001", "US-001", "P-100", 100),
		rawLine("000002", "US-001", "P-200", 200),
		rawLine("000003", "US-001", "P-300", 300),
		rawLine("000004", "US-002", "P-900", 50_000_000),
	)}

	lines, err := NewFetcher(q).FetchLines(context.Background())
	if err != nil {
		t.Fatalf("FetchLines() error = %v", err)
	}
	if q.got.Filter != "dataAreaId eq 'usmf'" || q.got.Top != 10000 || q.got.Expand == "" {
		t.Errorf("query = %+v", q.got)
	}

	s := Summarise(lines)

	want := []CustomerSummary{
		{
			CustomerAccount: "US-002", TotalRevenue: 50_000_000, TotalOrders: 1,
			UniqueProducts: 1, UniqueCategories: 1, AvgOrderValue: 50_000_000,
			RevenuePct: 99.9988, RevenueTier: TierPlatinum,
		},
		{
			CustomerAccount: "US-001", TotalRevenue: 600, TotalOrders: 3,
			UniqueProducts: 3, UniqueCategories: 1, AvgOrderValue: 200,
			RevenuePct: 0.0012, RevenueTier: TierBronze,
		},
	}
	if diff := cmp.Diff(want, s.CustomerStats); diff != "" {
		t.Errorf("CustomerStats mismatch (-want +got):\n%s", diff)
	}
	if s.GrandTotal != 50_000_600 {
		t.Errorf("GrandTotal = %v, want 50000600.00", s.GrandTotal)
	}
	if s.TopCustomer != "US-002" || s.TopProduct != "Product P-900" {
		t.Errorf("TopCustomer/TopProduct = %s/%s", s.TopCustomer, s.TopProduct)
	}
	if s.TotalOrders != 4 || s.TotalLines != 4 || s.TotalCustomers != 2 {
		t.Errorf("totals = %d orders, %d lines, %d customers", s.TotalOrders, s.TotalLines, s.TotalCustomers)
	}
	if len(s.CategoryStats) != 1 || s.CategoryStats[0].Category != "Other" || s.CategoryStats[0].Orders != 4 {
		t.Errorf("CategoryStats = %+v", s.CategoryStats)
	}
}

func TestFetchLines_PropagatesError(t *testing.T) {
	q := &fakeQuerier{err: odata.ErrAuth}
	lines, err := NewFetcher(q).FetchLines(context.Background())
	if !errors.Is(err, odata.ErrAuth) || lines != nil {
		t.Errorf("FetchLines() = %v, %v; want nil, ErrAuth", lines, err)
	}
}

func TestSummarise_StableOrderForTies(t *testing.T) {
	lines := []SalesLine{
		{SalesOrderNum: "1", CustomerAccount: "C", ItemNumber: "X", LineAmount: 50, Category: "Audio"},
		{SalesOrderNum: "2", CustomerAccount: "A", ItemNumber: "Y", LineAmount: 50, Category: "Video"},
		{SalesOrderNum: "3", CustomerAccount: "D", ItemNumber: "Z", LineAmount: 75, Category: "Audio"},
		{SalesOrderNum: "4", CustomerAccount: "B", ItemNumber: "W", LineAmount: 50, Category: "Cables"},
	}

	s := Summarise(lines)

	var customers, products, categories []string
	for _, c := range s.CustomerStats {
		customers = append(customers, c.CustomerAccount)
	}
	for _, p := range s.ProductStats {
		products = append(products, p.ItemNumber)
	}
	for _, c := range s.CategoryStats {
		categories = append(categories, c.Category)
	}

	if diff := cmp.Diff([]string{"D", "C", "A", "B"}, customers); diff != "" {
		t.Errorf("customer order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Z", "X", "Y", "W"}, products); diff != "" {
		t.Errorf("product order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Audio", "Video", "Cables"}, categories); diff != "" {
		t.Errorf("category order (-want +got):\n%s", diff)
	}
}

func TestSummarise_OrphanLinesExcludedFromGrandTotal(t *testing.T) {
	lines := []SalesLine{
		{SalesOrderNum: "1", CustomerAccount: "US-001", ItemNumber: "A", LineAmount: 100.10, Quantity: 1},
		{SalesOrderNum: "2", CustomerAccount: "", ItemNumber: "A", LineAmount: 900, Quantity: 3},
		{SalesOrderNum: "3", CustomerAccount: "US-002", ItemNumber: "B", LineAmount: 0.20, Quantity: 2},
	}

	s := Summarise(lines)

	if s.GrandTotal != 100.30 {
		t.Errorf("GrandTotal = %v, want 100.30 (orphans excluded)", s.GrandTotal)
	}
	if s.OrphanLines != 1 || s.OrphanRevenue != 900 {
		t.Errorf("orphans = %d lines / %v revenue", s.OrphanLines, s.OrphanRevenue)
	}
	if s.TotalLines != 3 || s.TotalOrders != 3 {
		t.Errorf("TotalLines/TotalOrders = %d/%d, want 3/3", s.TotalLines, s.TotalOrders)
	}

	sum := decimal.Zero
	for _, c := range s.CustomerStats {
		sum = sum.Add(decimal.NewFromFloat(c.TotalRevenue))
	}
	if !sum.Equal(decimal.NewFromFloat(s.GrandTotal)) {
		t.Errorf("sum of customer revenue %s != GrandTotal %v", sum, s.GrandTotal)
	}

	for _, p := range s.ProductStats {
		if p.ItemNumber == "A" && (p.TotalQuantity != 1 || p.CustomerCount != 1) {
			t.Errorf("orphan line leaked into product A: %+v", p)
		}
	}
}

func TestSummarise_ConservationWithoutOrphans(t *testing.T) {
	var lines []SalesLine
	for i := 0; i < 300; i++ {
		lines = append(lines, SalesLine{
			SalesOrderNum:   string(rune('a' + i%26)),
			CustomerAccount: []string{"US-001", "US-002", "DE-001"}[i%3],
			ItemNumber:      "I",
			LineAmount:      0.1,
		})
	}

	s := Summarise(lines)

	if s.GrandTotal != 30 {
		t.Errorf("GrandTotal = %v, want 30 exactly", s.GrandTotal)
	}
	sum := decimal.Zero
	for _, c := range s.CustomerStats {
		sum = sum.Add(decimal.NewFromFloat(c.TotalRevenue))
	}
	if !sum.Equal(decimal.NewFromInt(30)) {
		t.Errorf("sum of customer revenue = %s, want 30", sum)
	}
}

func TestSummarise_Empty(t *testing.T) {
	s := Summarise(nil)
	if !s.Empty() {
		t.Error("Empty() = false for no lines")
	}
	if s.TopCustomer != "N/A" || s.TopProduct != "N/A" || s.GrandTotal != 0 {
		t.Errorf("summary = %+v", s)
	}
}

func TestSummarise_OnlyOrphansIsEmpty(t *testing.T) {
	s := Summarise([]SalesLine{
		{SalesOrderNum: "1", CustomerAccount: "", ItemNumber: "A", LineAmount: 50, Quantity: 1},
	})
	if s.TotalLines != 1 || s.TotalCustomers != 0 {
		t.Fatalf("TotalLines/TotalCustomers = %d/%d, want 1/0", s.TotalLines, s.TotalCustomers)
	}
	if !s.Empty() {
		t.Error("Empty() = false for a summary without customers")
	}
}

func TestBuildNarrativePrompt(t *testing.T) {
	s := Summarise([]SalesLine{
		{SalesOrderNum: "1", CustomerAccount: "US-002", ItemNumber: "P", ProductName: "Projector", LineAmount: 50_000_000},
		{SalesOrderNum: "2", CustomerAccount: "US-001", ItemNumber: "S", ProductName: "Speaker", LineAmount: 600},
	})

	prompt := BuildNarrativePrompt(s)

	for _, want := range []string{
		"Total revenue    : $50,000,600.00",
		"1. US-002: $50,000,000.00 revenue, 1 orders, 1 products, Tier: Platinum",
		"2. Speaker: $600.00 revenue, 1 customers",
		"No disclaimers.",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
