package assistant

import (
	"context"
	"strings"
	"testing"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

func f64(v float64) *float64 { return &v }

func TestBuildPrompt_OrderNotFound(t *testing.T) {
	in := DetectIntent("status of 000999?", "", "")
	b := NewAssembler(&mockSource{}).Assemble(context.Background(), in)

	p := BuildPrompt("status of 000999?", b, in)

	if !strings.Contains(p, "Order 000999 was not found.") {
		t.Errorf("prompt missing not-found line:\n%s", p)
	}
	if !strings.HasSuffix(p, "QUESTION: status of 000999?\n\nAnswer:") {
		t.Errorf("prompt does not end with the question:\n%s", p)
	}
}

func TestBuildPrompt_OrderFailureIsNotReportedAsMissing(t *testing.T) {
	in := DetectIntent("status of 000999?", "", "")
	b := NewAssembler(&mockSource{ordersErr: odata.ErrAuth}).Assemble(context.Background(), in)

	p := BuildPrompt("status of 000999?", b, in)

	if strings.Contains(p, "was not found") {
		t.Errorf("fetch failure reported as not found:\n%s", p)
	}
	if !strings.Contains(p, "NOTE: order data could not be retrieved") {
		t.Errorf("prompt missing failure note:\n%s", p)
	}
}

func TestBuildPrompt_BackordersAndCredit(t *testing.T) {
	b := &Bundle{
		Backorders: []odata.SalesOrder{
			order("000201", "US-002", "Backorder"),
			order("000202", "US-001", "Backorder"),
			order("000203", "US-001", "Backorder"),
			order("000204", "US-001", "Backorder"),
			order("000205", "US-001", "Backorder"),
		},
		Customers: []odata.Customer{
			{CustomerAccount: "US-009", CreditLimit: f64(500)},
			{CustomerAccount: "US-001", CreditLimit: f64(0), SalesCurrencyCode: "USD"},
			{CustomerAccount: "US-002", CreditLimit: f64(25000), SalesCurrencyCode: "USD"},
		},
		Failures: map[Slice]string{},
		present:  map[Slice]bool{SliceBackorders: true, SliceCustomers: true},
	}

	p := BuildPrompt("which backorders are at risk?", b, Intent{FetchBackorders: true, FetchCredit: true})

	for _, want := range []string{
		"BACKORDERS:\n  Total: 5\n",
		"  US-001: 4 backorders (000202, 000203, 000204...)\n",
		"US-001 | Name:  | Group:  | Currency: USD | Payment Terms:  | Credit Limit: No limit set",
		"Credit Limit: $25,000.00",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	// 只有一个缺货订单的客户被省略
	if strings.Contains(p, "US-002: 1 backorders") {
		t.Errorf("single-backorder customer listed:\n%s", p)
	}
	// 没有缺货订单的客户不展示信用数据
	if strings.Contains(p, "US-009") {
		t.Errorf("customer without backorders listed in credit data:\n%s", p)
	}
}

func TestBuildPrompt_NoBackorders(t *testing.T) {
	b := &Bundle{present: map[Slice]bool{SliceBackorders: true}}
	p := BuildPrompt("any backorders?", b, Intent{FetchBackorders: true})
	if !strings.Contains(p, "  No backorders found.\n") {
		t.Errorf("prompt missing empty state:\n%s", p)
	}
}

func TestBuildPrompt_CustomerHistory(t *testing.T) {
	var orders []odata.SalesOrder
	for i, d := range []string{"2024-03-01T10:00:00Z", "2023-01-15T08:00:00Z", "2024-06-30T09:00:00Z"} {
		o := order("00030"+string(rune('0'+i)), "US-004", []string{"Invoiced", "Invoiced", "Backorder"}[i])
		o.OrderCreationDateTime = d
		o.CurrencyCode = "USD"
		orders = append(orders, o)
	}
	for i := 0; i < 7; i++ {
		orders = append(orders, order("00040"+string(rune('0'+i)), "US-004", "Delivered"))
	}
	b := &Bundle{CustomerID: "US-004", CustomerOrders: orders, present: map[Slice]bool{SliceCustomerOrders: true}}

	p := BuildPrompt("history for US-004", b, Intent{CustomerID: "US-004", FetchCustomer: true})

	for _, want := range []string{
		"CUSTOMER US-004 ORDER HISTORY:",
		"Total Orders    : 10",
		"Status Breakdown: 2 Invoiced, 1 Backorder, 7 Delivered",
		"Date Range      : 2023-01-15 to 2024-06-30",
		"    000300 | Invoiced | 2024-03-01\n",
		"    ... and 2 more\n",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
}

func TestCreditLimitDisplay(t *testing.T) {
	tests := []struct {
		c    odata.Customer
		want string
	}{
		{odata.Customer{}, "No limit set"},
		{odata.Customer{CreditLimit: f64(0)}, "No limit set"},
		{odata.Customer{CreditLimit: f64(1500.5), SalesCurrencyCode: "USD"}, "$1,500.50"},
		{odata.Customer{CreditLimit: f64(10), SalesCurrencyCode: "???"}, "$10.00"},
	}
	for _, tt := range tests {
		if got := CreditLimitDisplay(tt.c); got != tt.want {
			t.Errorf("CreditLimitDisplay(%+v) = %q, want %q", tt.c, got, tt.want)
		}
	}
}
