package assistant

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

func TestStatusCounts_FirstSeenOrder(t *testing.T) {
	got := StatusCounts([]odata.SalesOrder{
		order("1", "US-001", "Invoiced"),
		order("2", "US-001", "Backorder"),
		order("3", "US-002", "Invoiced"),
		order("4", "US-003", ""),
	})
	want := []StatusCount{
		{Status: "Invoiced", Count: 2},
		{Status: "Backorder", Count: 1},
		{Status: "Unknown", Count: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("StatusCounts() mismatch (-want +got):\n%s", diff)
	}
}

func TestSampleOrders(t *testing.T) {
	q := &recordingQuerier{rows: []json.RawMessage{
		json.RawMessage(`{"SalesOrderNumber":"000697","SalesOrderStatus":"Backorder","OrderingCustomerAccountNumber":"US-004"}`),
	}}
	orders, err := SampleOrders(context.Background(), q, 3)
	if err != nil {
		t.Fatalf("SampleOrders() error = %v", err)
	}
	want := odata.Query{
		Filter: "dataAreaId eq 'usmf'",
		Select: "SalesOrderNumber,SalesOrderStatus,OrderingCustomerAccountNumber",
		Top:    3,
	}
	if q.entity != odata.EntitySalesOrderHeaders {
		t.Errorf("entity = %s", q.entity)
	}
	if diff := cmp.Diff(want, q.query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
	if len(orders) != 1 || orders[0].OrderingCustomerAccountNumber != "US-004" {
		t.Errorf("orders = %+v", orders)
	}
	if n := len(Backorders(orders)); n != 1 {
		t.Errorf("Backorders() = %d, want 1", n)
	}
}
