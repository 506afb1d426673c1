package assistant

import (
	"context"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

// ODataSource 基于 OData 客户端的 OrderSource
type ODataSource struct {
	q odata.Querier
}

// Ensure ODataSource implements OrderSource
var _ OrderSource = (*ODataSource)(nil)

// NewODataSource 创建 ODataSource
func NewODataSource(q odata.Querier) *ODataSource {
	return &ODataSource{q: q}
}

// Orders 查询 SalesOrderHeadersV2
func (s *ODataSource) Orders(ctx context.Context, q odata.Query) ([]odata.SalesOrder, error) {
	q.Filter = odata.CompanyFilter(s.q.Company(), q.Filter)
	q.Select = odata.HeaderFields
	return odata.Fetch[odata.SalesOrder](ctx, s.q, odata.EntitySalesOrderHeaders, q)
}

// Customers 查询 CustomersV3
func (s *ODataSource) Customers(ctx context.Context, q odata.Query) ([]odata.Customer, error) {
	q.Filter = odata.CompanyFilter(s.q.Company(), q.Filter)
	q.Select = odata.CustomerFields
	return odata.Fetch[odata.Customer](ctx, s.q, odata.EntityCustomers, q)
}
