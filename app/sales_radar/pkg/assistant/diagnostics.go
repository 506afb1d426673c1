package assistant

import (
	"context"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

// StatusCount 某个订单状态的数量
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StatusCounts 按首次出现顺序统计订单状态，空状态记为 Unknown
func StatusCounts(orders []odata.SalesOrder) []StatusCount {
	var out []StatusCount
	index := map[string]int{}
	for _, o := range orders {
		s := o.SalesOrderStatus
		if s == "" {
			s = "Unknown"
		}
		i, ok := index[s]
		if !ok {
			i = len(out)
			index[s] = i
			out = append(out, StatusCount{Status: s})
		}
		out[i].Count++
	}
	return out
}

// sampleFields 连通性检查只取这几个字段
const sampleFields = "SalesOrderNumber,SalesOrderStatus,OrderingCustomerAccountNumber"

// SampleOrders 拉取少量订单头用于检查 AAD 认证和 OData 连通性
func SampleOrders(ctx context.Context, q odata.Querier, top int) ([]odata.SalesOrder, error) {
	return odata.Fetch[odata.SalesOrder](ctx, q, odata.EntitySalesOrderHeaders, odata.Query{
		Filter: odata.CompanyFilter(q.Company(), ""),
		Select: sampleFields,
		Top:    top,
	})
}

// Backorders 只保留缺货状态的订单
func Backorders(orders []odata.SalesOrder) []odata.SalesOrder {
	return filterBackorders(orders, "")
}
