package sales

import (
	"context"
	"time"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

// linePageSize 单次查询 SalesOrderLines 的行数上限
const linePageSize = 10000

// 早于该年份的日期视为 D365 的空日期
const minValidYear = 1990

// Fetcher 拉取并规范化销售订单行
type Fetcher struct {
	q odata.Querier
}

// NewFetcher 创建 Fetcher
func NewFetcher(q odata.Querier) *Fetcher {
	return &Fetcher{q: q}
}

// FetchLines 拉取配置公司下全部已开票订单行
//
// token 获取失败或任意一页失败都直接返回错误。
func (f *Fetcher) FetchLines(ctx context.Context) ([]SalesLine, error) {
	raw, err := odata.Fetch[odata.SalesOrderLine](ctx, f.q, odata.EntitySalesOrderLines, odata.Query{
		Filter: odata.CompanyFilter(f.q.Company(), ""),
		Select: odata.LineFields,
		Expand: odata.LineHeaderExpand,
		Top:    linePageSize,
	})
	if err != nil {
		return nil, err
	}

	lines := make([]SalesLine, 0, len(raw))
	for _, r := range raw {
		if line, ok := NormalizeLine(r); ok {
			lines = append(lines, line)
		}
	}

	logger.Log.Infof("SalesOrderLines 规范化完成: 原始 %d 行, 保留 %d 行", len(raw), len(lines))
	return lines, nil
}

// NormalizeLine 将 OData 订单行转换为 SalesLine
//
// 行状态或订单头状态不是 Invoiced、或金额不为正的行返回 false。
func NormalizeLine(raw odata.SalesOrderLine) (SalesLine, bool) {
	var customer, headerStatus string
	if raw.SalesOrderHeader != nil {
		customer = raw.SalesOrderHeader.OrderingCustomerAccountNumber
		headerStatus = raw.SalesOrderHeader.SalesOrderStatus
	}

	if raw.SalesOrderLineStatus != odata.StatusInvoiced || headerStatus != odata.StatusInvoiced {
		return SalesLine{}, false
	}

	amount := odata.Float(raw.LineAmount)
	if amount <= 0 {
		return SalesLine{}, false
	}

	currency := raw.CurrencyCode
	if currency == "" {
		currency = "USD"
	}

	return SalesLine{
		SalesOrderNum:   raw.SalesOrderNumber,
		CustomerAccount: customer,
		ItemNumber:      raw.ItemNumber,
		ProductName:     raw.LineDescription,
		Quantity:        odata.Float(raw.OrderedSalesQuantity),
		UnitPrice:       odata.Float(raw.SalesPrice),
		LineAmount:      amount,
		Currency:        currency,
		RequestedDate:   parseDate(raw.RequestedReceiptDate),
		LineStatus:      raw.SalesOrderLineStatus,
		Category:        raw.SalesProductCategoryName,
	}, true
}

func parseDate(s string) *time.Time {
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil || t.Year() < minValidYear {
		return nil
	}
	return &t
}
