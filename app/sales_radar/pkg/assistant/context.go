package assistant

import (
	"context"
	"fmt"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

// Slice 上下文中的数据切片名称
type Slice string

const (
	SliceOrder          Slice = "order"
	SliceCustomerOrders Slice = "customer_orders"
	SliceBackorders     Slice = "backorders"
	SliceRecentOrders   Slice = "recent_orders"
	SliceCustomers      Slice = "customers"
)

// 各类查询的行数上限
const (
	customerHistoryTop = 50
	backorderScanTop   = 5000
	recentOrdersTop    = 20
	customerCreditTop  = 100
)

// OrderSource 订单和客户数据来源
//
// Query.Filter 只包含业务条件，公司过滤由实现追加。
type OrderSource interface {
	Orders(ctx context.Context, q odata.Query) ([]odata.SalesOrder, error)
	Customers(ctx context.Context, q odata.Query) ([]odata.Customer, error)
}

// Bundle 按意图拉取的数据
//
// 未请求的切片不存在，和请求后结果为空不同，用 Has 区分。
type Bundle struct {
	// Order 为 nil 且 Has(SliceOrder) 表示订单不存在
	Order          *odata.SalesOrder  `json:"order,omitempty"`
	CustomerID     string             `json:"customer_id,omitempty"`
	CustomerOrders []odata.SalesOrder `json:"customer_orders,omitempty"`
	Backorders     []odata.SalesOrder `json:"backorders,omitempty"`
	RecentOrders   []odata.SalesOrder `json:"recent_orders,omitempty"`
	Customers      []odata.Customer   `json:"customers,omitempty"`
	// Failures 拉取失败的切片及原因
	Failures map[Slice]string `json:"failures,omitempty"`

	present map[Slice]bool
}

// Has 切片是否被请求并成功拉取
func (b *Bundle) Has(s Slice) bool {
	return b.present[s]
}

// Failed 切片是否拉取失败
func (b *Bundle) Failed(s Slice) bool {
	_, ok := b.Failures[s]
	return ok
}

func (b *Bundle) mark(s Slice) {
	b.present[s] = true
}

func (b *Bundle) fail(s Slice, err error) {
	logger.Log.Errorf("拉取 %s 失败: %v", s, err)
	b.Failures[s] = err.Error()
}

// Assembler 按意图拉取数据并组装上下文
type Assembler struct {
	src OrderSource
}

// NewAssembler 创建 Assembler
func NewAssembler(src OrderSource) *Assembler {
	return &Assembler{src: src}
}

// Assemble 按意图依次拉取各个切片
//
// 单个切片失败只记录到 Failures，不影响其它切片。
func (a *Assembler) Assemble(ctx context.Context, in Intent) *Bundle {
	b := &Bundle{
		Failures: map[Slice]string{},
		present:  map[Slice]bool{},
	}

	if in.FetchOrder && in.SalesOrderID != "" {
		orders, err := a.src.Orders(ctx, odata.Query{
			Filter: fmt.Sprintf("SalesOrderNumber eq '%s'", odata.Quote(in.SalesOrderID)),
			Top:    1,
		})
		if err != nil {
			b.fail(SliceOrder, err)
		} else {
			b.mark(SliceOrder)
			if len(orders) > 0 {
				b.Order = &orders[0]
			}
			logger.Log.Infof("订单 %s 查询结果: found=%t", in.SalesOrderID, b.Order != nil)
		}
	}

	if in.FetchCustomer && in.CustomerID != "" {
		b.CustomerID = in.CustomerID
		orders, err := a.src.Orders(ctx, odata.Query{
			Filter:  fmt.Sprintf("OrderingCustomerAccountNumber eq '%s'", odata.Quote(in.CustomerID)),
			OrderBy: "OrderCreationDateTime desc",
			Top:     customerHistoryTop,
		})
		if err != nil {
			b.fail(SliceCustomerOrders, err)
		} else {
			b.mark(SliceCustomerOrders)
			b.CustomerOrders = orders
			logger.Log.Infof("客户 %s 订单: %d 条", in.CustomerID, len(orders))
		}
	}

	if in.FetchBackorders {
		// SalesOrderStatus 枚举无法在 URL 中过滤，拉取后在本地筛选
		orders, err := a.src.Orders(ctx, odata.Query{Top: backorderScanTop})
		if err != nil {
			b.fail(SliceBackorders, err)
		} else {
			b.mark(SliceBackorders)
			b.Backorders = filterBackorders(orders, in.CustomerID)
			logger.Log.Infof("缺货订单: %d 条 (共扫描 %d 条)", len(b.Backorders), len(orders))
		}
	}

	if in.FetchRecent && !in.FetchOrder && !in.FetchCustomer {
		orders, err := a.src.Orders(ctx, odata.Query{
			OrderBy: "OrderCreationDateTime desc",
			Top:     recentOrdersTop,
		})
		if err != nil {
			b.fail(SliceRecentOrders, err)
		} else {
			b.mark(SliceRecentOrders)
			b.RecentOrders = orders
			logger.Log.Infof("最近订单: %d 条", len(orders))
		}
	}

	if in.FetchCredit {
		q := odata.Query{Top: customerCreditTop}
		if in.CustomerID != "" {
			q.Filter = fmt.Sprintf("CustomerAccount eq '%s'", odata.Quote(in.CustomerID))
		}
		customers, err := a.src.Customers(ctx, q)
		if err != nil {
			b.fail(SliceCustomers, err)
		} else {
			b.mark(SliceCustomers)
			b.Customers = customers
			logger.Log.Infof("客户信用数据: %d 条", len(customers))
		}
	}

	return b
}

func filterBackorders(orders []odata.SalesOrder, customerID string) []odata.SalesOrder {
	out := make([]odata.SalesOrder, 0)
	for _, o := range orders {
		if o.SalesOrderStatus != odata.OrderStatusBackorder {
			continue
		}
		if customerID != "" && o.OrderingCustomerAccountNumber != customerID {
			continue
		}
		out = append(out, o)
	}
	return out
}
