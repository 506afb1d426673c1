package sales

import "time"

// SalesLine 规范化后的已开票销售订单行
type SalesLine struct {
	SalesOrderNum   string     `json:"sales_order_num"`
	CustomerAccount string     `json:"customer_account"`
	ItemNumber      string     `json:"item_number"`
	ProductName     string     `json:"product_name"`
	Quantity        float64    `json:"quantity"`
	UnitPrice       float64    `json:"unit_price"`
	LineAmount      float64    `json:"line_amount"`
	Currency        string     `json:"currency"`
	RequestedDate   *time.Time `json:"requested_date"`
	LineStatus      string     `json:"line_status"`
	// Category 为空时在汇总阶段归入 Other
	Category string `json:"category"`
}

// Tier 客户收入分级
type Tier string

const (
	TierPlatinum Tier = "Platinum"
	TierGold     Tier = "Gold"
	TierSilver   Tier = "Silver"
	TierBronze   Tier = "Bronze"
)

// CustomerSummary 单个客户的收入汇总
type CustomerSummary struct {
	CustomerAccount  string  `json:"customer_account"`
	TotalRevenue     float64 `json:"total_revenue"`
	TotalOrders      int     `json:"total_orders"`
	UniqueProducts   int     `json:"unique_products"`
	UniqueCategories int     `json:"unique_categories"`
	AvgOrderValue    float64 `json:"avg_order_value"`
	// RevenuePct 占 GrandTotal 的百分比，保留 4 位小数
	RevenuePct  float64 `json:"revenue_pct"`
	RevenueTier Tier    `json:"revenue_tier"`
}

// ProductSummary 单个产品的收入汇总
type ProductSummary struct {
	ItemNumber    string  `json:"item_number"`
	ProductName   string  `json:"product_name"`
	TotalRevenue  float64 `json:"total_revenue"`
	TotalQuantity float64 `json:"total_quantity"`
	CustomerCount int     `json:"customer_count"`
}

// CategorySummary 单个产品类别的汇总
type CategorySummary struct {
	Category string  `json:"category"`
	Revenue  float64 `json:"revenue"`
	Quantity float64 `json:"quantity"`
	Orders   int     `json:"orders"`
}

// Summary 一次汇总的完整结果
//
// GrandTotal 只包含有客户账号的行，客户账号为空的行计入 OrphanLines 和 OrphanRevenue。
// TotalOrders 和 TotalLines 统计全部行。
type Summary struct {
	CustomerStats  []CustomerSummary `json:"customer_stats"`
	ProductStats   []ProductSummary  `json:"product_stats"`
	CategoryStats  []CategorySummary `json:"category_stats"`
	GrandTotal     float64           `json:"grand_total"`
	TotalCustomers int               `json:"total_customers"`
	TotalOrders    int               `json:"total_orders"`
	TotalLines     int               `json:"total_lines"`
	TopCustomer    string            `json:"top_customer"`
	TopProduct     string            `json:"top_product"`
	OrphanLines    int               `json:"orphan_lines"`
	OrphanRevenue  float64           `json:"orphan_revenue"`
}

// Empty 没有可展示的客户数据，包括所有行都缺少客户账号的情况
func (s *Summary) Empty() bool {
	return s == nil || s.TotalLines == 0 || s.TotalCustomers == 0
}
