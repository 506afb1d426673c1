package assistant

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
)

// Flag 由关键词触发的数据需求
type Flag string

const (
	FlagCredit     Flag = "credit"
	FlagBackorders Flag = "backorders"
	FlagRecent     Flag = "recent"
)

// Keywords 每个 Flag 的触发短语，对小写后的问题做子串匹配
var Keywords = map[Flag][]string{
	FlagCredit: {
		"credit", "risk", "limit", "payment terms", "cod",
		"overdue", "outstanding", "financial", "at risk",
		"credit limit", "owing", "debt",
	},
	FlagBackorders: {
		"backorder", "back order", "stuck", "delayed", "outstanding orders",
	},
	FlagRecent: {
		"recent", "latest", "last", "how many", "summary", "count", "overview",
	},
}

var (
	orderIDPattern    = regexp.MustCompile(`\b0+\d{3,6}\b`)
	customerIDPattern = regexp.MustCompile(`(?i)\b(us-\d{3}|de-\d{3})\b`)
)

// Intent 回答问题需要拉取哪些数据
type Intent struct {
	SalesOrderID    string `json:"sales_order_id"`
	CustomerID      string `json:"customer_id"`
	FetchOrder      bool   `json:"fetch_order"`
	FetchCustomer   bool   `json:"fetch_customer"`
	FetchBackorders bool   `json:"fetch_backorders"`
	FetchRecent     bool   `json:"fetch_recent"`
	FetchCredit     bool   `json:"fetch_credit"`
}

// DetectIntent 从问题和可选的显式参数中识别意图
//
// 显式传入的订单号和客户号优先，只有为空时才从问题文本中提取。
// 客户号统一转为大写，与 D365 中的账号一致。
func DetectIntent(question, salesOrderID, customerID string) Intent {
	salesOrderID = strings.TrimSpace(salesOrderID)
	customerID = strings.ToUpper(strings.TrimSpace(customerID))

	if salesOrderID == "" {
		salesOrderID = orderIDPattern.FindString(question)
	}
	if customerID == "" {
		customerID = strings.ToUpper(customerIDPattern.FindString(question))
	}

	q := strings.ToLower(question)
	in := Intent{
		SalesOrderID:    salesOrderID,
		CustomerID:      customerID,
		FetchOrder:      salesOrderID != "",
		FetchCustomer:   customerID != "",
		FetchBackorders: Matches(q, FlagBackorders),
		FetchRecent:     Matches(q, FlagRecent),
		FetchCredit:     Matches(q, FlagCredit),
	}
	// 缺货问题总是需要信用数据
	if in.FetchBackorders {
		in.FetchCredit = true
	}

	logger.Log.Infof("识别意图: %+v", in)
	return in
}

// Matches 判断小写问题是否包含 flag 的任一关键词
func Matches(lowered string, flag Flag) bool {
	for _, kw := range Keywords[flag] {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}
