package assistant

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Rhymond/go-money"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

const systemPrompt = `You are a helpful sales assistant for a business using Microsoft Dynamics 365.
Answer questions about sales orders clearly and professionally.

RULES:
- Base your answer ONLY on the data provided. Never invent values.
- If data is missing say so clearly.
- Be concise. A sales rep needs quick clear answers.
- Format dates in readable form e.g. December 7 2016 not 2016-12-07T08:52:45Z.
- Never show raw field names or JSON in your answer.
- Use business language.
- When analyzing risk consider: number of backorders, credit limit, payment terms, and on-hold status.
- For credit limit of 0 this means no credit limit is set not that the limit is zero.
`

// 提示词中各段展示的行数
const (
	historyRows     = 8
	recentRows      = 10
	backorderSample = 3
)

// BuildPrompt 将问题和上下文格式化为 LLM 提示词
func BuildPrompt(question string, b *Bundle, in Intent) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	sb.WriteString("\n\nDATA FROM DYNAMICS 365:\n")

	writeOrder(&sb, b, in)
	if b.Has(SliceCustomerOrders) {
		writeCustomerHistory(&sb, b.CustomerID, b.CustomerOrders)
	}
	if b.Has(SliceBackorders) {
		writeBackorders(&sb, b.Backorders)
	}
	if b.Has(SliceRecentOrders) && len(b.RecentOrders) > 0 {
		writeRecent(&sb, b.RecentOrders)
	}
	if b.Has(SliceCustomers) && len(b.Customers) > 0 {
		writeCustomers(&sb, creditCustomers(b))
	}
	for _, s := range sortedFailures(b) {
		fmt.Fprintf(&sb, "\nNOTE: %s data could not be retrieved from Dynamics 365.\n", strings.ReplaceAll(string(s), "_", " "))
	}

	fmt.Fprintf(&sb, "\n\nQUESTION: %s\n\nAnswer:", question)
	return sb.String()
}

func writeOrder(sb *strings.Builder, b *Bundle, in Intent) {
	if o := b.Order; o != nil {
		fmt.Fprintf(sb, `
ORDER DETAILS:
  Order Number  : %s
  Customer      : %s - %s
  Status        : %s
  Processing    : %s
  Created       : %s
  Requested Ship: %s
  Confirmed Ship: %s
  Currency      : %s
  Payment Terms : %s
  Payment Method: %s
  Delivery Mode : %s
  Delivery Terms: %s
  Origin        : %s
  Ship To       : %s, %s, %s
`,
			o.SalesOrderNumber, o.OrderingCustomerAccountNumber, o.SalesOrderName,
			o.SalesOrderStatus, o.SalesOrderProcessingStatus, o.OrderCreationDateTime,
			o.RequestedShippingDate, o.ConfirmedShippingDate, o.CurrencyCode,
			o.PaymentTermsName, o.CustomerPaymentMethodName, o.DeliveryModeCode,
			o.DeliveryTermsCode, o.SalesOrderOriginCode,
			o.DeliveryAddressName, o.DeliveryAddressCity, o.DeliveryAddressStateID)
		return
	}
	if in.SalesOrderID != "" && b.Has(SliceOrder) {
		fmt.Fprintf(sb, "\nOrder %s was not found.\n", in.SalesOrderID)
	}
}

func writeCustomerHistory(sb *strings.Builder, customerID string, orders []odata.SalesOrder) {
	oldest, newest := "N/A", "N/A"
	for _, o := range orders {
		d := o.OrderCreationDateTime
		if d == "" {
			continue
		}
		if oldest == "N/A" || d < oldest {
			oldest = d
		}
		if newest == "N/A" || d > newest {
			newest = d
		}
	}
	currency, terms := "N/A", "N/A"
	if len(orders) > 0 {
		currency, terms = orders[0].CurrencyCode, orders[0].PaymentTermsName
	}

	fmt.Fprintf(sb, `
CUSTOMER %s ORDER HISTORY:
  Total Orders    : %d
  Status Breakdown: %s
  Date Range      : %s to %s
  Currency        : %s
  Payment Terms   : %s
  Recent Orders:
`, customerID, len(orders), statusBreakdown(orders), dateOnly(oldest), dateOnly(newest), currency, terms)

	for _, o := range orders[:min(historyRows, len(orders))] {
		fmt.Fprintf(sb, "    %s | %s | %s\n", o.SalesOrderNumber, o.SalesOrderStatus, o.CreatedDate())
	}
	if len(orders) > historyRows {
		fmt.Fprintf(sb, "    ... and %d more\n", len(orders)-historyRows)
	}
}

type customerBackorders struct {
	customer string
	orders   []string
}

func writeBackorders(sb *strings.Builder, backorders []odata.SalesOrder) {
	fmt.Fprintf(sb, "\nBACKORDERS:\n  Total: %d\n", len(backorders))
	if len(backorders) == 0 {
		sb.WriteString("  No backorders found.\n")
		return
	}

	var groups []*customerBackorders
	index := map[string]*customerBackorders{}
	for _, o := range backorders {
		c := o.OrderingCustomerAccountNumber
		if c == "" {
			c = "Unknown"
		}
		g, ok := index[c]
		if !ok {
			g = &customerBackorders{customer: c}
			index[c] = g
			groups = append(groups, g)
		}
		g.orders = append(g.orders, o.SalesOrderNumber)
	}

	// 优先展示有多个缺货订单的客户，没有时展示全部
	var repeated []*customerBackorders
	for _, g := range groups {
		if len(g.orders) > 1 {
			repeated = append(repeated, g)
		}
	}
	if len(repeated) == 0 {
		repeated = groups
	}
	sort.SliceStable(repeated, func(i, j int) bool { return len(repeated[i].orders) > len(repeated[j].orders) })

	for _, g := range repeated {
		sample := strings.Join(g.orders[:min(backorderSample, len(g.orders))], ", ")
		if len(g.orders) > backorderSample {
			sample += "..."
		}
		fmt.Fprintf(sb, "  %s: %d backorders (%s)\n", g.customer, len(g.orders), sample)
	}
}

func writeRecent(sb *strings.Builder, orders []odata.SalesOrder) {
	fmt.Fprintf(sb, "\nRECENT ORDERS (latest %d):\n", len(orders))
	fmt.Fprintf(sb, "  Status Mix: %s\n", statusBreakdown(orders))
	for _, o := range orders[:min(recentRows, len(orders))] {
		fmt.Fprintf(sb, "  %s | %s | %s | %s\n",
			o.SalesOrderNumber, o.OrderingCustomerAccountNumber, o.SalesOrderStatus, o.CreatedDate())
	}
}

// creditCustomers 有缺货订单时只展示这些客户的信用数据，没有匹配时展示全部
func creditCustomers(b *Bundle) []odata.Customer {
	if len(b.Backorders) == 0 {
		return b.Customers
	}
	accounts := map[string]bool{}
	for _, o := range b.Backorders {
		accounts[o.OrderingCustomerAccountNumber] = true
	}
	var out []odata.Customer
	for _, c := range b.Customers {
		if accounts[c.CustomerAccount] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return b.Customers
	}
	return out
}

func writeCustomers(sb *strings.Builder, customers []odata.Customer) {
	sb.WriteString("\nCUSTOMER CREDIT AND MASTER DATA:\n")
	for _, c := range customers {
		fmt.Fprintf(sb, "  %s | Name: %s | Group: %s | Currency: %s | Payment Terms: %s | "+
			"Credit Limit: %s | On Hold: %s | Credit Status: %s\n",
			c.CustomerAccount, c.OrganizationName, c.CustomerGroupID, c.SalesCurrencyCode,
			c.PaymentTerms, CreditLimitDisplay(c), c.OnHoldStatus, c.CredManAccountStatusID)
	}
}

// CreditLimitDisplay 信用额度为 0 或缺失表示未设置额度
func CreditLimitDisplay(c odata.Customer) string {
	limit := odata.Float(c.CreditLimit)
	if limit == 0 {
		return "No limit set"
	}
	code := c.SalesCurrencyCode
	if money.GetCurrency(code) == nil {
		code = money.USD
	}
	return money.NewFromFloat(limit, code).Display()
}

// statusBreakdown 订单状态分布，例如 "3 Invoiced, 1 Backorder"
func statusBreakdown(orders []odata.SalesOrder) string {
	counts := StatusCounts(orders)
	parts := make([]string, 0, len(counts))
	for _, c := range counts {
		parts = append(parts, fmt.Sprintf("%d %s", c.Count, c.Status))
	}
	return strings.Join(parts, ", ")
}

func sortedFailures(b *Bundle) []Slice {
	out := make([]Slice, 0, len(b.Failures))
	for s := range b.Failures {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func dateOnly(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
