package sales

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
)

// narrativeTopN 叙述提示词中列出的客户和产品数量
const narrativeTopN = 5

// FormatUSD 以美元格式显示金额，例如 $1,234.50
func FormatUSD(amount float64) string {
	return money.NewFromFloat(amount, money.USD).Display()
}

// BuildNarrativePrompt 根据汇总结果构建高管摘要提示词
func BuildNarrativePrompt(s *Summary) string {
	var b strings.Builder

	b.WriteString("You are a senior sales analyst reviewing customer revenue and sales performance data " +
		"for a company using Microsoft Dynamics 365.\n\n")

	b.WriteString("OVERALL SALES PERFORMANCE:\n")
	fmt.Fprintf(&b, "  Total revenue    : %s\n", FormatUSD(s.GrandTotal))
	fmt.Fprintf(&b, "  Total customers  : %d\n", s.TotalCustomers)
	fmt.Fprintf(&b, "  Total orders     : %d\n", s.TotalOrders)
	fmt.Fprintf(&b, "  Top customer     : %s\n", s.TopCustomer)
	fmt.Fprintf(&b, "  Top product      : %s\n\n", s.TopProduct)

	b.WriteString("TOP 5 CUSTOMERS BY REVENUE:\n")
	for i, c := range s.CustomerStats[:min(narrativeTopN, len(s.CustomerStats))] {
		fmt.Fprintf(&b, "  %d. %s: %s revenue, %d orders, %d products, Tier: %s\n",
			i+1, c.CustomerAccount, FormatUSD(c.TotalRevenue), c.TotalOrders, c.UniqueProducts, c.RevenueTier)
	}

	b.WriteString("\nTOP 5 PRODUCTS BY REVENUE:\n")
	for i, p := range s.ProductStats[:min(narrativeTopN, len(s.ProductStats))] {
		fmt.Fprintf(&b, "  %d. %s: %s revenue, %d customers\n",
			i+1, p.ProductName, FormatUSD(p.TotalRevenue), p.CustomerCount)
	}

	b.WriteString(`
Write a concise executive sales performance summary (3-4 sentences) that:
1. States the overall revenue health and key concentration risks
2. Identifies the highest-value customers by name with specific revenue figures
3. Highlights the best performing products and their market reach
4. Recommends 1-2 specific actions to grow revenue or reduce concentration risk

Be direct, use the actual numbers. No disclaimers.`)

	return b.String()
}
