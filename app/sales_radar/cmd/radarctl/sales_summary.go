package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

var (
	summaryTop       int
	summaryJSON      bool
	summaryNarrative bool
)

// salesSummaryCmd 汇总已开票销售订单行
var salesSummaryCmd = &cobra.Command{
	Use:   "sales-summary",
	Short: "Aggregate invoiced sales lines by customer, product and category",
	Long: `Fetch every invoiced sales order line of the configured company, aggregate
revenue per customer, product and category, and print the totals.

Use --json for the full summary and --narrative to add the LLM commentary.`,
	Args: cobra.NoArgs,
	RunE: runSalesSummary,
}

func init() {
	salesSummaryCmd.Flags().IntVarP(&summaryTop, "top", "n", 10, "rows per table")
	salesSummaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the full summary as JSON")
	salesSummaryCmd.Flags().BoolVar(&summaryNarrative, "narrative", false, "ask the LLM for a narrative")
}

func runSalesSummary(cmd *cobra.Command, args []string) error {
	if summaryTop < 0 {
		return fmt.Errorf("--top must not be negative, got %d", summaryTop)
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newODataClient()
	if err != nil {
		return err
	}
	lines, err := sales.NewFetcher(client).FetchLines(ctx)
	if err != nil {
		return err
	}
	sum := sales.Summarise(lines)

	if summaryJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	}
	if sum.Empty() {
		return printMarkdown(cmd.OutOrStdout(), fmt.Sprintf("No sales order lines found in %s.", strings.ToUpper(client.Company())))
	}

	md := summaryMarkdown(sum, summaryTop)
	if summaryNarrative {
		lc, cleanup, err := newLLMClient()
		if err != nil {
			return err
		}
		defer cleanup()
		md += "\n## AI Sales Analysis\n\n" + lc.Complete(ctx, sales.BuildNarrativePrompt(sum), llm.NarrativeOptions) + "\n"
	}
	return printMarkdown(cmd.OutOrStdout(), md)
}

// summaryMarkdown 汇总结果的 markdown 表格
func summaryMarkdown(s *sales.Summary, top int) string {
	var sb strings.Builder
	sb.WriteString("# Sales Summary\n\n")
	fmt.Fprintf(&sb, "- Grand total: **%s**\n", sales.FormatUSD(s.GrandTotal))
	fmt.Fprintf(&sb, "- Customers: %d, orders: %d, lines: %d\n", s.TotalCustomers, s.TotalOrders, s.TotalLines)
	fmt.Fprintf(&sb, "- Top customer: %s, top product: %s\n", s.TopCustomer, s.TopProduct)
	if s.OrphanLines > 0 {
		fmt.Fprintf(&sb, "- Lines without customer: %d (%s, not in grand total)\n", s.OrphanLines, sales.FormatUSD(s.OrphanRevenue))
	}

	sb.WriteString("\n## Customers\n\n| Customer | Revenue | Share | Orders | Products | Tier |\n|---|---:|---:|---:|---:|---|\n")
	for _, c := range s.CustomerStats[:min(top, len(s.CustomerStats))] {
		fmt.Fprintf(&sb, "| %s | %s | %.2f%% | %d | %d | %s |\n",
			c.CustomerAccount, sales.FormatUSD(c.TotalRevenue), c.RevenuePct, c.TotalOrders, c.UniqueProducts, c.RevenueTier)
	}

	sb.WriteString("\n## Products\n\n| Item | Name | Revenue | Quantity | Customers |\n|---|---|---:|---:|---:|\n")
	for _, p := range s.ProductStats[:min(top, len(s.ProductStats))] {
		fmt.Fprintf(&sb, "| %s | %s | %s | %g | %d |\n",
			p.ItemNumber, p.ProductName, sales.FormatUSD(p.TotalRevenue), p.TotalQuantity, p.CustomerCount)
	}

	sb.WriteString("\n## Categories\n\n| Category | Revenue | Quantity | Orders |\n|---|---:|---:|---:|\n")
	for _, g := range s.CategoryStats {
		fmt.Fprintf(&sb, "| %s | %s | %g | %d |\n", g.Category, sales.FormatUSD(g.Revenue), g.Quantity, g.Orders)
	}
	return sb.String()
}
