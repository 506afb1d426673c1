package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/assistant"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
)

var (
	askOrder    string
	askCustomer string
	askPrompt   bool
)

// askCmd 在本地执行一次销售助手问答
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the sales assistant a question",
	Long: `Detect the intent of the question, fetch the matching sales orders and
customers from D365 and ask the LLM for an answer.

Examples:
  radarctl ask "Why is order 000697 delayed?"
  radarctl ask --customer US-004 "Is this customer at risk?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askOrder, "order", "", "explicit sales order number")
	askCmd.Flags().StringVar(&askCustomer, "customer", "", "explicit customer account")
	askCmd.Flags().BoolVar(&askPrompt, "prompt", false, "print the prompt instead of calling the LLM")
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	question := strings.Join(args, " ")
	client, err := newODataClient()
	if err != nil {
		return err
	}

	in := assistant.DetectIntent(question, askOrder, askCustomer)
	b := assistant.NewAssembler(assistant.NewODataSource(client)).Assemble(ctx, in)
	prompt := assistant.BuildPrompt(question, b, in)
	if askPrompt {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), prompt)
		return err
	}

	lc, cleanup, err := newLLMClient()
	if err != nil {
		return err
	}
	defer cleanup()

	answer := lc.Complete(ctx, prompt, llm.AssistantOptions)
	return printMarkdown(cmd.OutOrStdout(), askMarkdown(question, answer, b))
}

// askMarkdown 回答和数据使用情况
func askMarkdown(question, answer string, b *assistant.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n\n%s\n\n", question, answer)

	var used []string
	if b.Has(assistant.SliceOrder) {
		used = append(used, fmt.Sprintf("order found: %t", b.Order != nil))
	}
	if b.Has(assistant.SliceCustomerOrders) {
		used = append(used, fmt.Sprintf("%d customer orders", len(b.CustomerOrders)))
	}
	if b.Has(assistant.SliceBackorders) {
		used = append(used, fmt.Sprintf("%d backorders", len(b.Backorders)))
	}
	if b.Has(assistant.SliceRecentOrders) {
		used = append(used, fmt.Sprintf("%d recent orders", len(b.RecentOrders)))
	}
	if b.Has(assistant.SliceCustomers) {
		used = append(used, fmt.Sprintf("%d customers", len(b.Customers)))
	}
	failed := make([]string, 0, len(b.Failures))
	for s := range b.Failures {
		failed = append(failed, string(s))
	}
	sort.Strings(failed)
	for _, s := range failed {
		used = append(used, fmt.Sprintf("**%s unavailable**: %s", s, b.Failures[assistant.Slice(s)]))
	}
	if len(used) > 0 {
		sb.WriteString("---\n\n")
		for _, u := range used {
			fmt.Fprintf(&sb, "- %s\n", u)
		}
	}
	return sb.String()
}
