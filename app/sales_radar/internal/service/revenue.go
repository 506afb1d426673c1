package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/dashboard"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

const revenueProject = "D365 AI Sales & Revenue Intelligence v1.0"

// 校验阈值，对应 USMF 演示数据的 SQL 统计结果
const (
	expectedMinCustomers = 25
	expectedMinRevenue   = 99_000_000
	expectedTopProduct   = "Projector"
	topRows              = 5
)

// LineSource 已开票销售订单行来源，*sales.Fetcher 满足该接口
type LineSource interface {
	FetchLines(ctx context.Context) ([]sales.SalesLine, error)
}

// RevenueService 收入分析服务
type RevenueService struct {
	lines    LineSource
	llm      Completer
	renderer *dashboard.Renderer
	company  string
	log      *log.Helper
}

// NewRevenueService 创建收入分析服务
func NewRevenueService(cfg *config.Config, lines LineSource, completer Completer, renderer *dashboard.Renderer, logger log.Logger) *RevenueService {
	return &RevenueService{
		lines:    lines,
		llm:      completer,
		renderer: renderer,
		company:  cfg.OData.Company,
		log:      log.NewHelper(logger),
	}
}

// Health 健康检查
func (s *RevenueService) Health() *HealthReply {
	return &HealthReply{
		Status:  "ok",
		Model:   s.llm.Model(),
		Company: s.company,
		Project: revenueProject,
	}
}

// SalesDataReply /test-sales-data 响应
type SalesDataReply struct {
	Status         string                  `json:"status"`
	TotalLines     int                     `json:"total_lines"`
	TotalCustomers int                     `json:"total_customers"`
	TotalOrders    int                     `json:"total_orders"`
	GrandTotal     float64                 `json:"grand_total"`
	TopCustomer    string                  `json:"top_customer"`
	TopProduct     string                  `json:"top_product"`
	OrphanLines    int                     `json:"orphan_lines"`
	OrphanRevenue  float64                 `json:"orphan_revenue"`
	TopCustomers   []sales.CustomerSummary `json:"top_5_customers"`
	TopProducts    []sales.ProductSummary  `json:"top_5_products"`
	Validation     Validation              `json:"validation"`
}

// Validation OData 结果与已知 SQL 统计的比对
type Validation struct {
	ODataCustomers   int     `json:"odata_customers"`
	ODataGrandTotal  float64 `json:"odata_grand_total"`
	ODataTopCustomer string  `json:"odata_top_customer"`
	ODataTopProduct  string  `json:"odata_top_product"`
	MatchCustomers   bool    `json:"match_customers"`
	MatchRevenue     bool    `json:"match_revenue"`
	MatchTopProduct  bool    `json:"match_top_product"`
}

// SalesData 拉取并汇总销售数据，用于和 SQL 结果核对
func (s *RevenueService) SalesData(ctx context.Context) (*SalesDataReply, error) {
	lines, err := s.lines.FetchLines(ctx)
	if err != nil {
		return nil, err
	}
	sum := sales.Summarise(lines)

	return &SalesDataReply{
		Status:         "ok",
		TotalLines:     sum.TotalLines,
		TotalCustomers: sum.TotalCustomers,
		TotalOrders:    sum.TotalOrders,
		GrandTotal:     sum.GrandTotal,
		TopCustomer:    sum.TopCustomer,
		TopProduct:     sum.TopProduct,
		OrphanLines:    sum.OrphanLines,
		OrphanRevenue:  sum.OrphanRevenue,
		TopCustomers:   sum.CustomerStats[:min(topRows, len(sum.CustomerStats))],
		TopProducts:    sum.ProductStats[:min(topRows, len(sum.ProductStats))],
		Validation: Validation{
			ODataCustomers:   sum.TotalCustomers,
			ODataGrandTotal:  sum.GrandTotal,
			ODataTopCustomer: sum.TopCustomer,
			ODataTopProduct:  sum.TopProduct,
			MatchCustomers:   sum.TotalCustomers >= expectedMinCustomers,
			MatchRevenue:     sum.GrandTotal >= expectedMinRevenue,
			MatchTopProduct:  strings.Contains(sum.TopProduct, expectedTopProduct),
		},
	}, nil
}

// Dashboard 生成销售仪表盘 HTML，返回页面和 HTTP 状态码
//
// 拉取失败返回 500 错误页；没有数据时不调用 LLM。
func (s *RevenueService) Dashboard(ctx context.Context) ([]byte, int) {
	lines, err := s.lines.FetchLines(ctx)
	if err != nil {
		s.log.WithContext(ctx).Errorf("拉取销售订单行失败: %v", err)
		return s.renderer.RenderError(err.Error()), http.StatusInternalServerError
	}
	s.log.WithContext(ctx).Infof("拉取到 %d 条订单行", len(lines))

	sum := sales.Summarise(lines)
	if sum.Empty() {
		return s.renderer.RenderError(s.renderer.NoDataMessage()), http.StatusOK
	}

	narrative := s.llm.Complete(ctx, sales.BuildNarrativePrompt(sum), llm.NarrativeOptions)
	page, err := s.renderer.Render(sum, narrative)
	if err != nil {
		s.log.WithContext(ctx).Errorf("渲染仪表盘失败: %v", err)
		return s.renderer.RenderError(err.Error()), http.StatusInternalServerError
	}
	s.log.WithContext(ctx).Info("仪表盘生成完成")
	return page, http.StatusOK
}
