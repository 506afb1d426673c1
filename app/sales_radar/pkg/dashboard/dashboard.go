package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

//go:embed templates/*.html
var templates embed.FS

// DefaultChartJS Chart.js 默认地址，D365 中可改为 AOT 资源路径
const DefaultChartJS = "https://cdn.jsdelivr.net/npm/chart.js@4.4.0/dist/chart.umd.min.js"

const (
	topCustomers = 15
	topProducts  = 10
	labelRunes   = 20
)

// TierColours 客户等级对应的柱状图颜色
var TierColours = map[sales.Tier]string{
	sales.TierPlatinum: "#7c3aed",
	sales.TierGold:     "#d97706",
	sales.TierSilver:   "#6b7280",
	sales.TierBronze:   "#92400e",
}

var categoryPalette = []string{
	"#7c3aed", "#3b82f6", "#22c55e", "#f97316",
	"#ec4899", "#14b8a6", "#d97706", "#6b7280",
	"#dc2626", "#0ea5e9",
}

const productColour = "#3b82f6"

type tierLegend struct {
	Label  string
	Colour template.CSS
}

var legend = []tierLegend{
	{"Platinum ($10M+)", template.CSS(TierColours[sales.TierPlatinum])},
	{"Gold ($5M-$10M)", template.CSS(TierColours[sales.TierGold])},
	{"Silver ($1M-$5M)", template.CSS(TierColours[sales.TierSilver])},
	{"Bronze (under $1M)", template.CSS(TierColours[sales.TierBronze])},
}

// chartData 交给 Chart.js 的一组数据
type chartData struct {
	Labels  []string  `json:"labels"`
	Values  []float64 `json:"values"`
	Colours []string  `json:"colours"`
}

type pageData struct {
	Company       string
	ChartJS       string
	Summary       *sales.Summary
	Top           *sales.CustomerSummary
	AvgOrderValue float64
	Narrative     template.HTML
	Tiers         []tierLegend
	Customers     chartData
	Products      chartData
	Categories    chartData
	GeneratedAt   string
}

// Renderer 渲染销售仪表盘 HTML
type Renderer struct {
	company string
	chartJS string
	md      goldmark.Markdown
	page    *template.Template
	errPage *template.Template
}

// NewRenderer 创建 Renderer，chartJS 为空时使用 DefaultChartJS
func NewRenderer(company, chartJS string) *Renderer {
	if chartJS == "" {
		chartJS = DefaultChartJS
	}
	funcs := template.FuncMap{
		"millions":  func(v float64) string { return fmt.Sprintf("$%.1fM", v/1_000_000) },
		"thousands": func(v float64) string { return fmt.Sprintf("$%.1fK", v/1_000) },
		"short":     short,
		"card": func(colour string) template.CSS {
			return template.CSS("background:white;border-radius:8px;padding:12px 18px;flex:1;min-width:140px;" +
				"box-shadow:0 1px 4px rgba(0,0,0,0.08);border-left:4px solid " + colour + ";")
		},
		"label": func() template.CSS {
			return "font-size:11px;color:#6c757d;text-transform:uppercase;letter-spacing:0.5px;margin:0;"
		},
		"value": func() template.CSS { return "font-size:20px;font-weight:700;color:#1a1a2e;margin:2px 0 0 0;" },
		"sub":   func() template.CSS { return "font-size:11px;color:#6c757d;margin:2px 0 0 0;" },
		"section": func() template.CSS {
			return "background:white;border-radius:8px;padding:16px;box-shadow:0 1px 4px rgba(0,0,0,0.08);"
		},
		"title": func() template.CSS {
			return "font-size:14px;font-weight:600;color:#374151;margin:0 0 12px 0;padding-bottom:8px;border-bottom:1px solid #f0f0f0;"
		},
	}

	return &Renderer{
		company: strings.ToUpper(company),
		chartJS: chartJS,
		md:      goldmark.New(),
		page:    template.Must(template.New("dashboard.html").Funcs(funcs).ParseFS(templates, "templates/dashboard.html")),
		errPage: template.Must(template.New("error.html").ParseFS(templates, "templates/error.html")),
	}
}

// NoDataMessage 没有可展示订单行时的提示
func (r *Renderer) NoDataMessage() string {
	return fmt.Sprintf("No sales order lines found in %s.", r.company)
}

// Render 渲染仪表盘，没有数据时返回错误页
func (r *Renderer) Render(s *sales.Summary, narrative string) ([]byte, error) {
	if s.Empty() {
		return r.RenderError(r.NoDataMessage()), nil
	}

	data := pageData{
		Company:     r.company,
		ChartJS:     r.chartJS,
		Summary:     s,
		Tiers:       legend,
		Customers:   customerChart(s.CustomerStats),
		Products:    productChart(s.ProductStats),
		Categories:  categoryChart(s.CategoryStats),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}
	if len(s.CustomerStats) > 0 {
		data.Top = &s.CustomerStats[0]
	}
	if s.TotalOrders > 0 {
		data.AvgOrderValue = s.GrandTotal / float64(s.TotalOrders)
	}

	if narrative = strings.TrimSpace(narrative); narrative != "" {
		var buf bytes.Buffer
		if err := r.md.Convert([]byte(narrative), &buf); err != nil {
			return nil, fmt.Errorf("render narrative failed: %w", err)
		}
		// goldmark 默认不输出原始 HTML
		data.Narrative = template.HTML(buf.String())
	}

	var out bytes.Buffer
	if err := r.page.Execute(&out, data); err != nil {
		return nil, fmt.Errorf("render dashboard failed: %w", err)
	}
	return out.Bytes(), nil
}

// RenderError 渲染错误页，message 会被转义
func (r *Renderer) RenderError(message string) []byte {
	var out bytes.Buffer
	if err := r.errPage.Execute(&out, struct{ Message string }{message}); err != nil {
		logger.Log.Errorf("渲染错误页失败: %v", err)
		return []byte(template.HTMLEscapeString(message))
	}
	return out.Bytes()
}

func customerChart(stats []sales.CustomerSummary) chartData {
	c := newChart()
	for _, s := range stats[:min(topCustomers, len(stats))] {
		c.Labels = append(c.Labels, s.CustomerAccount)
		c.Values = append(c.Values, wholeDollars(s.TotalRevenue))
		c.Colours = append(c.Colours, TierColours[s.RevenueTier])
	}
	return c
}

func productChart(stats []sales.ProductSummary) chartData {
	c := newChart()
	for _, p := range stats[:min(topProducts, len(stats))] {
		name := p.ProductName
		if name == "" {
			name = p.ItemNumber
		}
		c.Labels = append(c.Labels, short(name))
		c.Values = append(c.Values, wholeDollars(p.TotalRevenue))
		c.Colours = append(c.Colours, productColour)
	}
	return c
}

func categoryChart(stats []sales.CategorySummary) chartData {
	c := newChart()
	for i, g := range stats {
		c.Labels = append(c.Labels, g.Category)
		c.Values = append(c.Values, wholeDollars(g.Revenue))
		c.Colours = append(c.Colours, categoryPalette[i%len(categoryPalette)])
	}
	return c
}

func newChart() chartData {
	return chartData{Labels: []string{}, Values: []float64{}, Colours: []string{}}
}

func wholeDollars(v float64) float64 {
	return math.Round(v)
}

func short(s string) string {
	r := []rune(s)
	if len(r) > labelRunes {
		return string(r[:labelRunes])
	}
	return s
}
