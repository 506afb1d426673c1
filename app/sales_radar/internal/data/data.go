package data

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"
	"golang.org/x/time/rate"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/assistant"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/dashboard"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

// ProviderSet 外部依赖（D365 OData、LLM、仪表盘渲染）的 Provider 集合
var ProviderSet = wire.NewSet(
	NewODataClient,
	NewLLMClient,
	NewRenderer,
	sales.NewFetcher,
	assistant.NewODataSource,
	wire.Bind(new(odata.Querier), new(*odata.Client)),
)

// NewODataClient 校验配置并创建 OData 客户端，QPS 限制对 D365 的请求频率
func NewODataClient(cfg *config.Config, logger log.Logger) (*odata.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	qps := cfg.Concurrency.QPS
	limiter := rate.NewLimiter(rate.Limit(qps), qps)

	log.NewHelper(logger).Infof("OData: %s (company=%s)", cfg.OData.BaseURL, cfg.OData.Company)
	return odata.NewClient(cfg, limiter), nil
}

// NewLLMClient 创建 LLM 客户端，限速方式为每分钟请求数
func NewLLMClient(cfg *config.Config, logger log.Logger) (*llm.Client, func(), error) {
	cm, err := llm.NewChatModel(context.Background(), cfg)
	if err != nil {
		return nil, nil, err
	}

	limit := rate.Limit(float64(cfg.Concurrency.RPM) / 60.0)
	limiter := rate.NewLimiter(limit, cfg.Concurrency.QPS)

	cleanup := func() {
		log.NewHelper(logger).Info("closing the LLM client")
	}
	return llm.NewClient(cfg, cm, limiter), cleanup, nil
}

// NewRenderer 创建仪表盘渲染器
func NewRenderer(cfg *config.Config) *dashboard.Renderer {
	return dashboard.NewRenderer(cfg.OData.Company, cfg.Dashboard.ChartJS)
}
