package service

import (
	"context"

	"github.com/google/wire"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/assistant"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/sales"
)

// RevenueSet 收入分析服务的依赖
var RevenueSet = wire.NewSet(
	NewRevenueService,
	wire.Bind(new(LineSource), new(*sales.Fetcher)),
	wire.Bind(new(Completer), new(*llm.Client)),
)

// AssistantSet 销售助手服务的依赖
var AssistantSet = wire.NewSet(
	NewAssistantService,
	wire.Bind(new(assistant.OrderSource), new(*assistant.ODataSource)),
	wire.Bind(new(Completer), new(*llm.Client)),
)

// Completer LLM 补全接口，*llm.Client 满足该接口
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llm.Options) string
	Model() string
}

// HealthReply /health 响应
type HealthReply struct {
	Status  string `json:"status"`
	Model   string `json:"model"`
	Company string `json:"company"`
	Project string `json:"project,omitempty"`
}
