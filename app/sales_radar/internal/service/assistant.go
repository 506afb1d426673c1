package service

import (
	"context"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/assistant"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/odata"
)

const connectionSampleSize = 3

// AskRequest /ask 和 /ask-text 请求体
type AskRequest struct {
	Question     string `json:"question" validate:"required"`
	SalesOrderID string `json:"sales_order_id" validate:"omitempty,max=20"`
	CustomerID   string `json:"customer_id" validate:"omitempty,max=20"`
}

// DataUsed 回答时使用了哪些数据
type DataUsed struct {
	Intent         assistant.Intent           `json:"intent"`
	OrderFound     bool                       `json:"order_found"`
	Backorders     int                        `json:"backorders"`
	CustomerOrders int                        `json:"customer_orders"`
	Failures       map[assistant.Slice]string `json:"failures,omitempty"`
}

// AskReply /ask 响应
type AskReply struct {
	Answer   string   `json:"answer"`
	Question string   `json:"question"`
	DataUsed DataUsed `json:"data_used"`
}

// ConnectionReply /test-odata 响应
type ConnectionReply struct {
	Connected bool               `json:"connected"`
	Sample    []odata.SalesOrder `json:"sample"`
	Error     string             `json:"error,omitempty"`
}

// AssistantService 销售助手服务
type AssistantService struct {
	q         odata.Querier
	assembler *assistant.Assembler
	llm       Completer
	company   string
	log       *log.Helper
}

// NewAssistantService 创建销售助手服务
func NewAssistantService(cfg *config.Config, q odata.Querier, src assistant.OrderSource, completer Completer, logger log.Logger) *AssistantService {
	return &AssistantService{
		q:         q,
		assembler: assistant.NewAssembler(src),
		llm:       completer,
		company:   cfg.OData.Company,
		log:       log.NewHelper(logger),
	}
}

// Health 健康检查
func (s *AssistantService) Health() *HealthReply {
	return &HealthReply{
		Status:  "ok",
		Model:   s.llm.Model(),
		Company: s.company,
	}
}

// TestOData 拉取 3 条订单头检查认证和连通性，失败时 connected 为 false
func (s *AssistantService) TestOData(ctx context.Context) *ConnectionReply {
	orders, err := assistant.SampleOrders(ctx, s.q, connectionSampleSize)
	if err != nil {
		s.log.WithContext(ctx).Errorf("OData 连通性检查失败: %v", err)
		return &ConnectionReply{Sample: []odata.SalesOrder{}, Error: err.Error()}
	}
	return &ConnectionReply{Connected: len(orders) > 0, Sample: orders}
}

// Ask 识别意图、拉取数据并生成回答
func (s *AssistantService) Ask(ctx context.Context, req *AskRequest) *AskReply {
	s.log.WithContext(ctx).Infof("Question: %s", req.Question)

	in := assistant.DetectIntent(req.Question, req.SalesOrderID, req.CustomerID)
	b := s.assembler.Assemble(ctx, in)
	answer := s.llm.Complete(ctx, assistant.BuildPrompt(req.Question, b, in), llm.AssistantOptions)

	reply := &AskReply{
		Answer:   answer,
		Question: req.Question,
		DataUsed: DataUsed{
			Intent:         in,
			OrderFound:     b.Order != nil,
			Backorders:     len(b.Backorders),
			CustomerOrders: len(b.CustomerOrders),
		},
	}
	if len(b.Failures) > 0 {
		reply.DataUsed.Failures = b.Failures
	}
	return reply
}
