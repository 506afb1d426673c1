package server

import (
	"context"
	nethttp "net/http"
	"reflect"
	"strings"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/go-playground/validator/v10"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/service"
)

const (
	OperationAssistantHealth    = "/sales_radar.Assistant/Health"
	OperationAssistantTestOData = "/sales_radar.Assistant/TestOData"
	OperationAssistantAsk       = "/sales_radar.Assistant/Ask"
	OperationAssistantAskText   = "/sales_radar.Assistant/AskText"
)

var validate = newValidator()

// newValidator 校验错误使用 json 字段名
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateRequest 校验失败返回 400，metadata 为字段到规则的映射
func validateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return errors.BadRequest("INVALID_REQUEST", err.Error())
	}

	fields := make(map[string]string, len(ves))
	msgs := make([]string, 0, len(ves))
	for _, ve := range ves {
		fields[ve.Field()] = ve.Tag()
		msgs = append(msgs, ve.Field()+" failed "+ve.Tag())
	}
	return errors.BadRequest("INVALID_REQUEST", strings.Join(msgs, "; ")).WithMetadata(fields)
}

// RegisterAssistantHTTPServer 注册销售助手服务路由
func RegisterAssistantHTTPServer(s *http.Server, svc *service.AssistantService) {
	r := s.Route("/")
	r.GET("/health", assistantHealthHandler(svc))
	r.GET("/test-odata", assistantTestODataHandler(svc))
	r.POST("/ask", assistantAskHandler(svc))
	// X++ 解析 JSON 不方便，直接返回纯文本
	r.POST("/ask-text", assistantAskTextHandler(svc))
}

func assistantHealthHandler(svc *service.AssistantService) http.HandlerFunc {
	return func(ctx http.Context) error {
		out, err := invoke(ctx, OperationAssistantHealth, nil, func(ctx context.Context, req interface{}) (interface{}, error) {
			return svc.Health(), nil
		})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func assistantTestODataHandler(svc *service.AssistantService) http.HandlerFunc {
	return func(ctx http.Context) error {
		out, err := invoke(ctx, OperationAssistantTestOData, nil, func(ctx context.Context, req interface{}) (interface{}, error) {
			return svc.TestOData(ctx), nil
		})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func ask(ctx http.Context, svc *service.AssistantService, operation string) (*service.AskReply, error) {
	var in service.AskRequest
	if err := ctx.Bind(&in); err != nil {
		return nil, err
	}
	if err := validateRequest(&in); err != nil {
		return nil, err
	}
	out, err := invoke(ctx, operation, &in, func(ctx context.Context, req interface{}) (interface{}, error) {
		return svc.Ask(ctx, req.(*service.AskRequest)), nil
	})
	if err != nil {
		return nil, err
	}
	return out.(*service.AskReply), nil
}

func assistantAskHandler(svc *service.AssistantService) http.HandlerFunc {
	return func(ctx http.Context) error {
		reply, err := ask(ctx, svc, OperationAssistantAsk)
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, reply)
	}
}

func assistantAskTextHandler(svc *service.AssistantService) http.HandlerFunc {
	return func(ctx http.Context) error {
		reply, err := ask(ctx, svc, OperationAssistantAskText)
		if err != nil {
			return err
		}
		return ctx.String(nethttp.StatusOK, reply.Answer)
	}
}
