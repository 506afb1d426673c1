package server

import (
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/middleware/logging"
	"github.com/go-kratos/kratos/v2/middleware/recovery"
	"github.com/go-kratos/kratos/v2/transport/http"
	"github.com/google/wire"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/service"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
)

// RevenueSet 收入分析 HTTP 服务的 Provider 集合
var RevenueSet = wire.NewSet(NewRevenueHTTPServer)

// AssistantSet 销售助手 HTTP 服务的 Provider 集合
var AssistantSet = wire.NewSet(NewAssistantHTTPServer)

const contentTypeHTML = "text/html; charset=utf-8"

// NewRevenueHTTPServer 创建收入分析 HTTP 服务
func NewRevenueHTTPServer(c *config.Config, s *service.RevenueService, logger log.Logger) *http.Server {
	srv := newHTTPServer(c, logger)
	RegisterRevenueHTTPServer(srv, s)
	return srv
}

// NewAssistantHTTPServer 创建销售助手 HTTP 服务
func NewAssistantHTTPServer(c *config.Config, s *service.AssistantService, logger log.Logger) *http.Server {
	srv := newHTTPServer(c, logger)
	RegisterAssistantHTTPServer(srv, s)
	return srv
}

func newHTTPServer(c *config.Config, logger log.Logger) *http.Server {
	var opts = []http.ServerOption{
		http.Middleware(
			recovery.Recovery(),
			logging.Server(logger),
		),
		http.Filter(requestIDFilter, corsFilter),
		http.Timeout(c.ServerTimeout()),
	}
	if c.Server.Addr != "" {
		opts = append(opts, http.Address(c.Server.Addr))
	}
	return http.NewServer(opts...)
}

// invoke 经过服务端中间件调用 fn
func invoke(ctx http.Context, operation string, in interface{}, fn middleware.Handler) (interface{}, error) {
	http.SetOperation(ctx, operation)
	return ctx.Middleware(fn)(ctx, in)
}

// htmlPage 需要自带状态码的 HTML 响应
type htmlPage struct {
	body   []byte
	status int
}

func writePage(ctx http.Context, out interface{}) error {
	p := out.(*htmlPage)
	return ctx.Blob(p.status, contentTypeHTML, p.body)
}
