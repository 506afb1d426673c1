package server

import (
	"context"
	nethttp "net/http"

	"github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/service"
)

const (
	OperationRevenueHealth        = "/sales_radar.Revenue/Health"
	OperationRevenueTestSalesData = "/sales_radar.Revenue/TestSalesData"
	OperationRevenueAskChart      = "/sales_radar.Revenue/AskChart"
	OperationRevenueDashboard     = "/sales_radar.Revenue/Dashboard"
)

// RegisterRevenueHTTPServer 注册收入分析服务路由
func RegisterRevenueHTTPServer(s *http.Server, svc *service.RevenueService) {
	r := s.Route("/")
	r.GET("/health", revenueHealthHandler(svc))
	r.GET("/test-sales-data", revenueSalesDataHandler(svc))
	r.POST("/ask-chart", revenueDashboardHandler(svc, OperationRevenueAskChart))
	// D365 的 iframe 只能发 GET
	r.GET("/dashboard", revenueDashboardHandler(svc, OperationRevenueDashboard))
}

func revenueHealthHandler(svc *service.RevenueService) http.HandlerFunc {
	return func(ctx http.Context) error {
		out, err := invoke(ctx, OperationRevenueHealth, nil, func(ctx context.Context, req interface{}) (interface{}, error) {
			return svc.Health(), nil
		})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func revenueSalesDataHandler(svc *service.RevenueService) http.HandlerFunc {
	return func(ctx http.Context) error {
		out, err := invoke(ctx, OperationRevenueTestSalesData, nil, func(ctx context.Context, req interface{}) (interface{}, error) {
			reply, err := svc.SalesData(ctx)
			if err != nil {
				return nil, errors.InternalServer("SALES_DATA_UNAVAILABLE", err.Error())
			}
			return reply, nil
		})
		if err != nil {
			return err
		}
		return ctx.Result(nethttp.StatusOK, out)
	}
}

func revenueDashboardHandler(svc *service.RevenueService, operation string) http.HandlerFunc {
	return func(ctx http.Context) error {
		out, err := invoke(ctx, operation, nil, func(ctx context.Context, req interface{}) (interface{}, error) {
			body, status := svc.Dashboard(ctx)
			return &htmlPage{body: body, status: status}, nil
		})
		if err != nil {
			return err
		}
		return writePage(ctx, out)
	}
}
