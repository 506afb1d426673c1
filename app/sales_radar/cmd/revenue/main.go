// revenue 销售收入分析服务：仪表盘和数据校验
package main

import (
	"context"
	"flag"
	"os"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/sales_radar/app/sales_radar/internal/server"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/config"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/llm"
	"github.com/iWorld-y/sales_radar/app/sales_radar/pkg/logger"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name 是服务的名称
	Name string = "sales_radar.revenue"
	// Version 是服务的版本号
	Version string
	// flagconf 是配置文件的路径命令行参数
	flagconf string

	id, _ = os.Hostname()
)

func init() {
	flag.StringVar(&flagconf, "conf", "app/sales_radar/configs/revenue.yaml", "config path, eg: -conf config.yaml")
}

func newApp(logger log.Logger, hs *http.Server, lc *llm.Client) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(hs),
		kratos.BeforeStart(func(ctx context.Context) error {
			// 首次请求前把模型加载到内存
			lc.Warm(ctx)
			log.NewHelper(logger).Info("REMINDER: Wake AOS, open any D365 page before calling OData endpoints")
			return nil
		}),
	)
}

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(flagconf)
	if err != nil {
		panic(err)
	}
	if err := logger.InitLogger(cfg.Log.Level, cfg.Log.File); err != nil {
		panic(err)
	}

	// kratos 日志记录器，包含时间戳、调用者信息、服务ID和请求ID
	klog := log.With(log.NewStdLogger(os.Stdout),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service.id", id,
		"service.name", Name,
		"service.version", Version,
		"request.id", server.RequestIDValuer(),
	)

	app, cleanup, err := initApp(cfg, klog)
	if err != nil {
		panic(err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		panic(err)
	}
}
