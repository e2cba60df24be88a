package router

import (
	"strings"

	"account-hub/pkg/common/config"
	"account-hub/pkg/web/handler"
	"account-hub/pkg/web/middleware"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
)

// Handlers 路由依赖的处理器
type Handlers struct {
	Health   *handler.HealthCheckHandler
	Accounts *handler.AccountHandler
}

// RegisterAPIs 注册所有API路由
func RegisterAPIs(h *server.Hertz, cfg *config.Config, hs Handlers) {
	// 注册全局中间件（按执行顺序）
	h.Use(
		middleware.RecoveryMiddleware(cfg),
		middleware.LoggerMiddleware(),
		middleware.ErrorHandlerMiddleware(),
		middleware.SecurityCheckMiddleware(cfg.Middleware.Security),
		middleware.TimeoutMiddleware(cfg.Middleware.Timeout.RequestTimeout),
		middleware.CORSMiddleware(cfg.Middleware.CORS),
		middleware.RateLimitMiddleware(
			cfg.Middleware.RateLimit.Rate,
			cfg.Middleware.RateLimit.Interval,
		),
	)

	// 基础接口组
	h.GET("/health", hs.Health.AdvancedHealthCheck)

	// 本地存储时直接托管已上传的图片
	if cfg.Media.Backend == config.MediaBackendLocal && cfg.Media.Local.Route != "" {
		registerMediaRoute(h, cfg.Media.Local.Route, cfg.Media.Local.Dir)
	}

	// 业务接口组
	apiGroup := h.Group("/api/v1")
	{
		// 用户相关接口
		userGroup := apiGroup.Group("/users")
		{
			userGroup.POST("/register", hs.Accounts.Register)
		}
	}
}

func registerMediaRoute(h *server.Hertz, route, dir string) {
	route = "/" + strings.Trim(route, "/")
	// 去掉路由前缀后再映射到磁盘目录
	depth := strings.Count(route, "/")
	h.StaticFS(route, &app.FS{
		Root:        dir,
		PathRewrite: app.NewPathSlashesStripper(depth),
	})
}
