package main

import (
	"context"

	"account-hub/pkg/common/config"
	"account-hub/pkg/common/logging"
	"account-hub/pkg/core/account/model"
	dao "account-hub/pkg/core/account/repository/dao/impl"
	"account-hub/pkg/core/account/service"
	"account-hub/pkg/core/media"
	"account-hub/pkg/web/handler"
	"account-hub/pkg/web/router"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/hlog"
)

func main() {
	// 初始化配置
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("Invalid configuration: " + err.Error())
	}

	// 初始化日志
	closer := logging.Init(cfg.LoggingOptions())
	defer closer.Close()

	// 初始化数据库连接
	db, err := cfg.InitDB()
	if err != nil {
		panic("Failed to initialize database: " + err.Error())
	}
	if cfg.Database.AutoMigrate {
		if err := model.AutoMigrate(db); err != nil {
			panic("Failed to migrate database: " + err.Error())
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		panic("Failed to get database instance: " + err.Error())
	}

	// 初始化媒体存储
	uploader, err := newUploader(context.Background(), cfg)
	if err != nil {
		panic("Failed to initialize media storage: " + err.Error())
	}

	// 注入到DAO层与服务层
	accounts := dao.NewGormAccountRepository(db)
	registration := service.NewRegistrationService(accounts, uploader)

	accountHandler, err := handler.NewAccountHandler(registration, cfg)
	if err != nil {
		panic("Failed to initialize account handler: " + err.Error())
	}

	// 创建Hertz实例
	h := server.Default(
		server.WithHostPorts(cfg.Server.Address),
		server.WithMaxRequestBodySize(int(cfg.Middleware.Security.MaxBodySize)),
		server.WithHandleMethodNotAllowed(true),
	)

	// 注册路由
	router.RegisterAPIs(h, cfg, router.Handlers{
		Health:   handler.NewHealthCheckHandler(handler.PingFunc(sqlDB.PingContext), uploader),
		Accounts: accountHandler,
	})

	hlog.Infof("account service listening on %s (env=%s, media=%s)", cfg.Server.Address, cfg.Env, cfg.Media.Backend)

	// 启动服务
	h.Spin()
}

type mediaBackend interface {
	media.Uploader
	media.Pinger
}

func newUploader(ctx context.Context, cfg *config.Config) (mediaBackend, error) {
	if cfg.Media.Backend == config.MediaBackendS3 {
		s3cfg := cfg.Media.S3
		return media.NewS3Uploader(ctx, media.S3Options{
			Region:       s3cfg.Region,
			Endpoint:     s3cfg.Endpoint,
			Bucket:       s3cfg.Bucket,
			AccessKey:    s3cfg.AccessKey,
			SecretKey:    s3cfg.SecretKey,
			PublicURL:    s3cfg.PublicURL,
			UsePathStyle: s3cfg.UsePathStyle,
			Prefix:       s3cfg.Prefix,
			MaxDimension: cfg.Media.MaxDimension,
			Timeout:      cfg.Media.UploadTimeout,
		})
	}
	return media.NewLocalUploader(cfg.Media.Local.Dir, cfg.Media.Local.BaseURL, cfg.Media.MaxDimension)
}
