// Package main 是应用程序的入口点。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"dome-admin-go/internal/config"
	"dome-admin-go/internal/handler"
	"dome-admin-go/internal/middleware"
	"dome-admin-go/internal/model"
	"dome-admin-go/internal/pipeline"
	"dome-admin-go/internal/repository"
	"dome-admin-go/internal/response"
	"dome-admin-go/internal/schedule"
	"dome-admin-go/internal/service"
	"dome-admin-go/pkg/database"
	"dome-admin-go/pkg/es"
	"dome-admin-go/pkg/kafka"
	"dome-admin-go/pkg/log"
	"dome-admin-go/pkg/storage"
	"dome-admin-go/pkg/sysinfo"
	"dome-admin-go/pkg/token"
	"dome-admin-go/pkg/upload"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	// staleTempAge 之前创建的临时文件视为中断上传的残留。
	staleTempAge = 24 * time.Hour

	eventAttempts     = 3
	eventRetryBackoff = 200 * time.Millisecond
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 初始化配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志记录器
	logger, err := log.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	logger.Info("日志记录器初始化成功")

	if err := run(cfg, logger); err != nil {
		logger.Errorw("服务异常退出", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
	logger.Info("服务已优雅关闭")
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. 初始化存储后端
	backend, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if local, ok := backend.(*storage.LocalStorage); ok {
		// 定时清理中断上传残留的临时文件
		sweeper, err := schedule.StartTempSweeper(local, staleTempAge, logger)
		if err != nil {
			return err
		}
		defer func() { <-sweeper.Stop().Done() }()
	}

	// 4. 初始化可选的外部依赖，地址为空时跳过
	var fileIndex repository.FileIndexRepository
	if len(cfg.Elasticsearch.AddressList()) > 0 {
		client, err := es.NewClient(cfg.Elasticsearch)
		if err != nil {
			return err
		}
		if err := es.EnsureIndex(ctx, client, cfg.Elasticsearch.IndexName, repository.FileIndexMapping, logger); err != nil {
			return err
		}
		fileIndex = repository.NewFileIndexRepository(client, cfg.Elasticsearch.IndexName)
	}

	var stats repository.UploadStatsRepository
	if cfg.Database.Redis.Addr != "" {
		rdb, err := database.NewRedis(ctx, cfg.Database.Redis, logger)
		if err != nil {
			return err
		}
		defer rdb.Close()
		stats = repository.NewUploadStatsRepository(rdb)
	}

	var listRepo repository.ListRepository
	if cfg.Database.DSN() != "" {
		db, err := database.OpenGorm(cfg.Database, logger, &model.ListItem{})
		if err != nil {
			return err
		}
		if listRepo, err = repository.NewListRepository(db); err != nil {
			return err
		}
	}

	// 5. 初始化文件处理管道 (Processor) 与事件分发
	processor := pipeline.NewProcessor(fileIndex, stats, logger)
	var publisher pipeline.Publisher
	var consumers sync.WaitGroup
	if len(cfg.Kafka.BrokerList()) > 0 {
		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer

		// 启动后台 Kafka 消费者，随 ctx 结束；后台处理允许逐步骤重试
		background := pipeline.NewProcessor(fileIndex, stats, logger, pipeline.WithRetry(eventAttempts, eventRetryBackoff))
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			kafka.StartConsumer(ctx, cfg.Kafka, background, logger)
		}()
	}
	defer func() {
		stop()
		consumers.Wait()
	}()

	// 6. 初始化 Service (依赖注入)
	policy := upload.Policy{
		MaxFields:    cfg.Upload.MaxFields,
		MaxFileBytes: cfg.Upload.MaxFileSize,
		MaxFiles:     cfg.Upload.MaxFiles,
		ReadTimeout:  cfg.Upload.ReadTimeout,
	}
	uploadService := service.NewUploadService(
		upload.NewWriter(backend),
		upload.NewNamer(nil),
		policy,
		pipeline.NewDispatcher(publisher, processor),
		logger,
	)
	resp := response.NewWriter(cfg.Response.Mode)

	// 7. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	if err := handler.RegisterValidators(); err != nil {
		return fmt.Errorf("注册校验规则失败: %w", err)
	}
	r := gin.New()
	r.Use(middleware.RequestLogger(logger), gin.Recovery(), middleware.CORS())

	serveLocalFiles(r, backend, cfg.Storage.PublicPrefix)

	// secret 为空时不启用鉴权
	authed := func(roles ...string) []gin.HandlerFunc {
		if cfg.JWT.Secret == "" {
			return nil
		}
		chain := []gin.HandlerFunc{middleware.AuthMiddleware(token.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpireHours))}
		if len(roles) > 0 {
			chain = append(chain, middleware.RequireRole(roles...))
		}
		return chain
	}
	with := func(chain []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, chain...), h)
	}

	// 8. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		uploadHandler := handler.NewUploadHandler(uploadService, policy, resp, logger)
		uploads := apiV1.Group("/upload")
		uploads.POST("/file", with(authed(), uploadHandler.UploadFile)...)
		uploads.POST("/files", with(authed(), uploadHandler.UploadFiles)...)

		fileHandler := handler.NewFileHandler(service.NewFileService(fileIndex, stats), resp, logger)
		if fileIndex != nil {
			uploads.GET("/files", fileHandler.ListFiles)
		}
		if stats != nil {
			uploads.GET("/stats", fileHandler.Stats)
		}

		monitorHandler := handler.NewMonitorHandler(service.NewMonitorService(sysinfo.NewCollector(), logger), resp, logger)
		apiV1.GET("/monitor/server", with(authed(), monitorHandler.ServerInfo)...)

		if listRepo != nil {
			listHandler := handler.NewListHandler(service.NewListService(listRepo, logger), resp, logger)
			list := apiV1.Group("/list")
			list.GET("", listHandler.List)
			list.GET("/:id", listHandler.Get)
			list.POST("", with(authed(), listHandler.Create)...)
			list.PATCH("/:id", with(authed(), listHandler.Update)...)
			list.DELETE("/:id", with(authed("ADMIN"), listHandler.Delete)...)
		}
	}

	// 9. 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		// 上传流的读取时间上限，超时的连接会被关闭，未写完的文件随之清理
		ReadTimeout: cfg.Upload.ReadTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP 服务监听失败: %w", err)
	case <-ctx.Done():
	}
	logger.Info("接收到停机信号，正在关闭服务...")

	// 设置一个5秒的超时上下文
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP 服务器关闭失败: %w", err)
	}
	return nil
}

func newBackend(ctx context.Context, cfg *config.Config, logger *zap.SugaredLogger) (storage.Backend, error) {
	switch cfg.Storage.Type {
	case "minio":
		client, err := storage.NewMinIOClient(cfg.MinIO)
		if err != nil {
			return nil, err
		}
		s := storage.NewMinIOStorage(client, cfg.MinIO.BucketName, cfg.Storage.PublicPrefix)
		if err := s.EnsureBucket(ctx, logger); err != nil {
			return nil, err
		}
		return s, nil
	default:
		s, err := storage.NewLocalStorage(cfg.Storage.LocalPath, cfg.Storage.PublicPrefix)
		if err != nil {
			return nil, err
		}
		logger.Infof("文件存储于本地目录 %s", s.Root())
		return s, nil
	}
}

// serveLocalFiles 在使用本地存储时把存储根目录挂载到 publicPrefix，其他后端不挂载。
func serveLocalFiles(r gin.IRoutes, backend storage.Backend, publicPrefix string) bool {
	local, ok := backend.(*storage.LocalStorage)
	if !ok {
		return false
	}
	r.Static(publicPrefix, local.Root())
	return true
}
