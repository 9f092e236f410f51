package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	"github.com/spf13/pflag"

	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/api/handler"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/api/router"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/config"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/logger"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/outbox"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/processor"
	"github.com/Sudhanshu-khosla-26/recruito-ai--sub001/internal/storage"
)

func main() {
	var (
		configPath string
		initConfig bool
	)
	pflag.StringVarP(&configPath, "config", "c", "", "配置文件路径")
	pflag.BoolVar(&initConfig, "init-config", false, "在当前目录生成示例配置文件后退出")
	pflag.Parse()

	if initConfig {
		if err := config.CreateSampleConfig("config.yaml"); err != nil {
			logger.Fatal().Err(err).Msg("生成示例配置文件失败")
		}
		logger.Info().Str("path", "config.yaml").Msg("示例配置文件已生成")
		return
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	initLogger(cfg)
	glog.Info("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		glog.Fatalf("初始化存储失败: %v", err)
	}
	defer storageManager.Close()
	glog.Info("存储服务初始化成功")

	scoreService, err := processor.NewScoreService(ctx, cfg, storageManager)
	if err != nil {
		glog.Fatalf("初始化评分服务失败: %v", err)
	}
	jobService, err := processor.NewJobService(storageManager)
	if err != nil {
		glog.Fatalf("初始化岗位服务失败: %v", err)
	}
	glog.Info("评分与岗位服务初始化成功")

	// outbox中继把评分完成事件发布到RabbitMQ
	var messageRelay *outbox.MessageRelay
	if storageManager.MySQL != nil && storageManager.RabbitMQ != nil {
		messageRelay = outbox.NewMessageRelay(storageManager.MySQL.DB(), storageManager.RabbitMQ, &cfg.Outbox)
		messageRelay.Start()
		glog.Info("outbox消息中继已启动")
	} else {
		glog.Warn("MySQL或RabbitMQ未就绪，outbox中继未启动")
	}

	// 评分消费者，驱动 上传 -> 提取 -> 评分 流水线
	var consumerStops []chan<- struct{}
	if storageManager.RabbitMQ != nil {
		consumerStops, err = processor.StartScoringConsumers(scoreService, storageManager, cfg)
		if err != nil {
			glog.Fatalf("启动评分消费者失败: %v", err)
		}
	} else {
		glog.Warn("RabbitMQ未就绪，评分消费者未启动")
	}

	scoreHandler := handler.NewScoreHandler(cfg, storageManager, scoreService)
	jobHandler := handler.NewJobHandler(jobService)

	h := server.New(
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(func(c context.Context, ctx *app.RequestContext) {
		glog.CtxDebugf(c, "Request: %s %s", string(ctx.Method()), string(ctx.Path()))
		ctx.Next(c)
		glog.CtxDebugf(c, "Response: status %d", ctx.Response.StatusCode())
	})

	router.RegisterRoutes(h, cfg, scoreHandler, jobHandler)
	glog.Infof("HTTP服务器启动中，监听地址: %s", cfg.Server.Address)

	go func() {
		if err := h.Run(); err != nil {
			glog.Fatalf("启动HTTP服务器失败: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	glog.Info("接收到终止信号，正在优雅退出...")

	for _, stop := range consumerStops {
		close(stop)
	}
	if messageRelay != nil {
		messageRelay.Stop()
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		glog.Errorf("服务器关闭失败: %v", err)
	}
	glog.Info("优雅退出完成")
}

// initLogger 初始化zerolog并把Hertz的hlog接到同一输出
func initLogger(cfg *config.Config) {
	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})

	glog.SetLogger(hertzadapter.From(logger.Logger))
	switch cfg.Logger.Level {
	case "debug":
		glog.SetLevel(glog.LevelDebug)
	case "warn":
		glog.SetLevel(glog.LevelWarn)
	case "error":
		glog.SetLevel(glog.LevelError)
	default:
		glog.SetLevel(glog.LevelInfo)
	}
}
