package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"costwatch/pkg/billing"
	"costwatch/pkg/cache"
	"costwatch/pkg/config"
	"costwatch/pkg/delivery"
	"costwatch/pkg/handlers"
	"costwatch/pkg/logger"
	"costwatch/pkg/scheduler"
	"costwatch/pkg/server"
	"costwatch/pkg/slack"
	"costwatch/pkg/tasks"
)

const (
	exitOK            = 0
	exitRunFailed     = 1
	exitConfigInvalid = 2
)

func main() {
	var (
		configPath   = flag.String("config", "", "配置文件路径 (yaml|json)")
		forceRefresh = flag.Bool("force-refresh", false, "忽略缓存强制重新拉取账单数据")
		serve        = flag.Bool("serve", false, "以服务模式运行（HTTP API + 定时任务）")
		testNotify   = flag.Bool("test-notify", false, "发送一条Slack测试消息后退出")
		logLevel     = flag.String("log-level", "", "日志级别 (debug|info|warn|error)，覆盖配置文件")
	)
	flag.Parse()

	// 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(exitConfigInvalid)
	}

	if *logLevel != "" {
		cfg.App.LogLevel = *logLevel
	}

	if err := cfg.ValidateConfig(); err != nil {
		log.Printf("Invalid config: %v", err)
		os.Exit(exitConfigInvalid)
	}

	// 初始化日志
	if err := logger.InitLogger(cfg.App.IsDevelopment(), cfg.App.LogFile, cfg.App.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	code := run(cfg, *serve, *forceRefresh, *testNotify)
	logger.Sync()
	os.Exit(code)
}

// run wires the pipeline and dispatches to the selected mode.
// Split from main so deferred cleanup runs before os.Exit.
func run(cfg *config.Config, serve, forceRefresh, testNotify bool) int {
	ctx := context.Background()

	// Slack客户端：禁用时仍然构造，PostMessage会返回invalid_auth
	slackClient := slack.NewClient(cfg.GetSlackConfig())

	if testNotify {
		return runTestNotify(ctx, cfg, slackClient)
	}

	// ClickHouse连接
	chClient, err := billing.NewClient(cfg.ClickHouse)
	if err != nil {
		logger.Error("Failed to create ClickHouse client", zap.Error(err))
		return exitRunFailed
	}
	defer chClient.Close()

	if err := chClient.Ping(ctx); err != nil {
		logger.Error("ClickHouse ping failed", zap.Error(err))
		return exitRunFailed
	}

	store, err := buildCacheStore(cfg.Report)
	if err != nil {
		logger.Error("Failed to initialize cost cache", zap.Error(err))
		return exitRunFailed
	}

	source := billing.NewSource(chClient, cfg.Report)
	coordinator := delivery.NewCoordinator(slackClient)
	executor := tasks.NewReportExecutor(cfg, source, store, coordinator)

	if serve {
		return runServe(ctx, cfg, executor, slackClient)
	}

	// 单次运行模式
	summary := executor.Run(ctx, forceRefresh)
	logger.Info("Report run finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("duration", summary.Duration))
	return summary.ExitCode()
}

// runTestNotify 发送测试消息到默认频道
func runTestNotify(ctx context.Context, cfg *config.Config, client *slack.Client) int {
	sc := cfg.GetSlackConfig()
	if !sc.Enabled {
		fmt.Println("Slack delivery is disabled in the configuration")
		return exitRunFailed
	}

	postCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	ts, err := client.PostMessage(postCtx, sc.DefaultChannelID, "✅ costwatch test notification", "")
	if err != nil {
		logger.Error("Test notification failed", zap.Error(err))
		return exitRunFailed
	}

	fmt.Printf("Test notification sent to %s (ts=%s)\n", sc.DefaultChannelID, ts)
	return exitOK
}

// runServe 启动定时任务与HTTP API，阻塞直到收到退出信号
func runServe(ctx context.Context, cfg *config.Config, executor *tasks.ReportExecutor, slackClient *slack.Client) int {
	serveCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	handlerSvc := handlers.NewHandlerService(cfg, executor, slackClient)

	sched, err := scheduler.NewTaskScheduler(serveCtx, cfg, executor)
	if err != nil {
		logger.Error("Failed to create scheduler", zap.Error(err))
		return exitRunFailed
	}
	handlerSvc.SetScheduler(sched)

	httpServer := server.NewHTTPServer(cfg, handlerSvc)

	errCh := make(chan error, 2)
	go func() {
		errCh <- sched.Start()
	}()
	go func() {
		errCh <- httpServer.Start()
	}()

	// 等待退出信号
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("Server stopped unexpectedly", zap.Error(err))
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	if err := sched.Shutdown(shutdownCtx); err != nil {
		logger.Error("Scheduler shutdown failed", zap.Error(err))
	}

	logger.Info("costwatch stopped")
	return exitOK
}

// buildCacheStore selects the cache backend from the report configuration
func buildCacheStore(rc *config.ReportConfig) (*cache.Store, error) {
	var (
		backend cache.Backend
		err     error
	)

	switch rc.CacheBackend {
	case "sqlite":
		backend, err = cache.NewSQLiteBackend(filepath.Join(rc.BackupDirectory, "costwatch.db"))
	default:
		backend, err = cache.NewFileBackend(rc.BackupDirectory)
	}
	if err != nil {
		return nil, err
	}

	return cache.NewStore(backend), nil
}
