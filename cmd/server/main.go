package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/lk2023060901/scholar-ai/internal/conf"
	"github.com/lk2023060901/scholar-ai/internal/knowledge/validation"
	"github.com/lk2023060901/scholar-ai/internal/pkg/injector"
	"github.com/lk2023060901/scholar-ai/internal/pkg/logger"
)

var (
	configFile = flag.String("config", "", "config file path (defaults and environment variables apply when empty)")
)

var errEnvironmentNotReady = errors.New("environment is not ready")

// checkEnvironment 在组装依赖之前检查配置与 Qdrant，报告写入 w
func checkEnvironment(ctx context.Context, config *conf.Config, log *logger.Logger, w io.Writer) error {
	report, err := validation.Check(ctx, config, log, w)
	if err != nil {
		return err
	}
	if !report.OverallStatus {
		return fmt.Errorf("%w: missing %s", errEnvironmentNotReady, strings.Join(report.Missing, ", "))
	}
	if !report.QdrantCollection {
		log.Warn("collection does not exist yet, run the process command first",
			zap.String("collection", report.Collection))
	}
	return nil
}

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logConfig := injector.LoggerConfig(config.Log)
	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// 环境未就绪时打印报告后拒绝启动
	if err := checkEnvironment(context.Background(), config, log, os.Stdout); err != nil {
		log.Error("environment validation failed", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}

	app, cleanup, err := injector.InitializeApp(config, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	httpServer := app.NewHTTPServer()

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully", zap.String("addr", config.Server.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), app.ShutdownTimeout())
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}
