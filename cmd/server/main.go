package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finadvisor/internal/api"
	"finadvisor/internal/app"
	"finadvisor/internal/config"
	"finadvisor/internal/logging"
	"finadvisor/internal/metrics"
	"finadvisor/pkg/advisor"
)

var getppid = os.Getppid
var sleep = time.Sleep
var exit = os.Exit

func main() {
	var dataDir string
	var port int
	var host string
	var envFile string

	flag.StringVar(&dataDir, "data-dir", "", "Directory for storing the chat database and logs")
	flag.IntVar(&port, "port", config.GetRuntimePort(), "Port to run the server on")
	flag.StringVar(&host, "host", "127.0.0.1", "Host to bind the server to")
	flag.StringVar(&envFile, "env-file", "", "Env file to load instead of ./.env")
	flag.Parse()

	portSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "port" {
			portSet = true
		}
	})

	if dataDir != "" {
		config.SetRuntimeDataDir(dataDir)
	}
	if portSet {
		config.SetRuntimePort(port)
	}

	var envFiles []string
	if envFile != "" {
		envFiles = append(envFiles, envFile)
	}
	settings, err := config.Load(envFiles...)
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}
	if portSet {
		settings.Port = port
	}

	logger, writer, err := logging.NewLogger(settings.LogDir, slog.LevelInfo)
	if err != nil {
		slog.Error("failed to initialize logger", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := writer.Close(); err != nil {
			logger.Error("failed to close log writer", "err", err)
		}
	}()

	collector, err := metrics.New()
	if err != nil {
		logger.Error("failed to initialize metrics", "err", err)
		os.Exit(1)
	}

	core, err := app.New(context.Background(), settings, app.Options{Logger: logger, Observer: collector})
	if err != nil {
		logger.Error("failed to initialize advisor", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := core.Close(); err != nil {
			logger.Error("failed to close advisor", "err", err)
		}
	}()

	if os.Getenv("FIN_ADVISOR_PARENT_WATCH") == "1" {
		go watchParent(logger)
	}

	llmTimeout := settings.LLM.Timeout
	if llmTimeout <= 0 {
		llmTimeout = advisor.DefaultLLMTimeout
	}

	addr := fmt.Sprintf("%s:%d", host, settings.Port)
	handler := api.NewRouter(api.Options{
		Advisor:     core.Advisor,
		Logger:      logger,
		Metrics:     collector,
		CORSOrigins: settings.CORSOrigins,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      llmTimeout + 30*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("server starting", "addr", addr, "data_dir", settings.DataDir, "store", settings.Store)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)
	<-stop
	signal.Stop(stop)

	logger.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "err", err)
	}
}

func watchParent(logger *slog.Logger) {
	for {
		sleep(1 * time.Second)
		if getppid() == 1 {
			logger.Info("parent process exited; shutting down")
			exit(0)
		}
	}
}
