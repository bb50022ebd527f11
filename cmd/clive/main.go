// Package main clive 命令行入口：按关键词或语义片段从视频中切出剪辑
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"clive/internal/application/pipeline"
	"clive/internal/application/retrieval"
	"clive/internal/config"
	"clive/internal/infrastructure/asr"
	"clive/internal/infrastructure/cache"
	"clive/internal/infrastructure/embedding"
	"clive/internal/infrastructure/media"
	apperrors "clive/pkg/errors"
	"clive/pkg/logger"
	"clive/pkg/tracer"
)

func main() {
	flags := pflag.NewFlagSet("clive", pflag.ExitOnError)

	input := flags.StringP("input", "i", "", "path to input video file")
	output := flags.StringP("output", "o", "", "path to output directory")
	configPath := flags.String("config", "", "path to config file")
	model := flags.String("model", "", "whisper model to use (tiny, base, small, medium, large)")
	tracks := flags.IntSliceP("tracks", "t", nil, "audio tracks to process (1-based)")
	clips := flags.StringSliceP("clips", "c", nil, "keywords or moment texts to search for")
	mode := flags.String("mode", "", "search mode: keyword or semantic")
	noCleanup := flags.Bool("no-cleanup", false, "keep intermediate files in the cache")
	cleanCache := flags.Bool("clean-cache", false, "remove the entire cache directory and exit")
	useCached := flags.Bool("use-cached-transcript", false, "reuse a cached transcript when present")
	verbose := flags.BoolP("verbose", "v", false, "enable verbose logging")

	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	cfg.ApplyCLI(config.CLIOverrides{
		Input:   *input,
		Output:  *output,
		Model:   *model,
		Tracks:  *tracks,
		Moments: *clips,
		Mode:    *mode,
	})

	level := cfg.Observability.Logging.Level
	if *verbose {
		level = "debug"
	}
	logger.Init(level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	if *cleanCache {
		if err := cache.New(cfg.Cache.Root).Cleanup(); err != nil {
			fail(err)
		}
		return
	}

	// 校验先于任何副作用
	if err := cfg.Validate(); err != nil {
		fail(err)
	}

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: "clive",
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		fail(err)
	}
	defer func() { _ = shutdown(ctx) }()

	if cfg.Observability.Metrics.Enabled {
		go serveMetrics(ctx, cfg.Observability.Metrics.Port)
	}

	artifactCache := cache.New(cfg.Cache.Root)

	var embedder retrieval.Embedder
	if cfg.Search.Mode == config.ModeSemantic {
		embedder = embedding.NewClient(&cfg.Embedding)
	}

	runner := pipeline.NewRunner(
		cfg,
		artifactCache,
		asr.NewWhisper(cfg.ASR.Binary, artifactCache.ModelPath(cfg.ASR.Model), cfg.ASR.Language),
		embedder,
		media.NewFFmpeg(""),
		pipeline.Options{
			UseCachedTranscript: *useCached,
			KeepArtifacts:       *noCleanup,
		},
	)

	if err := runner.Run(ctx); err != nil {
		logger.Error(ctx, "pipeline failed", err)
		fail(err)
	}
}

// fail 打印错误并以对应退出码终止
func fail(err error) {
	appErr := apperrors.AsAppError(err)
	fmt.Fprintf(os.Stderr, "clive: %s\n", appErr.Message)
	if appErr.Detail != "" {
		fmt.Fprintf(os.Stderr, "  %s\n", appErr.Detail)
	}
	os.Exit(appErr.ExitCode)
}

// serveMetrics 暴露 Prometheus 指标端点
func serveMetrics(ctx context.Context, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	addr := fmt.Sprintf(":%d", port)
	logger.Info(ctx, "serving metrics", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Warn(ctx, "metrics server stopped", "error", err.Error())
	}
}
