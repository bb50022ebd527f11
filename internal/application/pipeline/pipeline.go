// Package pipeline 串联转写、匹配、合并与剪辑输出各阶段
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"clive/internal/application/match"
	"clive/internal/application/retrieval"
	"clive/internal/application/transcript"
	"clive/internal/config"
	"clive/internal/domain/entity"
	"clive/internal/infrastructure/cache"
	apperrors "clive/pkg/errors"
	"clive/pkg/logger"
	"clive/pkg/metrics"
	"clive/pkg/tracer"
)

// MediaProcessor 媒体处理能力接口（ffmpeg 适配器实现）
type MediaProcessor interface {
	Check(ctx context.Context) error
	ExtractTrack(ctx context.Context, inputPath, outputPath string, track int) error
	Cut(ctx context.Context, inputPath, outputPath string, start, end float64) error
}

// Options 运行期开关
type Options struct {
	// UseCachedTranscript 优先复用缓存中的转写制品，缺失时回退到重新转写
	UseCachedTranscript bool
	// KeepArtifacts 运行结束后保留本次输入的中间制品
	KeepArtifacts bool
}

// Runner 单次管线运行
// 每次运行构造独立的 Runner / 索引 / 缓存实例，不共享可变全局状态
type Runner struct {
	cfg           *config.Config
	cache         *cache.Cache
	asr           transcript.Engine
	embedder      retrieval.Embedder
	media         MediaProcessor
	reconstructor *transcript.Reconstructor
	opts          Options
}

// NewRunner 创建管线运行器；keyword 模式下 embedder 可以为 nil
func NewRunner(cfg *config.Config, artifactCache *cache.Cache, asrEngine transcript.Engine,
	embedder retrieval.Embedder, media MediaProcessor, opts Options) *Runner {
	return &Runner{
		cfg:           cfg,
		cache:         artifactCache,
		asr:           asrEngine,
		embedder:      embedder,
		media:         media,
		reconstructor: transcript.NewReconstructor(cfg.ASR.SpecialTokenThreshold),
		opts:          opts,
	}
}

// Run 执行完整管线，配置须已通过 Validate
func (r *Runner) Run(ctx context.Context) error {
	input := r.cfg.InputFile
	ctx = logger.WithContext(ctx, logger.RunIDKey, uuid.NewString())
	ctx = logger.WithContext(ctx, logger.InputKey, filepath.Base(input))

	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	logger.Info(ctx, "processing input", "mode", string(r.cfg.Search.Mode))

	if err := r.cache.Init(); err != nil {
		return err
	}
	if err := r.media.Check(ctx); err != nil {
		return err
	}

	var audioPaths []string
	var units []entity.Timestamp

	reused := false
	if r.opts.UseCachedTranscript {
		cached, err := r.cache.LoadTranscription(input)
		switch {
		case err == nil:
			logger.Info(ctx, "reusing cached transcript", "units", len(cached))
			units = cached
			reused = true
		case apperrors.IsCode(err, apperrors.CodeNotFound):
			logger.Info(ctx, "no cached transcript, transcribing from scratch")
		default:
			return err
		}
	}

	if !reused {
		if err := r.stage(ctx, "extract", func(ctx context.Context) error {
			paths, err := r.extractTracks(ctx)
			audioPaths = paths
			return err
		}); err != nil {
			return err
		}

		if err := r.stage(ctx, "transcribe", func(ctx context.Context) error {
			u, err := r.transcribeTracks(ctx, audioPaths)
			units = u
			return err
		}); err != nil {
			return err
		}

		if err := r.cache.SaveTranscription(input, units); err != nil {
			return err
		}
		logger.Debug(ctx, "saved transcript artifact", "units", len(units))
	}

	var candidates []entity.Clip
	if err := r.stage(ctx, "match", func(ctx context.Context) error {
		c, err := r.findCandidates(ctx, units)
		candidates = c
		return err
	}); err != nil {
		return err
	}
	logger.Info(ctx, "found candidate windows", "count", len(candidates))

	clips := match.Merge(candidates)
	metrics.ClipsEmitted.Add(float64(len(clips)))
	logger.Info(ctx, "merged into clips", "count", len(clips))

	if err := r.cache.SaveClips(input, clips); err != nil {
		return err
	}

	if err := r.stage(ctx, "cut", func(ctx context.Context) error {
		return r.cutClips(ctx, clips)
	}); err != nil {
		return err
	}

	if !r.opts.KeepArtifacts {
		if err := r.cache.CleanupForInput(input); err != nil {
			return err
		}
	}

	logger.Info(ctx, "done", "clips", len(clips))
	return nil
}

// extractTracks 逐音轨提取 WAV 到缓存目录
func (r *Runner) extractTracks(ctx context.Context) ([]string, error) {
	input := r.cfg.InputFile
	paths := make([]string, 0, len(r.cfg.Tracks.AudioTracks))
	for _, track := range r.cfg.Tracks.AudioTracks {
		out := r.cache.AudioPath(input, track)
		logger.Debug(ctx, "extracting audio track", "track", track, "path", out)
		if err := r.media.ExtractTrack(ctx, input, out, track); err != nil {
			return nil, err
		}
		metrics.TracksExtracted.Inc()
		paths = append(paths, out)
	}
	return paths, nil
}

// transcribeTracks 并行转写各音轨，合并后按 start 重排
// 跨音轨交错顺序没有保证，合并后的重排是必须的
func (r *Runner) transcribeTracks(ctx context.Context, audioPaths []string) ([]entity.Timestamp, error) {
	results := make([][]entity.Timestamp, len(audioPaths))

	g, gctx := errgroup.WithContext(ctx)
	for i, path := range audioPaths {
		g.Go(func() error {
			tctx := logger.WithContext(gctx, logger.TrackKey, r.cfg.Tracks.AudioTracks[i])
			segments, err := r.asr.Transcribe(tctx, path)
			if err != nil {
				return err
			}
			results[i] = r.reconstructor.Reconstruct(tctx, segments)
			logger.Debug(tctx, "track transcribed", "units", len(results[i]))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var units []entity.Timestamp
	for _, part := range results {
		units = append(units, part...)
	}
	entity.SortTimestamps(units)
	return units, nil
}

// findCandidates 按配置模式产出候选剪辑区间
func (r *Runner) findCandidates(ctx context.Context, units []entity.Timestamp) ([]entity.Clip, error) {
	switch r.cfg.Search.Mode {
	case config.ModeKeyword:
		keywords := make([]match.Keyword, 0, len(r.cfg.Moments))
		for _, m := range r.cfg.Moments {
			keywords = append(keywords, match.Keyword{
				Text:          m.Text,
				PaddingBefore: m.Padding.Before,
				PaddingAfter:  m.Padding.After,
			})
		}
		return match.FindKeywords(units, keywords), nil

	case config.ModeSemantic:
		return r.findSemantic(ctx, units)

	default:
		return nil, apperrors.ErrValidation.WithDetail(
			fmt.Sprintf("invalid search mode: %s", r.cfg.Search.Mode))
	}
}

// findSemantic 建立向量索引，逐语义片段检索并做时序邻域扩展
func (r *Runner) findSemantic(ctx context.Context, units []entity.Timestamp) ([]entity.Clip, error) {
	if r.embedder == nil {
		return nil, apperrors.ErrValidation.WithDetail("semantic mode requires an embedder")
	}

	index := retrieval.NewIndex(r.cfg.Embedding.Dimension)
	if err := index.Populate(ctx, units, r.embedder); err != nil {
		return nil, err
	}
	logger.Debug(ctx, "semantic index populated", "records", index.Len())

	topK := r.cfg.Search.TopK
	if topK <= 0 {
		topK = 3
	}

	var candidates []entity.Clip
	for _, moment := range r.cfg.Moments {
		hits, err := index.Query(ctx, moment.Text, topK, r.embedder)
		if err != nil {
			return nil, err
		}
		logger.Debug(ctx, "semantic query", "moment", moment.Text, "hits", len(hits))

		before := r.cfg.Search.NeighborsBefore
		if moment.NeighborsBefore != nil {
			before = *moment.NeighborsBefore
		}
		after := r.cfg.Search.NeighborsAfter
		if moment.NeighborsAfter != nil {
			after = *moment.NeighborsAfter
		}

		for _, hit := range hits {
			neighbors, err := index.Neighbors(hit.ID, before, after)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, collapseWindow(neighbors))
		}
	}

	return candidates, nil
}

// collapseWindow 将时序邻域折叠为一个候选区间
// 区间覆盖首条记录起点到末条记录终点，标签为窗口内全部文本按行连接
func collapseWindow(neighbors []retrieval.Record) entity.Clip {
	texts := make([]string, 0, len(neighbors))
	for _, rec := range neighbors {
		texts = append(texts, rec.Text)
	}
	return entity.Clip{
		Start:   neighbors[0].Start,
		End:     neighbors[len(neighbors)-1].End,
		Keyword: strings.Join(texts, "\n"),
	}
}

// cutClips 将最终剪辑列表逐个切出到输出目录
func (r *Runner) cutClips(ctx context.Context, clips []entity.Clip) error {
	outDir := r.cfg.Output.Directory
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	input := r.cfg.InputFile
	base := filepath.Base(input)
	stemName := strings.TrimSuffix(base, filepath.Ext(base))

	for i, clip := range clips {
		out := filepath.Join(outDir, fmt.Sprintf("clip_%d_%s.mp4", i+1, stemName))
		logger.Debug(ctx, "cutting clip", "index", i+1, "start", clip.Start, "end", clip.End)
		if err := r.media.Cut(ctx, input, out, clip.Start, clip.End); err != nil {
			return err
		}
		metrics.ClipsCut.Inc()
	}
	return nil
}

// stage 包装一个管线阶段：span、阶段日志标签与耗时/失败指标
func (r *Runner) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "pipeline."+name)
	defer span.End()
	ctx = logger.WithContext(ctx, logger.StageKey, name)

	start := time.Now()
	err := fn(ctx)
	metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StageFailures.WithLabelValues(name).Inc()
		span.RecordError(err)
	}
	return err
}
