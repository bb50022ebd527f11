package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clive/internal/config"
	"clive/internal/domain/entity"
	"clive/internal/infrastructure/cache"
)

type cutCall struct {
	out        string
	start, end float64
}

// stubMedia 记录调用的媒体处理桩
type stubMedia struct {
	extracted []int
	cuts      []cutCall
}

func (m *stubMedia) Check(context.Context) error { return nil }

func (m *stubMedia) ExtractTrack(_ context.Context, _, _ string, track int) error {
	m.extracted = append(m.extracted, track)
	return nil
}

func (m *stubMedia) Cut(_ context.Context, _, out string, start, end float64) error {
	m.cuts = append(m.cuts, cutCall{out: out, start: start, end: end})
	return nil
}

// stubASR 每条音轨返回固定分段
type stubASR struct {
	segments [][]entity.Segment
	calls    int
	fail     error
}

func (a *stubASR) Transcribe(context.Context, string) ([]entity.Segment, error) {
	if a.fail != nil {
		return nil, a.fail
	}
	segs := a.segments[a.calls%len(a.segments)]
	a.calls++
	return segs, nil
}

// stubEmbedder 按文本长度构造二维向量，保证确定性
type stubEmbedder struct{}

func (stubEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	return []float64{float64(len(text)), 1}, nil
}

func (s stubEmbedder) BatchEmbed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		out[i], _ = s.Embed(ctx, text)
	}
	return out, nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	input := filepath.Join(t.TempDir(), "vod.mp4")
	require.NoError(t, os.WriteFile(input, []byte("x"), 0o644))

	return &config.Config{
		InputFile: input,
		ASR: config.ASRConfig{
			Model:                 "base",
			SpecialTokenThreshold: 50258,
		},
		Tracks: config.TracksConfig{AudioTracks: []int{1}},
		Search: config.SearchConfig{
			Mode:            config.ModeKeyword,
			TopK:            1,
			NeighborsBefore: 1,
			NeighborsAfter:  1,
		},
		Moments: []config.Moment{
			{Text: "hello", Padding: config.Padding{Before: 5, After: 5}},
		},
		Output:    config.OutputConfig{Directory: filepath.Join(t.TempDir(), "out")},
		Cache:     config.CacheConfig{Root: t.TempDir()},
		Embedding: config.EmbeddingConfig{Dimension: 2},
	}
}

func segmentsFixture() [][]entity.Segment {
	return [][]entity.Segment{{
		{Text: "hello world", Start: 0, End: 5},
		{Text: "something else", Start: 20, End: 25},
	}}
}

func TestRunKeywordMode(t *testing.T) {
	cfg := testConfig(t)
	c := cache.New(cfg.Cache.Root)
	media := &stubMedia{}
	engine := &stubASR{segments: segmentsFixture()}

	r := NewRunner(cfg, c, engine, nil, media, Options{KeepArtifacts: true})
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []int{1}, media.extracted)

	require.Len(t, media.cuts, 1)
	assert.Equal(t, 0.0, media.cuts[0].start)
	assert.Equal(t, 10.0, media.cuts[0].end)
	assert.Equal(t, "clip_1_vod.mp4", filepath.Base(media.cuts[0].out))

	clips, err := c.LoadClips(cfg.InputFile)
	require.NoError(t, err)
	require.Len(t, clips, 1)
	assert.Equal(t, "hello", clips[0].Keyword)

	units, err := c.LoadTranscription(cfg.InputFile)
	require.NoError(t, err)
	assert.Len(t, units, 2)
}

func TestRunSemanticMode(t *testing.T) {
	cfg := testConfig(t)
	cfg.Search.Mode = config.ModeSemantic
	cfg.Moments = []config.Moment{{Text: "hello"}}

	c := cache.New(cfg.Cache.Root)
	media := &stubMedia{}
	engine := &stubASR{segments: segmentsFixture()}

	r := NewRunner(cfg, c, engine, stubEmbedder{}, media, Options{KeepArtifacts: true})
	require.NoError(t, r.Run(context.Background()))

	clips, err := c.LoadClips(cfg.InputFile)
	require.NoError(t, err)
	require.Len(t, clips, 1)

	// 邻域窗口折叠：首条起点到末条终点，标签按行连接
	assert.Equal(t, 0.0, clips[0].Start)
	assert.Equal(t, 25.0, clips[0].End)
	assert.Equal(t, "hello world\nsomething else", clips[0].Keyword)
}

func TestRunCleansUpArtifactsByDefault(t *testing.T) {
	cfg := testConfig(t)
	c := cache.New(cfg.Cache.Root)

	r := NewRunner(cfg, c, &stubASR{segments: segmentsFixture()}, nil, &stubMedia{}, Options{})
	require.NoError(t, r.Run(context.Background()))

	_, err := c.LoadTranscription(cfg.InputFile)
	assert.Error(t, err)
	_, err = c.LoadClips(cfg.InputFile)
	assert.Error(t, err)
}

func TestRunReusesCachedTranscript(t *testing.T) {
	cfg := testConfig(t)
	c := cache.New(cfg.Cache.Root)
	require.NoError(t, c.Init())
	require.NoError(t, c.SaveTranscription(cfg.InputFile, []entity.Timestamp{
		{Start: 2, End: 4, Text: "hello"},
	}))

	// ASR 被调用即失败，证明走的是缓存复用路径
	engine := &stubASR{fail: errors.New("must not be called")}
	media := &stubMedia{}

	r := NewRunner(cfg, c, engine, nil, media, Options{UseCachedTranscript: true, KeepArtifacts: true})
	require.NoError(t, r.Run(context.Background()))

	assert.Empty(t, media.extracted)
	require.Len(t, media.cuts, 1)
	assert.Equal(t, 0.0, media.cuts[0].start)
	assert.Equal(t, 9.0, media.cuts[0].end)
}

func TestRunFallsBackWhenCachedTranscriptMissing(t *testing.T) {
	cfg := testConfig(t)
	c := cache.New(cfg.Cache.Root)
	media := &stubMedia{}

	r := NewRunner(cfg, c, &stubASR{segments: segmentsFixture()}, nil, media,
		Options{UseCachedTranscript: true, KeepArtifacts: true})
	require.NoError(t, r.Run(context.Background()))

	assert.Equal(t, []int{1}, media.extracted)
	assert.Len(t, media.cuts, 1)
}

func TestRunAbortsWhenASRFails(t *testing.T) {
	cfg := testConfig(t)
	c := cache.New(cfg.Cache.Root)
	media := &stubMedia{}

	r := NewRunner(cfg, c, &stubASR{fail: errors.New("boom")}, nil, media, Options{})
	err := r.Run(context.Background())

	require.Error(t, err)
	assert.Empty(t, media.cuts)
}
