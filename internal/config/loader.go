// Package config 提供配置加载功能
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	apperrors "clive/pkg/errors"
)

// 可用的 whisper 模型名
var validModels = map[string]struct{}{
	"tiny": {}, "base": {}, "small": {}, "medium": {}, "large": {},
	"tiny.en": {}, "base.en": {}, "small.en": {}, "medium.en": {}, "large.en": {},
}

// 默认剪辑留白（秒）
const (
	DefaultPaddingBefore uint = 30
	DefaultPaddingAfter  uint = 30
)

// Load 加载配置
// 按优先级：默认值 -> 配置文件 -> 环境变量；path 为空时跳过配置文件
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("CLIVE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 配置文件可以省略单条留白，统一回填默认值
	for i := range cfg.Moments {
		if cfg.Moments[i].Padding.Before == 0 && cfg.Moments[i].Padding.After == 0 {
			cfg.Moments[i].Padding = Padding{Before: DefaultPaddingBefore, After: DefaultPaddingAfter}
		}
	}

	return &cfg, nil
}

// setDefaults 设置配置默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("asr.model", "base")
	v.SetDefault("asr.binary", "whisper-cli")
	v.SetDefault("asr.language", "en")
	v.SetDefault("asr.special_token_threshold", 50258)

	v.SetDefault("tracks.audio_tracks", []int{1, 2})

	v.SetDefault("search.mode", string(ModeSemantic))
	v.SetDefault("search.top_k", 3)
	v.SetDefault("search.neighbors_before", 5)
	v.SetDefault("search.neighbors_after", 5)

	v.SetDefault("output.directory", "output")

	v.SetDefault("cache.root", "")

	v.SetDefault("embedding.endpoint", "http://localhost:8080/embed")
	v.SetDefault("embedding.model", "BAAI/bge-m3")
	v.SetDefault("embedding.dimension", 1024)
	v.SetDefault("embedding.batch_size", 32)
	v.SetDefault("embedding.max_retries", 3)

	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "text")
	v.SetDefault("observability.tracing.enabled", false)
	v.SetDefault("observability.tracing.endpoint", "localhost:4317")
	v.SetDefault("observability.tracing.sample_rate", 1.0)
	v.SetDefault("observability.metrics.enabled", false)
	v.SetDefault("observability.metrics.port", 9464)
}

// CLIOverrides 命令行覆写
// 合并优先级：Input 总是生效；Moments 非空时整体替换配置中的列表；
// 其余字段仅在命令行显式提供时覆盖配置值
type CLIOverrides struct {
	Input  string
	Output string
	Model  string
	Tracks []int
	// Moments 命令行给出的关键词/语义片段文本，使用默认留白
	Moments []string
	Mode    string
}

// ApplyCLI 将命令行参数合并进配置
func (c *Config) ApplyCLI(o CLIOverrides) {
	c.InputFile = o.Input

	if len(o.Moments) > 0 {
		moments := make([]Moment, 0, len(o.Moments))
		for _, text := range o.Moments {
			moments = append(moments, Moment{
				Text:    text,
				Padding: Padding{Before: DefaultPaddingBefore, After: DefaultPaddingAfter},
			})
		}
		c.Moments = moments
	}

	if o.Output != "" {
		c.Output.Directory = o.Output
	}
	if o.Model != "" {
		c.ASR.Model = o.Model
	}
	if len(o.Tracks) > 0 {
		c.Tracks.AudioTracks = o.Tracks
	}
	if o.Mode != "" {
		c.Search.Mode = SearchMode(o.Mode)
	}
}

// Validate 校验配置，任何管线阶段执行前调用
func (c *Config) Validate() error {
	if c.InputFile == "" {
		return apperrors.ErrValidation.WithDetail("input file not specified")
	}
	if _, err := os.Stat(c.InputFile); err != nil {
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("input file does not exist: %s", c.InputFile))
	}

	if _, ok := validModels[c.ASR.Model]; !ok {
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("invalid model name: %s", c.ASR.Model))
	}

	if len(c.Tracks.AudioTracks) == 0 {
		return apperrors.ErrValidation.WithDetail("no audio tracks specified")
	}
	for _, t := range c.Tracks.AudioTracks {
		if t < 1 {
			return apperrors.ErrValidation.WithDetail(fmt.Sprintf("audio tracks are 1-based, got %d", t))
		}
	}

	if len(c.Moments) == 0 {
		return apperrors.ErrValidation.WithDetail("no keywords or moments specified")
	}
	for _, m := range c.Moments {
		if strings.TrimSpace(m.Text) == "" {
			return apperrors.ErrValidation.WithDetail("moment text must not be empty")
		}
	}

	switch c.Search.Mode {
	case ModeKeyword:
	case ModeSemantic:
		if c.Embedding.Dimension <= 0 {
			return apperrors.ErrValidation.WithDetail("embedding dimension must be positive in semantic mode")
		}
	default:
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("invalid search mode: %s", c.Search.Mode))
	}

	return nil
}
