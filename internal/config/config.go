// Package config 提供配置加载和管理功能
package config

// Config 应用配置根结构
type Config struct {
	ASR           ASRConfig           `yaml:"asr" mapstructure:"asr"`
	Tracks        TracksConfig        `yaml:"tracks" mapstructure:"tracks"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Moments       []Moment            `yaml:"moments" mapstructure:"moments"`
	Output        OutputConfig        `yaml:"output" mapstructure:"output"`
	Cache         CacheConfig         `yaml:"cache" mapstructure:"cache"`
	Embedding     EmbeddingConfig     `yaml:"embedding" mapstructure:"embedding"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`

	// InputFile 输入媒体文件路径，仅来自命令行
	InputFile string `yaml:"-" mapstructure:"-"`
}

// ASRConfig 语音识别配置
type ASRConfig struct {
	// Model whisper 模型名 (tiny/base/small/medium/large 及 .en 变体)
	Model string `yaml:"model" mapstructure:"model"`
	// Binary whisper 命令行工具路径
	Binary string `yaml:"binary" mapstructure:"binary"`
	// Language 识别语言
	Language string `yaml:"language" mapstructure:"language"`
	// SpecialTokenThreshold 词表 id 达到该值的 token 视为控制 token
	SpecialTokenThreshold int `yaml:"special_token_threshold" mapstructure:"special_token_threshold"`
}

// TracksConfig 音轨配置
type TracksConfig struct {
	// AudioTracks 要提取并转写的音轨编号（1 起始）
	AudioTracks []int `yaml:"audio_tracks" mapstructure:"audio_tracks"`
}

// SearchMode 匹配模式
type SearchMode string

const (
	// ModeKeyword 字面关键词全词匹配
	ModeKeyword SearchMode = "keyword"
	// ModeSemantic 语义向量检索匹配
	ModeSemantic SearchMode = "semantic"
)

// SearchConfig 匹配与上下文扩展配置
type SearchConfig struct {
	Mode SearchMode `yaml:"mode" mapstructure:"mode"`
	// TopK 每个语义片段返回的最近邻数量
	TopK int `yaml:"top_k" mapstructure:"top_k"`
	// NeighborsBefore / NeighborsAfter 语义命中时向前/向后扩展的单元数
	NeighborsBefore int `yaml:"neighbors_before" mapstructure:"neighbors_before"`
	NeighborsAfter  int `yaml:"neighbors_after" mapstructure:"neighbors_after"`
}

// Padding 单个关键词/语义片段的剪辑留白（秒）
type Padding struct {
	Before uint `yaml:"before" mapstructure:"before"`
	After  uint `yaml:"after" mapstructure:"after"`
}

// Moment 要查找的关键词或语义片段
type Moment struct {
	Text    string  `yaml:"text" mapstructure:"text"`
	Padding Padding `yaml:"padding" mapstructure:"padding"`
	// NeighborsBefore / NeighborsAfter 覆盖全局邻域窗口，nil 时使用 search 配置
	NeighborsBefore *int `yaml:"neighbors_before,omitempty" mapstructure:"neighbors_before"`
	NeighborsAfter  *int `yaml:"neighbors_after,omitempty" mapstructure:"neighbors_after"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	// Directory 最终剪辑文件的输出目录，不存在时自动创建
	Directory string `yaml:"directory" mapstructure:"directory"`
}

// CacheConfig 制品缓存配置
type CacheConfig struct {
	// Root 缓存根目录，为空时使用系统用户缓存目录下的 clive 子目录
	Root string `yaml:"root" mapstructure:"root"`
}

// EmbeddingConfig 向量化服务配置
type EmbeddingConfig struct {
	Endpoint string `yaml:"endpoint" mapstructure:"endpoint"`
	Model    string `yaml:"model" mapstructure:"model"`
	// Dimension 向量维度，索引构建时声明，不匹配为致命错误
	Dimension int `yaml:"dimension" mapstructure:"dimension"`
	BatchSize int `yaml:"batch_size" mapstructure:"batch_size"`
	// MaxRetries 单次请求失败后的最大重试次数
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	Port    int  `yaml:"port" mapstructure:"port"`
}
