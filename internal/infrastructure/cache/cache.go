// Package cache 提供按输入标识寻址的制品缓存
// 路径由输入文件的基础名派生：同名不同内容的输入会发生碰撞，属已知限制
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"clive/internal/domain/entity"
	apperrors "clive/pkg/errors"
)

// Cache 管理缓存目录与中间制品
type Cache struct {
	root             string
	modelsDir        string
	audioDir         string
	transcriptionDir string
	clipsDir         string
}

// New 创建缓存实例，root 为空时使用系统用户缓存目录下的 clive 子目录
func New(root string) *Cache {
	if root == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			root = filepath.Join(dir, "clive")
		} else {
			root = filepath.Join(".cache", "clive")
		}
	}
	return &Cache{
		root:             root,
		modelsDir:        filepath.Join(root, "models"),
		audioDir:         filepath.Join(root, "audio"),
		transcriptionDir: filepath.Join(root, "transcriptions"),
		clipsDir:         filepath.Join(root, "clips"),
	}
}

// Init 创建全部缓存子目录
func (c *Cache) Init() error {
	for _, dir := range []string{c.modelsDir, c.audioDir, c.transcriptionDir, c.clipsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create cache directory %s: %w", dir, err)
		}
	}
	return nil
}

// Root 返回缓存根目录
func (c *Cache) Root() string { return c.root }

// ModelPath 返回 whisper 模型文件路径
func (c *Cache) ModelPath(modelName string) string {
	return filepath.Join(c.modelsDir, fmt.Sprintf("whisper-%s.bin", modelName))
}

// AudioPath 返回某输入某音轨的提取音频路径
func (c *Cache) AudioPath(inputPath string, track int) string {
	return filepath.Join(c.audioDir, fmt.Sprintf("%s_track_%d.wav", stem(inputPath), track))
}

// TranscriptionPath 返回某输入的转写制品路径
func (c *Cache) TranscriptionPath(inputPath string) string {
	return filepath.Join(c.transcriptionDir, stem(inputPath)+".json")
}

// ClipsPath 返回某输入的剪辑列表制品路径
func (c *Cache) ClipsPath(inputPath string) string {
	return filepath.Join(c.clipsDir, stem(inputPath)+"_clips.json")
}

// SaveTranscription 序列化并写入转写制品
func (c *Cache) SaveTranscription(inputPath string, units []entity.Timestamp) error {
	return writeJSON(c.TranscriptionPath(inputPath), units)
}

// LoadTranscription 读取转写制品
// 制品不存在返回 NotFound，内容损坏返回 CorruptArtifact
func (c *Cache) LoadTranscription(inputPath string) ([]entity.Timestamp, error) {
	var units []entity.Timestamp
	if err := readJSON(c.TranscriptionPath(inputPath), &units); err != nil {
		return nil, err
	}
	return units, nil
}

// SaveClips 序列化并写入剪辑列表制品
func (c *Cache) SaveClips(inputPath string, clips []entity.Clip) error {
	return writeJSON(c.ClipsPath(inputPath), clips)
}

// LoadClips 读取剪辑列表制品
func (c *Cache) LoadClips(inputPath string) ([]entity.Clip, error) {
	var clips []entity.Clip
	if err := readJSON(c.ClipsPath(inputPath), &clips); err != nil {
		return nil, err
	}
	return clips, nil
}

// CleanupForInput 删除某输入派生的音频/转写/剪辑制品，模型文件不受影响
func (c *Cache) CleanupForInput(inputPath string) error {
	prefix := stem(inputPath)

	entries, err := os.ReadDir(c.audioDir)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read audio directory: %w", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), prefix) {
			if err := os.Remove(filepath.Join(c.audioDir, entry.Name())); err != nil {
				return fmt.Errorf("failed to remove audio artifact: %w", err)
			}
		}
	}

	for _, path := range []string{c.TranscriptionPath(inputPath), c.ClipsPath(inputPath)} {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove artifact %s: %w", path, err)
		}
	}

	return nil
}

// Cleanup 删除整个缓存根目录
func (c *Cache) Cleanup() error {
	if err := os.RemoveAll(c.root); err != nil {
		return fmt.Errorf("failed to remove cache directory: %w", err)
	}
	return nil
}

// stem 输入文件的基础名（去扩展名），即制品键
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", path, err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrNotFound.WithDetail(path)
		}
		return fmt.Errorf("failed to read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.ErrCorruptArtifact.WithDetail(path).WithError(err)
	}
	return nil
}
