// Package media 提供 ffmpeg 子进程适配：音轨提取与剪辑切割
package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	apperrors "clive/pkg/errors"
	"clive/pkg/logger"
)

// FFmpeg ffmpeg 命令行适配器
type FFmpeg struct {
	binary string
}

// NewFFmpeg 创建适配器，binary 为空时使用 PATH 中的 ffmpeg
func NewFFmpeg(binary string) *FFmpeg {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{binary: binary}
}

// Check 检查 ffmpeg 是否可用
func (f *FFmpeg) Check(ctx context.Context) error {
	if err := exec.CommandContext(ctx, f.binary, "-version").Run(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternalTool,
			"ffmpeg is not installed or not available in PATH")
	}
	return nil
}

// ExtractTrack 从输入文件提取一条音轨为 16kHz 单声道 WAV
// track 为 1 起始的音轨编号
func (f *FFmpeg) ExtractTrack(ctx context.Context, inputPath, outputPath string, track int) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-map", fmt.Sprintf("0:a:%d", track-1),
		"-f", "wav",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outputPath,
	}
	return f.run(ctx, args, fmt.Sprintf("failed to extract track %d", track))
}

// Cut 按时间区间流拷贝切出一个剪辑，不重编码
func (f *FFmpeg) Cut(ctx context.Context, inputPath, outputPath string, start, end float64) error {
	args := []string{
		"-y",
		"-i", inputPath,
		"-ss", fmt.Sprintf("%.3f", start),
		"-to", fmt.Sprintf("%.3f", end),
		"-c", "copy",
		outputPath,
	}
	return f.run(ctx, args, "failed to cut clip")
}

func (f *FFmpeg) run(ctx context.Context, args []string, msg string) error {
	cmd := exec.CommandContext(ctx, f.binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug(ctx, "running ffmpeg", "args", strings.Join(args, " "))
	if err := cmd.Run(); err != nil {
		return apperrors.Wrap(err, apperrors.CodeExternalTool, msg).
			WithDetail(lastLine(stderr.String()))
	}
	return nil
}

// lastLine ffmpeg 的报错通常在 stderr 末行
func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) == 0 {
		return ""
	}
	return strings.TrimSpace(lines[len(lines)-1])
}
