// Package asr 提供 whisper 命令行的子进程适配
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"clive/internal/domain/entity"
	apperrors "clive/pkg/errors"
	"clive/pkg/logger"
)

// Whisper 通过 whisper.cpp 命令行转写音频，产出带 token 级数据的分段
type Whisper struct {
	binary    string
	modelPath string
	language  string
}

// NewWhisper 创建转写适配器
func NewWhisper(binary, modelPath, language string) *Whisper {
	if binary == "" {
		binary = "whisper-cli"
	}
	if language == "" {
		language = "en"
	}
	return &Whisper{binary: binary, modelPath: modelPath, language: language}
}

// whisper-cli 的 full JSON 输出（-oj -ojf），偏移单位为毫秒
type whisperOutput struct {
	Transcription []whisperSegment `json:"transcription"`
}

type whisperSegment struct {
	Text    string         `json:"text"`
	Offsets whisperOffsets `json:"offsets"`
	Tokens  []whisperToken `json:"tokens"`
}

type whisperToken struct {
	Text    string         `json:"text"`
	ID      int            `json:"id"`
	Offsets whisperOffsets `json:"offsets"`
}

type whisperOffsets struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// Transcribe 运行 whisper 转写一个音频文件
// 整体调用失败中止本次运行，单个分段解析异常记录后跳过
func (w *Whisper) Transcribe(ctx context.Context, audioPath string) ([]entity.Segment, error) {
	if _, err := os.Stat(w.modelPath); err != nil {
		return nil, apperrors.ErrNotFound.WithDetail(
			fmt.Sprintf("whisper model not found at %s", w.modelPath))
	}

	outPrefix := strings.TrimSuffix(audioPath, ".wav")
	cmd := exec.CommandContext(ctx, w.binary,
		"-m", w.modelPath,
		"-f", audioPath,
		"-l", w.language,
		"-oj", "-ojf",
		"-of", outPrefix,
		"-np",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug(ctx, "running whisper", "binary", w.binary, "audio", audioPath)
	if err := cmd.Run(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTranscriptionFailed,
			"whisper failed").WithDetail(strings.TrimSpace(stderr.String()))
	}

	jsonPath := outPrefix + ".json"
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTranscriptionFailed,
			"whisper produced no output")
	}
	defer os.Remove(jsonPath)

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeTranscriptionFailed,
			"failed to parse whisper output")
	}

	segments := make([]entity.Segment, 0, len(out.Transcription))
	for i, seg := range out.Transcription {
		if seg.Offsets.To < seg.Offsets.From {
			logger.Warn(ctx, "skipping segment with inverted offsets", "segment", i)
			continue
		}
		tokens := make([]entity.Token, 0, len(seg.Tokens))
		for _, tok := range seg.Tokens {
			tokens = append(tokens, entity.Token{
				Text: tok.Text,
				ID:   tok.ID,
				Time: float64(tok.Offsets.From) / 1000.0,
			})
		}
		segments = append(segments, entity.Segment{
			Text:   seg.Text,
			Start:  float64(seg.Offsets.From) / 1000.0,
			End:    float64(seg.Offsets.To) / 1000.0,
			Tokens: tokens,
		})
	}

	logger.Debug(ctx, "whisper finished", "segments", len(segments))
	return segments, nil
}
