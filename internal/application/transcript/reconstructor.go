package transcript

import (
	"context"
	"strings"

	"clive/internal/domain/entity"
	"clive/pkg/logger"
	"clive/pkg/metrics"
)

// Reconstructor 将 ASR 分段重建为词级时间戳单元
//
// 词级计时沿用所在分段的起始时间：whisper 的子词 token 偏移不稳定，
// 因此词尾时间取段首偏移，会系统性偏小。这是既有行为，调整公式前需
// 先确认对剪辑边界的影响。
type Reconstructor struct {
	// specialTokenThreshold 词表 id 达到该值的 token 为控制 token，直接跳过
	specialTokenThreshold int
}

// NewReconstructor 创建重建器
func NewReconstructor(specialTokenThreshold int) *Reconstructor {
	return &Reconstructor{specialTokenThreshold: specialTokenThreshold}
}

// Reconstruct 将一个音频源的分段序列转换为有序的时间戳单元序列
// 输出满足 start <= end 且按 start 非递减
func (r *Reconstructor) Reconstruct(ctx context.Context, segments []entity.Segment) []entity.Timestamp {
	units := make([]entity.Timestamp, 0, len(segments))

	for _, seg := range segments {
		if len(seg.Tokens) == 0 {
			if seg.Text == "" {
				continue
			}
			// 相邻分段文本完全一致时丢弃，防止 ASR 跨块重复输出同一条字幕
			if len(units) > 0 && units[len(units)-1].Text == seg.Text {
				continue
			}
			units = append(units, entity.Timestamp{Start: seg.Start, End: seg.End, Text: seg.Text})
			continue
		}

		units = r.appendWords(ctx, units, seg)
	}

	metrics.UnitsReconstructed.Add(float64(len(units)))
	return units
}

// appendWords 按词边界切分一个分段的 token 流
func (r *Reconstructor) appendWords(ctx context.Context, units []entity.Timestamp, seg entity.Segment) []entity.Timestamp {
	var sb strings.Builder
	var wordStart float64
	haveStart := false

	for i, tok := range seg.Tokens {
		if tok.ID >= r.specialTokenThreshold {
			metrics.TokensSkipped.WithLabelValues("special").Inc()
			continue
		}
		if strings.TrimSpace(tok.Text) == "" {
			metrics.TokensSkipped.WithLabelValues("empty").Inc()
			continue
		}

		tokenTime := seg.Start
		if !haveStart {
			wordStart = tokenTime
			haveStart = true
		}

		sb.WriteString(tok.Text)

		isLast := i == len(seg.Tokens)-1
		isWordEnd := strings.HasSuffix(tok.Text, " ") || strings.HasSuffix(tok.Text, "\n")
		if isLast || isWordEnd {
			if trimmed := strings.TrimSpace(sb.String()); trimmed != "" {
				logger.Debug(ctx, "reconstructed word", "text", trimmed, "start", wordStart, "end", tokenTime)
				units = append(units, entity.Timestamp{Start: wordStart, End: tokenTime, Text: trimmed})
			}
			sb.Reset()
			haveStart = false
		}
	}

	// 末尾 token 被跳过时边界不会触发，残留文本用段尾时间收口
	if trimmed := strings.TrimSpace(sb.String()); trimmed != "" {
		start := seg.Start
		if haveStart {
			start = wordStart
		}
		units = append(units, entity.Timestamp{Start: start, End: seg.End, Text: trimmed})
	}

	return units
}
