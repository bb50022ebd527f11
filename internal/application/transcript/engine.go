// Package transcript 将 ASR 分段/Token 输出重建为有序的时间戳文本单元
package transcript

import (
	"context"

	"clive/internal/domain/entity"
)

// Engine 语音识别引擎接口
// 返回的分段按时间有序，段级读取失败由实现方记录并跳过
type Engine interface {
	Transcribe(ctx context.Context, audioPath string) ([]entity.Segment, error)
}
