package retrieval

import "context"

// Embedder 向量化能力接口
// 同一实例返回的向量维度固定，测试中以确定性桩实现替换真实推理引擎
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	BatchEmbed(ctx context.Context, texts []string) ([][]float64, error)
}
