// Package retrieval 提供内存向量索引：最近邻检索与时序邻域扩展
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"clive/internal/domain/entity"
	"clive/pkg/metrics"
)

// Record 一条嵌入记录
// ID 按插入顺序单调递增，运行期内不回收复用
type Record struct {
	ID     int64
	Start  float64
	End    float64
	Text   string
	Vector []float64
}

// Index 内存向量索引，归属单次管线运行，从不落盘
// Populate 完成后只读，查询可并发执行
type Index struct {
	dim     int
	nextID  int64
	records []Record
}

// NewIndex 创建指定维度的空索引
func NewIndex(dimension int) *Index {
	return &Index{dim: dimension}
}

// Dimension 返回索引声明的向量维度
func (ix *Index) Dimension() int { return ix.dim }

// Len 返回已插入的记录数
func (ix *Index) Len() int { return len(ix.records) }

// Populate 为每个单元计算向量并按输入顺序插入
// 任一向量长度与声明维度不一致时返回 ErrDimensionMismatch
func (ix *Index) Populate(ctx context.Context, units []entity.Timestamp, embedder Embedder) error {
	if len(units) == 0 {
		return nil
	}

	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.Text
	}

	vectors, err := embedder.BatchEmbed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed %d units: %w", len(units), err)
	}
	if len(vectors) != len(units) {
		return fmt.Errorf("embedder returned %d vectors for %d units", len(vectors), len(units))
	}

	for i, vec := range vectors {
		if len(vec) != ix.dim {
			return ErrDimensionMismatch.WithDetail(
				fmt.Sprintf("expected %d, got %d at unit %d", ix.dim, len(vec), i))
		}
		ix.nextID++
		ix.records = append(ix.records, Record{
			ID:     ix.nextID,
			Start:  units[i].Start,
			End:    units[i].End,
			Text:   units[i].Text,
			Vector: vec,
		})
	}

	metrics.EmbeddingsComputed.Add(float64(len(vectors)))
	return nil
}

// Query 按余弦距离升序返回与查询文本最近的 k 条记录
// 空索引返回空列表，记录数不足 k 时返回全部
func (ix *Index) Query(ctx context.Context, text string, k int, embedder Embedder) ([]Record, error) {
	metrics.SemanticQueries.Inc()

	if len(ix.records) == 0 || k <= 0 {
		return []Record{}, nil
	}

	queryVec, err := embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(queryVec) != ix.dim {
		return nil, ErrDimensionMismatch.WithDetail(
			fmt.Sprintf("query vector has %d dimensions, index declares %d", len(queryVec), ix.dim))
	}

	type scored struct {
		record   Record
		distance float64
	}
	ranked := make([]scored, len(ix.records))
	for i, rec := range ix.records {
		ranked[i] = scored{record: rec, distance: cosineDistance(queryVec, rec.Vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	results := make([]Record, k)
	for i := 0; i < k; i++ {
		results[i] = ranked[i].record
	}
	return results, nil
}

// Neighbors 返回目标记录的时序邻域，整体按时间升序：
// 最多 before 条 start 严格小于目标的记录、目标自身、最多 after 条 start 严格大于目标的记录
// 序列边界处不足请求数量不是错误
func (ix *Index) Neighbors(id int64, before, after int) ([]Record, error) {
	var target *Record
	for i := range ix.records {
		if ix.records[i].ID == id {
			target = &ix.records[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound.WithDetail(fmt.Sprintf("id %d", id))
	}
	if before < 0 {
		before = 0
	}
	if after < 0 {
		after = 0
	}

	var preceding, following []Record
	for _, rec := range ix.records {
		if rec.ID == id {
			continue
		}
		switch {
		case rec.Start < target.Start:
			preceding = append(preceding, rec)
		case rec.Start > target.Start:
			following = append(following, rec)
		}
	}

	// 前向邻居取最近的 before 条，再反转回时间升序
	sort.SliceStable(preceding, func(i, j int) bool {
		return preceding[i].Start > preceding[j].Start
	})
	if before < len(preceding) {
		preceding = preceding[:before]
	}
	for i, j := 0, len(preceding)-1; i < j; i, j = i+1, j-1 {
		preceding[i], preceding[j] = preceding[j], preceding[i]
	}

	sort.SliceStable(following, func(i, j int) bool {
		return following[i].Start < following[j].Start
	})
	if after < len(following) {
		following = following[:after]
	}

	results := make([]Record, 0, len(preceding)+1+len(following))
	results = append(results, preceding...)
	results = append(results, *target)
	results = append(results, following...)
	return results, nil
}

// cosineDistance 余弦距离，越小越相似；零向量视为完全不相似
func cosineDistance(a, b []float64) float64 {
	normA := math.Sqrt(floats.Dot(a, a))
	normB := math.Sqrt(floats.Dot(b, b))
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - floats.Dot(a, b)/(normA*normB)
}
