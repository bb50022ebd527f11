package match

import (
	"sort"

	"clive/internal/domain/entity"
)

// Merge 标准区间合并：排序后顺序折叠重叠的候选区间
// 输出按 start 升序且两两不相交，输入区间的并集被完整覆盖
// 对已合并的列表再次 Merge 得到相同结果
func Merge(clips []entity.Clip) []entity.Clip {
	if len(clips) == 0 {
		return []entity.Clip{}
	}

	sorted := make([]entity.Clip, len(clips))
	copy(sorted, clips)
	// 稳定排序保证相同 start 时输出确定
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	merged := make([]entity.Clip, 0, len(sorted))
	for _, clip := range sorted {
		if len(merged) > 0 {
			last := &merged[len(merged)-1]
			if clip.Start <= last.End {
				if clip.End > last.End {
					last.End = clip.End
				}
				last.Keyword = last.Keyword + ", " + clip.Keyword
				continue
			}
		}
		merged = append(merged, clip)
	}

	return merged
}
