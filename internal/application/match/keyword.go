// Package match 提供关键词匹配与剪辑区间合并
package match

import (
	"strings"
	"unicode"

	"clive/internal/domain/entity"
)

// Keyword 一个待匹配的字面关键词及其剪辑留白（秒）
type Keyword struct {
	Text          string
	PaddingBefore uint
	PaddingAfter  uint
}

// FindKeywords 在单元序列中查找字面关键词命中，返回带留白的候选区间
// 匹配规则：按空白切词、去首尾标点、小写后全词相等，不做子串匹配
// 此处不去重，重叠区间交由 Merge 统一处理
func FindKeywords(units []entity.Timestamp, keywords []Keyword) []entity.Clip {
	type target struct {
		keyword Keyword
		lowered string
	}
	targets := make([]target, 0, len(keywords))
	for _, kw := range keywords {
		targets = append(targets, target{keyword: kw, lowered: strings.ToLower(kw.Text)})
	}

	clips := make([]entity.Clip, 0)
	for _, unit := range units {
		for _, field := range strings.Fields(unit.Text) {
			word := strings.ToLower(strings.TrimFunc(field, unicode.IsPunct))
			if word == "" {
				continue
			}
			for _, t := range targets {
				if word != t.lowered {
					continue
				}
				start := unit.Start - float64(t.keyword.PaddingBefore)
				if start < 0 {
					start = 0
				}
				clips = append(clips, entity.Clip{
					Start:   start,
					End:     unit.End + float64(t.keyword.PaddingAfter),
					Keyword: t.keyword.Text,
				})
			}
		}
	}

	return clips
}
