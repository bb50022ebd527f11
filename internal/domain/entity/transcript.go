// Package entity 定义核心领域模型
package entity

import "sort"

// Timestamp 转写文本单元：一个词或一段折叠的字幕，带时间范围（秒）
type Timestamp struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Token ASR 引擎输出的单个 token
type Token struct {
	// Text token 文本，可能是子词片段
	Text string
	// ID 词表 id，达到特殊 token 阈值的 id 属于控制 token
	ID int
	// Time token 的近似时间（秒）
	Time float64
}

// Segment ASR 引擎输出的一个识别分段
type Segment struct {
	Text   string
	Start  float64
	End    float64
	Tokens []Token
}

// SortTimestamps 按 Start 升序稳定排序
// 多音轨合并后的序列不保证有序，下游匹配前必须重排
func SortTimestamps(units []Timestamp) {
	sort.SliceStable(units, func(i, j int) bool {
		return units[i].Start < units[j].Start
	})
}
