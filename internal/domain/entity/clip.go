package entity

// Clip 一段待剪辑的时间区间
// Keyword 记录产生该区间的关键词或语义片段文本，多个匹配合并时以分隔符连接
// 历史序列化格式沿用 keyword 字段名
type Clip struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Keyword string  `json:"keyword"`
}
