package retrieval

import apperrors "clive/pkg/errors"

var (
	// ErrNotFound 指定 id 的嵌入记录不存在
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "embedding record not found")
	// ErrDimensionMismatch 向量长度与索引声明的维度不一致，属配置错误，不可恢复
	ErrDimensionMismatch = apperrors.New(apperrors.CodeDimensionMismatch, "embedding dimension mismatch")
)
