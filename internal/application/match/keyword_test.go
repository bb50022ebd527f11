package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clive/internal/domain/entity"
)

func TestFindKeywordsBasicHit(t *testing.T) {
	units := []entity.Timestamp{
		{Start: 0, End: 5, Text: "hello world"},
	}
	keywords := []Keyword{{Text: "hello", PaddingBefore: 5, PaddingAfter: 5}}

	clips := FindKeywords(units, keywords)

	require.Len(t, clips, 1)
	// 起点 0-5 被钳到 0
	assert.Equal(t, entity.Clip{Start: 0, End: 10, Keyword: "hello"}, clips[0])
}

func TestFindKeywordsPaddingNeverNegative(t *testing.T) {
	units := []entity.Timestamp{
		{Start: 10, End: 12, Text: "hello"},
	}
	keywords := []Keyword{{Text: "hello", PaddingBefore: 30, PaddingAfter: 10}}

	clips := FindKeywords(units, keywords)

	require.Len(t, clips, 1)
	assert.Equal(t, 0.0, clips[0].Start)
	assert.Equal(t, 22.0, clips[0].End)
}

func TestFindKeywordsCaseAndPunctuationInsensitive(t *testing.T) {
	units := []entity.Timestamp{
		{Start: 1, End: 2, Text: "Well, HELLO! everyone."},
	}
	keywords := []Keyword{{Text: "hello", PaddingBefore: 0, PaddingAfter: 0}}

	clips := FindKeywords(units, keywords)

	require.Len(t, clips, 1)
	assert.Equal(t, "hello", clips[0].Keyword)
}

func TestFindKeywordsNoSubstringMatch(t *testing.T) {
	units := []entity.Timestamp{
		{Start: 0, End: 1, Text: "helloworld othello"},
	}
	keywords := []Keyword{{Text: "hello", PaddingBefore: 0, PaddingAfter: 0}}

	clips := FindKeywords(units, keywords)

	assert.Empty(t, clips)
}

func TestFindKeywordsMultipleHitsNotDeduplicated(t *testing.T) {
	units := []entity.Timestamp{
		{Start: 0, End: 1, Text: "go"},
		{Start: 5, End: 6, Text: "go go"},
	}
	keywords := []Keyword{{Text: "go", PaddingBefore: 0, PaddingAfter: 0}}

	clips := FindKeywords(units, keywords)

	// 去重延后到 Merge，这里每个命中各产出一条
	assert.Len(t, clips, 3)
}
