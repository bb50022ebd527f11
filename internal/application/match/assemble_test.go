package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clive/internal/domain/entity"
)

func TestMergeOverlappingClips(t *testing.T) {
	clips := []entity.Clip{
		{Start: 0, End: 10, Keyword: "a"},
		{Start: 8, End: 20, Keyword: "b"},
	}

	merged := Merge(clips)

	require.Len(t, merged, 1)
	assert.Equal(t, entity.Clip{Start: 0, End: 20, Keyword: "a, b"}, merged[0])
}

func TestMergeDisjointClipsUntouched(t *testing.T) {
	clips := []entity.Clip{
		{Start: 0, End: 5, Keyword: "a"},
		{Start: 10, End: 15, Keyword: "b"},
	}

	merged := Merge(clips)

	assert.Equal(t, clips, merged)
}

func TestMergeSortsUnorderedInput(t *testing.T) {
	clips := []entity.Clip{
		{Start: 30, End: 40, Keyword: "c"},
		{Start: 0, End: 5, Keyword: "a"},
		{Start: 4, End: 10, Keyword: "b"},
	}

	merged := Merge(clips)

	require.Len(t, merged, 2)
	assert.Equal(t, entity.Clip{Start: 0, End: 10, Keyword: "a, b"}, merged[0])
	assert.Equal(t, entity.Clip{Start: 30, End: 40, Keyword: "c"}, merged[1])
}

func TestMergeContainedInterval(t *testing.T) {
	clips := []entity.Clip{
		{Start: 0, End: 20, Keyword: "outer"},
		{Start: 5, End: 10, Keyword: "inner"},
	}

	merged := Merge(clips)

	require.Len(t, merged, 1)
	assert.Equal(t, 0.0, merged[0].Start)
	assert.Equal(t, 20.0, merged[0].End)
}

func TestMergeIdempotent(t *testing.T) {
	clips := []entity.Clip{
		{Start: 0, End: 10, Keyword: "a"},
		{Start: 8, End: 20, Keyword: "b"},
		{Start: 25, End: 30, Keyword: "c"},
	}

	once := Merge(clips)
	twice := Merge(once)

	assert.Equal(t, once, twice)
}

func TestMergeOutputSortedAndNonOverlapping(t *testing.T) {
	clips := []entity.Clip{
		{Start: 12, End: 18, Keyword: "d"},
		{Start: 0, End: 3, Keyword: "a"},
		{Start: 2, End: 8, Keyword: "b"},
		{Start: 7, End: 9, Keyword: "c"},
		{Start: 40, End: 41, Keyword: "e"},
	}

	merged := Merge(clips)

	for i := 1; i < len(merged); i++ {
		assert.Less(t, merged[i-1].End, merged[i].Start)
	}
}

func TestMergeEmptyInput(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]entity.Clip{}))
}
