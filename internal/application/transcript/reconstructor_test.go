package transcript

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clive/internal/domain/entity"
)

const testThreshold = 50258

func TestReconstructSegmentWithoutTokens(t *testing.T) {
	r := NewReconstructor(testThreshold)

	units := r.Reconstruct(context.Background(), []entity.Segment{
		{Text: "hello there", Start: 0, End: 2},
	})

	require.Len(t, units, 1)
	assert.Equal(t, entity.Timestamp{Start: 0, End: 2, Text: "hello there"}, units[0])
}

func TestReconstructDeduplicatesAdjacentIdenticalSegments(t *testing.T) {
	r := NewReconstructor(testThreshold)

	units := r.Reconstruct(context.Background(), []entity.Segment{
		{Text: "hi", Start: 0, End: 1},
		{Text: "hi", Start: 1, End: 2},
	})

	require.Len(t, units, 1)
	assert.Equal(t, entity.Timestamp{Start: 0, End: 1, Text: "hi"}, units[0])
}

func TestReconstructNonAdjacentDuplicatesKept(t *testing.T) {
	r := NewReconstructor(testThreshold)

	units := r.Reconstruct(context.Background(), []entity.Segment{
		{Text: "hi", Start: 0, End: 1},
		{Text: "bye", Start: 1, End: 2},
		{Text: "hi", Start: 2, End: 3},
	})

	require.Len(t, units, 3)
}

func TestReconstructEmptySegmentContributesNothing(t *testing.T) {
	r := NewReconstructor(testThreshold)

	units := r.Reconstruct(context.Background(), []entity.Segment{
		{Text: "", Start: 0, End: 1},
	})

	assert.Empty(t, units)
}

func TestReconstructSplitsTokensOnWordBoundaries(t *testing.T) {
	r := NewReconstructor(testThreshold)

	segments := []entity.Segment{
		{
			Text:  " hello world",
			Start: 1.5,
			End:   3.0,
			Tokens: []entity.Token{
				{Text: " hel", ID: 100},
				{Text: "lo ", ID: 101},
				{Text: "world", ID: 102},
			},
		},
	}

	units := r.Reconstruct(context.Background(), segments)

	require.Len(t, units, 2)
	assert.Equal(t, "hello", units[0].Text)
	assert.Equal(t, "world", units[1].Text)
	// 词级计时锚定在段首偏移
	assert.Equal(t, 1.5, units[0].Start)
	assert.Equal(t, 1.5, units[0].End)
	assert.Equal(t, 1.5, units[1].Start)
	assert.Equal(t, 1.5, units[1].End)
}

func TestReconstructSkipsSpecialAndEmptyTokens(t *testing.T) {
	r := NewReconstructor(testThreshold)

	segments := []entity.Segment{
		{
			Text:  " hi",
			Start: 0,
			End:   1,
			Tokens: []entity.Token{
				{Text: "[_BEG_]", ID: testThreshold},
				{Text: "  ", ID: 10},
				{Text: "hi", ID: 11},
			},
		},
	}

	units := r.Reconstruct(context.Background(), segments)

	require.Len(t, units, 1)
	assert.Equal(t, "hi", units[0].Text)
}

func TestReconstructFlushesTrailingTextWhenLastTokenSkipped(t *testing.T) {
	r := NewReconstructor(testThreshold)

	segments := []entity.Segment{
		{
			Text:  " bye",
			Start: 2,
			End:   4,
			Tokens: []entity.Token{
				{Text: "bye", ID: 20},
				{Text: "[_EOT_]", ID: testThreshold + 1},
			},
		},
	}

	units := r.Reconstruct(context.Background(), segments)

	require.Len(t, units, 1)
	assert.Equal(t, "bye", units[0].Text)
	assert.Equal(t, 2.0, units[0].Start)
	// 残留文本以段尾时间收口
	assert.Equal(t, 4.0, units[0].End)
}

func TestReconstructOutputOrderedAndWellFormed(t *testing.T) {
	r := NewReconstructor(testThreshold)

	segments := []entity.Segment{
		{
			Text:  " one two",
			Start: 0,
			End:   2,
			Tokens: []entity.Token{
				{Text: " one ", ID: 1},
				{Text: "two", ID: 2},
			},
		},
		{
			Text:  " three",
			Start: 2,
			End:   3,
			Tokens: []entity.Token{
				{Text: " three", ID: 3},
			},
		},
		{Text: "caption", Start: 3, End: 5},
	}

	units := r.Reconstruct(context.Background(), segments)

	require.NotEmpty(t, units)
	for i, u := range units {
		assert.LessOrEqual(t, u.Start, u.End, "unit %d", i)
		if i > 0 {
			assert.LessOrEqual(t, units[i-1].Start, u.Start, "unit %d out of order", i)
		}
	}
}
