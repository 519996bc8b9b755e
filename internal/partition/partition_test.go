package partition_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"docingest/internal/domain"
	"docingest/internal/partition"
)

func TestSplit_EmptyYieldsNoRanges(t *testing.T) {
	assert.Empty(t, partition.Split(0, 4))
}

func TestSplit_ExactlyB(t *testing.T) {
	got := partition.Split(4, 4)
	assert.Equal(t, []domain.PageRange{{Start: 0, End: 3, Index: 0}}, got)
}

func TestSplit_BPlusOne(t *testing.T) {
	got := partition.Split(5, 4)
	assert.Equal(t, []domain.PageRange{
		{Start: 0, End: 3, Index: 0},
		{Start: 4, End: 4, Index: 1},
	}, got)
}

func TestSplit_CoversRangeExactlyAndIsDisjoint(t *testing.T) {
	got := partition.Split(100, 4)
	assert.Len(t, got, 25)
	covered := 0
	for i, r := range got {
		assert.Equal(t, i, r.Index)
		assert.LessOrEqual(t, r.Start, r.End)
		covered += r.End - r.Start + 1
		if i > 0 {
			assert.Equal(t, got[i-1].End+1, r.Start)
		}
	}
	assert.Equal(t, 100, covered)
	assert.Equal(t, 99, got[len(got)-1].End)
}

func TestSplit_DeterministicIndexEqualsPosition(t *testing.T) {
	got := partition.Split(10, 3)
	for i, r := range got {
		assert.Equal(t, i, r.Index)
	}
}
