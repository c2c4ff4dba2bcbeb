package collection_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slicemaster/storefront/pkg/collection"
)

func TestMapFilterFirst(t *testing.T) {
	in := []int{1, 2, 3, 4}

	doubled := collection.Map(in, func(v int) int { return v * 2 })
	assert.Equal(t, []int{2, 4, 6, 8}, doubled)

	even := collection.Filter(in, func(v int) bool { return v%2 == 0 })
	assert.Equal(t, []int{2, 4}, even)

	got, ok := collection.First(in, func(v int) bool { return v > 2 })
	assert.True(t, ok)
	assert.Equal(t, 3, got)

	_, ok = collection.First(in, func(v int) bool { return v > 10 })
	assert.False(t, ok)
}

func TestIndexOfAndContains(t *testing.T) {
	in := []string{"a", "b", "c"}

	assert.Equal(t, 1, collection.IndexOf(in, func(v string) bool { return v == "b" }))
	assert.Equal(t, -1, collection.IndexOf(in, func(v string) bool { return v == "z" }))
	assert.True(t, collection.Contains(in, func(v string) bool { return v == "c" }))
}

func TestReduceAndSums(t *testing.T) {
	type line struct {
		price float64
		qty   int
	}
	lines := []line{{199, 2}, {249, 1}}

	subtotal := collection.Sum(lines, func(l line) float64 { return l.price * float64(l.qty) })
	assert.Equal(t, 647.0, subtotal)

	count := collection.SumInt(lines, func(l line) int { return l.qty })
	assert.Equal(t, 3, count)

	concat := collection.Reduce([]string{"a", "b"}, "", func(acc, v string) string { return acc + v })
	assert.Equal(t, "ab", concat)
}
