package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculate(t *testing.T) {
	cases := []struct {
		page, size       int
		offset, limit    int
	}{
		{1, 10, 0, 10},
		{3, 10, 20, 10},
		{0, 5, 0, 5},
		{2, 0, DefaultPageSize, DefaultPageSize},
		{1, MaxPageSize + 1, 0, DefaultPageSize},
	}
	for _, tc := range cases {
		off, lim := Calculate(tc.page, tc.size)
		assert.Equal(t, tc.offset, off, "page=%d size=%d", tc.page, tc.size)
		assert.Equal(t, tc.limit, lim, "page=%d size=%d", tc.page, tc.size)
	}
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, ParseIntDefault("7", 1))
	assert.Equal(t, 1, ParseIntDefault("x", 1))
	assert.Equal(t, 1, ParseIntDefault("", 1))

	id, ok := ParseUint("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc"} {
		_, ok := ParseUint(bad)
		assert.False(t, ok, bad)
	}
}

func TestMeta(t *testing.T) {
	m := Meta(2, 10, 10, 25)
	assert.Equal(t, int64(3), m["total_pages"])
	assert.Equal(t, true, m["has_prev"])
	assert.Equal(t, true, m["has_next"])

	m = Meta(3, 20, 10, 25)
	assert.Equal(t, false, m["has_next"])
}
