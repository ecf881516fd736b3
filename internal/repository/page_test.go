package repository

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageNormalize(t *testing.T) {
	cases := []struct {
		in         Page
		wantPage   int
		wantSize   int
		wantOffset int
	}{
		{Page{}, 1, DefaultPageSize, 0},
		{Page{Page: 3, PageSize: 10}, 3, 10, 20},
		{Page{Page: 2, PageSize: 500}, 2, MaxPageSize, MaxPageSize},
		{Page{Page: math.MaxInt, PageSize: MaxPageSize}, MaxPage, MaxPageSize, (MaxPage - 1) * MaxPageSize},
	}
	for _, tc := range cases {
		p := tc.in.Normalize()
		limit, offset := p.limitOffset()
		assert.Equal(t, tc.wantPage, p.Page)
		assert.Equal(t, tc.wantSize, limit)
		assert.Equal(t, tc.wantOffset, offset)
		assert.GreaterOrEqual(t, offset, 0)
	}
}
