package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemberTypePrice(t *testing.T) {
	p, ok := Saving.Price()
	require.True(t, ok)
	assert.Equal(t, 30.0, p)

	p, ok = VIP.Price()
	require.True(t, ok)
	assert.Equal(t, 20.0, p)

	_, ok = MemberType(0).Price()
	assert.False(t, ok)
	assert.False(t, MemberType(3).Valid())
	assert.Equal(t, "MemberType(3)", MemberType(3).String())
}

func TestParseMemberType(t *testing.T) {
	cases := map[string]MemberType{
		"1":      Saving,
		" 2 ":    VIP,
		"saving": Saving,
		"VIP":    VIP,
	}
	for in, want := range cases {
		got, err := ParseMemberType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, in := range []string{"", "0", "3", "gold", "1.0"} {
		_, err := ParseMemberType(in)
		assert.Error(t, err, in)
	}
}

func TestPageNormalize(t *testing.T) {
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, Page{}.Normalize())
	assert.Equal(t, Page{Number: 1, Size: DefaultPageSize}, Page{Number: -3, Size: -1}.Normalize())
	assert.Equal(t, Page{Number: 2, Size: MaxPageSize}, Page{Number: 2, Size: 5000}.Normalize())

	assert.Equal(t, 0, Page{}.Offset())
	assert.Equal(t, 20, Page{Number: 3, Size: 10}.Offset())
}

func TestPageOffset_HugeNumberStaysNonNegative(t *testing.T) {
	p := Page{Number: math.MaxInt64 / 10, Size: 20}
	assert.GreaterOrEqual(t, p.Offset(), 0)
	assert.LessOrEqual(t, p.Normalize().Number, math.MaxInt/20)

	p = Page{Number: math.MaxInt, Size: 1}
	assert.Equal(t, math.MaxInt-1, p.Offset())
}
