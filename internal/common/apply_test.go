package common

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOps(t *testing.T) {
	tests := []struct {
		s    string
		op   Op
		want string
	}{
		{"hello", NewInsert(5, " world"), "hello world"},
		{"hello", NewInsert(0, ">"), ">hello"},
		{"", NewInsert(0, "abc"), "abc"},
		{"hello world", NewDelete(5, 6), "hello"},
		{"abc", NewDelete(0, 3), ""},
		{"abc", NewDelete(1, 0), "abc"},
		{"世界", NewDelete(0, 1), "界"},
		{"anything", NewFullSync("else"), "else"},
		{"anything", NewFullSync(""), ""},
	}

	for _, tt := range tests {
		got, err := Apply(tt.s, tt.op)
		require.NoError(t, err, "%+v", tt.op)
		assert.Equal(t, tt.want, got, "%+v", tt.op)
	}
}

func TestApplyOutOfRange(t *testing.T) {
	for _, op := range []Op{
		NewInsert(4, "x"),
		NewDelete(2, 2),
		NewDelete(4, 0),
		NewDelete(1, math.MaxInt),
		NewDelete(math.MaxInt, 1),
		NewInsert(math.MaxInt, "x"),
	} {
		got, err := Apply("abc", op)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "%+v", op)
		assert.Equal(t, "abc", got)
	}
}

func TestApplyMalformed(t *testing.T) {
	for _, op := range []Op{
		{Type: "retain"},
		{},
		NewInsert(-1, "x"),
		NewDelete(0, -1),
	} {
		_, err := Apply("abc", op)
		assert.ErrorIs(t, err, ErrMalformedOperation, "%+v", op)
	}
}

func TestApplyHugeLengthFromWire(t *testing.T) {
	var op Op
	require.NoError(t, json.Unmarshal([]byte(`{"type":"delete","index":1,"length":9223372036854775807}`), &op))

	got, err := Apply("abc", op)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.Equal(t, "abc", got)
}
