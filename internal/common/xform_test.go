package common

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestXform(t *testing.T) {
	tests := []struct {
		name string
		a, b Op
		want Op
	}{
		// insert-insert
		{"ins after ins", NewInsert(3, "x"), NewInsert(1, "foo"), NewInsert(6, "x")},
		{"ins before ins", NewInsert(1, "x"), NewInsert(3, "foo"), NewInsert(1, "x")},
		{"ins tie", NewInsert(1, "X"), NewInsert(1, "Y"), NewInsert(1, "X")},
		{"ins after multibyte", NewInsert(2, "x"), NewInsert(0, "世界"), NewInsert(4, "x")},

		// insert-delete
		{"ins after del", NewInsert(5, "x"), NewDelete(1, 2), NewInsert(3, "x")},
		{"ins inside del", NewInsert(2, "x"), NewDelete(1, 3), NewInsert(1, "x")},
		{"ins at del", NewInsert(1, "x"), NewDelete(1, 3), NewInsert(1, "x")},
		{"ins before del", NewInsert(0, "x"), NewDelete(1, 3), NewInsert(0, "x")},

		// delete-insert
		{"del after ins", NewDelete(2, 2), NewInsert(1, "foo"), NewDelete(5, 2)},
		{"del at ins", NewDelete(2, 2), NewInsert(2, "foo"), NewDelete(5, 2)},
		{"del before ins", NewDelete(2, 2), NewInsert(3, "foo"), NewDelete(2, 2)},

		// delete-delete
		{"del same start shorter", NewDelete(2, 3), NewDelete(2, 1), NewDelete(2, 2)},
		{"del same start longer", NewDelete(2, 1), NewDelete(2, 3), NewDelete(2, 0)},
		{"del after del", NewDelete(6, 2), NewDelete(1, 2), NewDelete(4, 2)},
		{"del before del", NewDelete(1, 2), NewDelete(6, 2), NewDelete(1, 2)},

		// full sync
		{"against full sync", NewInsert(3, "x"), NewFullSync("zz"), NewInsert(3, "x")},
		{"full sync against ins", NewFullSync("abc"), NewInsert(0, "x"), NewFullSync("abc")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Xform(tt.a, tt.b))
		})
	}
}

func TestRebaseAppliedFirst(t *testing.T) {
	assert.Equal(t, NewInsert(2, "X"), Rebase(NewInsert(1, "X"), NewInsert(1, "Y"), AppliedFirst))
	// the tie rule only touches equal insert offsets
	assert.Equal(t, NewInsert(1, "X"), Rebase(NewInsert(1, "X"), NewInsert(2, "Y"), AppliedFirst))
	assert.Equal(t, NewDelete(3, 1), Rebase(NewDelete(2, 1), NewInsert(2, "Y"), AppliedFirst))
}

// Overlapping deletes that start at different offsets are floor clamped, not
// merged. These cases pin the resulting behavior.
func TestXformOverlappingDeletes(t *testing.T) {
	base := "abcdefghij"

	// a removes "cdef", b removes "efg"; a merge would leave delete(2,2)
	a, b := NewDelete(2, 4), NewDelete(4, 3)
	ap := Xform(a, b)
	assert.Equal(t, NewDelete(2, 4), ap)
	afterB, err := Apply(base, b)
	require.NoError(t, err)
	assert.Equal(t, "abcdhij", afterB)
	got, err := Apply(afterB, ap)
	require.NoError(t, err)
	assert.Equal(t, "abj", got, "h and i are removed too")

	// a removes "efg", b removes "cdef"; a merge would leave delete(2,1)
	a, b = NewDelete(4, 3), NewDelete(2, 4)
	ap = Xform(a, b)
	assert.Equal(t, NewDelete(2, 3), ap)
	afterB, err = Apply(base, b)
	require.NoError(t, err)
	assert.Equal(t, "abghij", afterB)
	got, err = Apply(afterB, ap)
	require.NoError(t, err)
	assert.Equal(t, "abj", got, "h and i are removed too")

	// near the end the clamped range runs off the text
	_, err = Apply("abcdh", NewDelete(2, 4))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func converge(t *testing.T, base string, a, b Op) {
	t.Helper()

	s1, err := Apply(base, a)
	require.NoError(t, err)
	s1, err = Apply(s1, Xform(b, a))
	require.NoError(t, err)

	s2, err := Apply(base, b)
	require.NoError(t, err)
	s2, err = Apply(s2, Xform(a, b))
	require.NoError(t, err)

	require.Equal(t, s1, s2, "base %q a %+v b %+v", base, a, b)
}

func TestXformConverges(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for i := 0; i < 2000; i++ {
		base := randText(r, 10)
		n := len([]rune(base))

		i1, i2 := r.Intn(n+1), r.Intn(n+1)
		if i1 != i2 {
			converge(t, base, NewInsert(i1, randText(r, 3)+"x"), NewInsert(i2, "y"))
		}

		// the insert stays outside the deleted range
		if n == 0 {
			continue
		}
		j := r.Intn(n)
		l := 1 + r.Intn(n-j)
		ins := r.Intn(n + 1)
		if ins <= j || ins >= j+l {
			converge(t, base, NewInsert(ins, "z"), NewDelete(j, l))
			converge(t, base, NewDelete(j, l), NewInsert(ins, "z"))
		}
	}
}
