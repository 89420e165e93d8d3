package common

// Tie picks which of two inserts at the same offset ends up first.
type Tie int

const (
	// the op being rebased stays in front
	LocalFirst Tie = iota
	// the op already applied stays in front
	AppliedFirst
)

// Xform rebases a so that it can be applied after b has been applied. It is
// not symmetric: a is the op being moved, b the one already in the text.
// Equal insert offsets keep a in front.
func Xform(a, b Op) Op {
	return Rebase(a, b, LocalFirst)
}

// Rebase is Xform with an explicit tie rule for equal insert offsets.
//
// Only single contiguous ranges are handled. Two deletes that overlap but
// start at different offsets are floor clamped rather than merged, so a may
// end up removing more or less than it would after an interval merge.
func Rebase(a, b Op, tie Tie) Op {
	if b.Type == FullSync {
		// a is about to be superseded
		return a
	}

	switch a.Type {
	case Insert:
		switch b.Type {
		case Insert:
			if a.Index > b.Index || (a.Index == b.Index && tie == AppliedFirst) {
				a.Index += runeLen(b.Text)
			}
		case Delete:
			if b.Index < a.Index {
				a.Index = max(b.Index, a.Index-b.Length)
			}
		}
	case Delete:
		switch b.Type {
		case Insert:
			if b.Index <= a.Index {
				a.Index += runeLen(b.Text)
			}
		case Delete:
			if a.Index == b.Index {
				a.Length = max(0, a.Length-b.Length)
			} else if b.Index < a.Index {
				a.Index = max(b.Index, a.Index-b.Length)
			}
		}
	}
	return a
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
