package common

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Detect derives the single Op that turns s1 into s2 by trimming their
// common prefix and suffix. ok is false when the texts are equal. A change
// that both removes and adds text in the middle is not split into a delete
// and an insert; it becomes a FullSync of s2.
func Detect(s1, s2 string) (op Op, ok bool) {
	if s1 == s2 {
		return Op{}, false
	}

	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) == 0 {
		return NewInsert(0, s2), true
	}
	if len(r2) == 0 {
		return NewDelete(0, len(r1)), true
	}

	n := min(len(r1), len(r2))
	prefix := 0
	for prefix < n && r1[prefix] == r2[prefix] {
		prefix++
	}

	// suffix never reaches back into the prefix
	suffix := 0
	for suffix < len(r1)-prefix && suffix < len(r2)-prefix &&
		r1[len(r1)-1-suffix] == r2[len(r2)-1-suffix] {
		suffix++
	}

	mid1 := r1[prefix : len(r1)-suffix]
	mid2 := r2[prefix : len(r2)-suffix]

	switch {
	case len(mid1) == 0 && len(mid2) == 0:
		// only invalid UTF-8 differed
		return NewFullSync(s2), true
	case len(mid1) == 0:
		return NewInsert(prefix, string(mid2)), true
	case len(mid2) == 0:
		return NewDelete(prefix, len(mid1)), true
	default:
		return NewFullSync(s2), true
	}
}
