package common

import "github.com/pkg/errors"

// Apply returns s with op applied. Offsets that fall outside s are an
// ErrIndexOutOfRange; they are never clamped.
func Apply(s string, op Op) (string, error) {
	if err := op.Validate(); err != nil {
		return s, err
	}

	switch op.Type {
	case Insert:
		r := []rune(s)
		if op.Index > len(r) {
			return s, errors.Wrapf(ErrIndexOutOfRange, "insert at %d into %d", op.Index, len(r))
		}
		return string(r[:op.Index]) + op.Text + string(r[op.Index:]), nil
	case Delete:
		r := []rune(s)
		if op.Index > len(r) || op.Length > len(r)-op.Index {
			return s, errors.Wrapf(ErrIndexOutOfRange, "delete %d at %d from %d", op.Length, op.Index, len(r))
		}
		return string(r[:op.Index]) + string(r[op.Index+op.Length:]), nil
	case FullSync:
		return op.Text, nil
	}

	// unreachable past Validate
	return s, errors.Wrapf(ErrMalformedOperation, "unknown type %q", op.Type)
}
