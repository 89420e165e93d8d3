package common

import "github.com/pkg/errors"

var (
	// unknown type, missing field or negative offset
	ErrMalformedOperation = errors.New("gopad: malformed operation")

	// offsets outside the text at apply time; recover with a full resync
	ErrIndexOutOfRange = errors.New("gopad: index out of range")

	// ack with nothing pending; the transport broke protocol
	ErrEmptyAckQueue = errors.New("gopad: ack with empty pending queue")
)
