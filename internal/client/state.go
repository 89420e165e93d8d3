package client

import (
	"sync"

	co "github.com/ilnaes/gopad/internal/common"
	"github.com/ilnaes/gopad/internal/logger"
)

// State is the client side of one open document. It holds the text the user
// sees, the local ops the authority has not acknowledged yet, and a counter
// of authority ops taken in (remote ops applied plus acks).
//
// Every method takes the lock, so the editing path and the delivery path may
// call in from different goroutines; they are applied one at a time.
type State struct {
	text    string
	pending []co.Op // oldest first
	version int

	log logger.Logger

	sync.Mutex
}

func NewState(text string, log logger.Logger) *State {
	return &State{
		text:    text,
		pending: []co.Op{},
		log:     log,
	}
}

// LocalEdit records the user's change to text. The op is queued and the new
// text is taken at once; ok is false when text did not change.
func (s *State) LocalEdit(text string) (sub co.Submit, ok bool) {
	s.Lock()
	defer s.Unlock()

	op, ok := co.Detect(s.text, text)
	if !ok {
		return co.Submit{}, false
	}

	s.pending = append(s.pending, op)
	s.text = text

	s.log.Debug("local edit", "type", op.Type, "pending", len(s.pending), "version", s.version)
	return co.Submit{Operation: op, Version: s.version}, true
}

// RemoteOperation takes in an op the authority has sequenced. Each pending
// op is rebased against it, in queue order, and it is applied to the text.
// On error nothing changes; a FullResync is the way back.
func (s *State) RemoteOperation(op co.Op) (string, error) {
	s.Lock()
	defer s.Unlock()

	text, err := co.Apply(s.text, op)
	if err != nil {
		s.log.Warn("remote op rejected", "type", op.Type, "err", err)
		return s.text, err
	}

	for i, p := range s.pending {
		s.pending[i] = co.Xform(p, op)
	}
	s.text = text
	s.version++

	return s.text, nil
}

// ServerAck drops the oldest pending op. The authority acknowledges in
// submission order.
func (s *State) ServerAck() error {
	s.Lock()
	defer s.Unlock()

	if len(s.pending) == 0 {
		s.log.Warn("ack with nothing pending", "version", s.version)
		return co.ErrEmptyAckQueue
	}

	s.pending[0] = co.Op{}
	s.pending = s.pending[1:]
	s.version++
	return nil
}

// FullResync replaces the text and forgets every pending op.
func (s *State) FullResync(text string) string {
	s.Lock()
	defer s.Unlock()

	s.resync(text)
	return s.text
}

// FullResyncAt is FullResync for a snapshot the authority took after version
// of its ops. The counter only moves forward.
func (s *State) FullResyncAt(text string, version int) string {
	s.Lock()
	defer s.Unlock()

	s.resync(text)
	if version > s.version {
		s.version = version
	}
	return s.text
}

func (s *State) resync(text string) {
	if n := len(s.pending); n > 0 {
		s.log.Info("resync dropped pending ops", "count", n)
	}
	s.text = text
	s.pending = []co.Op{}
}

// Reset puts s back to how NewState left it.
func (s *State) Reset(text string) {
	s.Lock()
	defer s.Unlock()

	s.text = text
	s.pending = []co.Op{}
	s.version = 0
}

func (s *State) Text() string {
	s.Lock()
	defer s.Unlock()
	return s.text
}

func (s *State) Version() int {
	s.Lock()
	defer s.Unlock()
	return s.version
}

// Pending returns a copy of the unacknowledged ops, oldest first.
func (s *State) Pending() []co.Op {
	s.Lock()
	defer s.Unlock()
	return append([]co.Op{}, s.pending...)
}
