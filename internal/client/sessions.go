package client

import (
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/ilnaes/gopad/internal/logger"
)

// Sessions keeps one State per open document.
type Sessions struct {
	states *xsync.MapOf[string, *State]
	log    logger.Logger
}

func NewSessions(log logger.Logger) *Sessions {
	return &Sessions{
		states: xsync.NewMapOf[string, *State](),
		log:    log,
	}
}

// Open returns the State for docId, creating it from text if the document
// is not open yet. text is ignored for an open document.
func (s *Sessions) Open(docId, text string) (st *State, created bool) {
	st, loaded := s.states.LoadOrCompute(docId, func() *State {
		return NewState(text, s.log.With("doc", docId))
	})
	return st, !loaded
}

func (s *Sessions) Get(docId string) (*State, bool) {
	return s.states.Load(docId)
}

func (s *Sessions) Close(docId string) {
	s.states.Delete(docId)
}

func (s *Sessions) Len() int {
	return s.states.Size()
}
