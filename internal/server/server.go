package server

import (
	"context"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	co "github.com/ilnaes/gopad/internal/common"
	"github.com/ilnaes/gopad/internal/config"
	"github.com/ilnaes/gopad/internal/logger"
	"github.com/ilnaes/gopad/internal/store"
)

type entry struct {
	op  co.Op
	uid string
}

// DocMeta is the authoritative copy of one document. Every committed op
// gets the next sequence number; clients count the same sequence as their
// version.
type DocMeta struct {
	DocId string
	Text  string
	Seq   int

	Log     []entry // last committed ops, Log[len(Log)-1] has sequence Seq
	clients map[*Client]struct{}
	dirty   bool

	sync.Mutex
}

// first sequence still in the log, minus one
func (d *DocMeta) base() int {
	return d.Seq - len(d.Log)
}

type Server struct {
	docs  *xsync.MapOf[string, *DocMeta]
	store store.Store
	cfg   config.Config
	log   logger.Logger

	loadMu sync.Mutex // serializes store loads of new documents
}

func NewServer(cfg config.Config, st store.Store, log logger.Logger) *Server {
	return &Server{
		docs:  xsync.NewMapOf[string, *DocMeta](),
		store: st,
		cfg:   cfg,
		log:   log,
	}
}

// doc returns the document, loading its text from the store on first use
func (s *Server) doc(ctx context.Context, docId string) (*DocMeta, error) {
	if d, ok := s.docs.Load(docId); ok {
		return d, nil
	}

	s.loadMu.Lock()
	defer s.loadMu.Unlock()
	if d, ok := s.docs.Load(docId); ok {
		return d, nil
	}

	text, _, err := s.store.Load(ctx, docId)
	if err != nil {
		return nil, err
	}
	d := &DocMeta{
		DocId:   docId,
		Text:    text,
		Log:     []entry{},
		clients: make(map[*Client]struct{}),
	}
	s.docs.Store(docId, d)
	return d, nil
}

func (s *Server) join(d *DocMeta, c *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[c] = struct{}{}
	c.send(co.Response{
		Type:     co.HelloMsg,
		ClientId: c.uid,
		Text:     d.Text,
		Version:  d.Seq,
	})
	activeClients.Inc()
}

func (s *Server) leave(d *DocMeta, c *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[c]; ok {
		delete(d.clients, c)
		activeClients.Dec()
	}
}

// resync sends the whole text to c under a new epoch. c drops its pending ops
// when it adopts the snapshot, so submits still carrying an older epoch are
// ignored from here on.
// called while holding d's lock
func (s *Server) resync(d *DocMeta, c *Client) {
	c.epoch++
	c.send(co.Response{
		Type:    co.FullSyncMsg,
		Text:    d.Text,
		Version: d.Seq,
		Epoch:   c.epoch,
	})
	resyncsSent.Inc()
}

// handle sequences one submitted op
func (s *Server) handle(d *DocMeta, c *Client, r co.Request) {
	d.Lock()
	defer d.Unlock()

	if r.Type == co.ResyncMsg {
		s.resync(d, c)
		return
	}
	if r.Operation == nil {
		c.send(co.Response{Type: co.ErrorMsg, Error: "submit without operation", Version: d.Seq})
		return
	}
	if r.Epoch != c.epoch {
		s.log.Debug("dropped stale submit", "doc", d.DocId, "client", c.uid, "version", r.Version, "epoch", r.Epoch)
		return
	}
	if r.Version > d.Seq || r.Version < d.base() {
		s.log.Info("submit outside history", "doc", d.DocId, "client", c.uid, "version", r.Version, "seq", d.Seq)
		s.resync(d, c)
		return
	}

	// rebase against what the client had not seen, skipping its own ops
	op := *r.Operation
	for _, e := range d.Log[r.Version-d.base():] {
		if e.uid != c.uid {
			op = co.Rebase(op, e.op, co.AppliedFirst)
		}
	}

	text, err := co.Apply(d.Text, op)
	if err != nil {
		s.log.Info("submit does not apply", "doc", d.DocId, "client", c.uid, "err", err)
		s.resync(d, c)
		return
	}

	d.Text = text
	d.Seq++
	d.dirty = true
	d.Log = append(d.Log, entry{op: op, uid: c.uid})
	if over := len(d.Log) - s.cfg.HistoryLimit; over > 0 {
		d.Log = append([]entry{}, d.Log[over:]...)
	}
	opsCommitted.WithLabelValues(string(op.Type)).Inc()

	c.send(co.Response{Type: co.AckMsg, Version: d.Seq})
	for peer := range d.clients {
		if peer != c {
			peer.send(co.Response{Type: co.OperationMsg, Operation: &op, Version: d.Seq})
		}
	}
}

// Snapshot returns the current text and sequence of docId.
func (s *Server) Snapshot(ctx context.Context, docId string) (string, int, error) {
	d, err := s.doc(ctx, docId)
	if err != nil {
		return "", 0, err
	}
	d.Lock()
	defer d.Unlock()
	return d.Text, d.Seq, nil
}

// flush saves every document changed since the last flush
func (s *Server) flush(ctx context.Context) {
	s.docs.Range(func(docId string, d *DocMeta) bool {
		d.Lock()
		text, dirty := d.Text, d.dirty
		d.dirty = false
		d.Unlock()

		if !dirty {
			return true
		}
		if err := s.store.Save(ctx, docId, text); err != nil {
			s.log.Error("snapshot failed", "doc", docId, "err", err)
			d.Lock()
			d.dirty = true
			d.Unlock()
		}
		return true
	})
}

// snapshots flushes on every interval until ctx is done, then once more
func (s *Server) snapshots(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.SnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.flush(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			s.flush(flushCtx)
			cancel()
			return
		}
	}
}
