package server

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	co "github.com/ilnaes/gopad/internal/common"
	"github.com/ilnaes/gopad/internal/logger"
)

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
)

type Client struct {
	s    *Server
	doc  *DocMeta
	uid  string
	conn *websocket.Conn
	log  logger.Logger

	out       chan co.Response
	closeOnce sync.Once
	closed    atomic.Bool
	epoch     int // guarded by doc's lock
}

func (s *Server) NewClient(doc *DocMeta, uid string, conn *websocket.Conn) *Client {
	return &Client{
		s:    s,
		doc:  doc,
		uid:  uid,
		conn: conn,
		log:  s.log.With("doc", doc.DocId, "client", uid),
		out:  make(chan co.Response, sendBuffer),
	}
}

// send queues res without blocking. A client too slow to drain its queue is
// disconnected; it will come back with a fresh snapshot. Once closed, c
// takes nothing more.
func (c *Client) send(res co.Response) {
	if c.closed.Load() {
		return
	}
	select {
	case c.out <- res:
	default:
		if !c.closed.Swap(true) {
			c.log.Warn("send queue full, disconnecting")
		}
		c.close()
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.conn.Close()
	})
}

// writes queued responses in order until the connection fails
func (c *Client) writePump(done <-chan struct{}) {
	for {
		select {
		case res := <-c.out:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(res); err != nil {
				c.log.Debug("write failed", "err", err)
				c.close()
				return
			}
		case <-done:
			return
		}
	}
}

// interact reads requests until the connection closes
func (c *Client) interact() {
	done := make(chan struct{})
	go c.writePump(done)
	defer func() {
		close(done)
		c.s.leave(c.doc, c)
		c.close()
	}()

	c.s.join(c.doc, c)

	for {
		var m co.Request
		err := c.conn.ReadJSON(&m)
		if errors.Is(err, co.ErrMalformedOperation) {
			c.log.Info("malformed request", "err", err)
			c.send(co.Response{Type: co.ErrorMsg, Error: err.Error()})
			continue
		} else if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.log.Debug("read failed", "err", err)
			}
			return
		}

		switch m.Type {
		case co.SubmitMsg, co.ResyncMsg:
			c.s.handle(c.doc, c, m)
		default:
			c.send(co.Response{Type: co.ErrorMsg, Error: "unknown request type " + string(m.Type)})
		}
	}
}
