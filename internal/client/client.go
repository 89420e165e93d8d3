package client

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	co "github.com/ilnaes/gopad/internal/common"
	"github.com/ilnaes/gopad/internal/logger"
)

// Client ties the State of one document to an authority connection. Inbound
// messages drive the State; Edit sends local changes out.
type Client struct {
	DocId string
	Id    string // assigned by the authority
	State *State

	conn   *websocket.Conn
	onText func(string)
	log    logger.Logger

	wmu   sync.Mutex // orders LocalEdit and its write against other writes
	epoch int        // of the last full_sync adopted; guarded by wmu
}

// Dial connects to the authority at url and opens docId in sessions with the
// snapshot the authority greets with. onText, if set, is called with the new
// text after every change that did not come from Edit.
func Dial(ctx context.Context, url, docId string, sessions *Sessions, onText func(string), log logger.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	var hello co.Response
	if err := conn.ReadJSON(&hello); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "read hello")
	}
	if hello.Type != co.HelloMsg {
		conn.Close()
		return nil, errors.Errorf("expected hello, got %q", hello.Type)
	}

	st, _ := sessions.Open(docId, hello.Text)
	st.FullResyncAt(hello.Text, hello.Version)

	if onText == nil {
		onText = func(string) {}
	}
	return &Client{
		DocId:  docId,
		Id:     hello.ClientId,
		State:  st,
		conn:   conn,
		onText: onText,
		log:    log.With("doc", docId, "client", hello.ClientId),
	}, nil
}

func (c *Client) write(req co.Request) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	req.Epoch = c.epoch
	return c.conn.WriteJSON(req)
}

// Edit hands the editor's current text to the State and submits the
// resulting op, if any.
func (c *Client) Edit(text string) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	sub, ok := c.State.LocalEdit(text)
	if !ok {
		return nil
	}
	op := sub.Operation
	return c.conn.WriteJSON(co.Request{
		Type:      co.SubmitMsg,
		Operation: &op,
		Version:   sub.Version,
		Epoch:     c.epoch,
	})
}

// handle applies one authority message to the State
func (c *Client) handle(res co.Response) error {
	switch res.Type {
	case co.OperationMsg:
		if res.Operation == nil {
			return errors.Wrap(co.ErrMalformedOperation, "operation message without op")
		}
		text, err := c.State.RemoteOperation(*res.Operation)
		if errors.Is(err, co.ErrIndexOutOfRange) {
			// we have drifted from the authority
			return c.write(co.Request{Type: co.ResyncMsg, Version: c.State.Version()})
		} else if err != nil {
			return err
		}
		c.onText(text)
	case co.AckMsg:
		// an empty queue is logged by the State and otherwise harmless
		_ = c.State.ServerAck()
	case co.FullSyncMsg:
		// pending ops go away with the epoch they were sent under
		c.wmu.Lock()
		text := c.State.FullResyncAt(res.Text, res.Version)
		c.epoch = res.Epoch
		c.wmu.Unlock()
		c.onText(text)
	case co.ErrorMsg:
		c.log.Warn("authority error", "err", res.Error)
	default:
		c.log.Warn("unknown message", "type", res.Type)
	}
	return nil
}

// Run reads authority messages until ctx is done or the connection fails.
func (c *Client) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			c.conn.Close()
		case <-done:
		}
	}()

	for {
		var res co.Response
		if err := c.conn.ReadJSON(&res); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, co.ErrMalformedOperation) {
				c.log.Warn("dropped malformed message", "err", err)
				continue
			}
			return errors.Wrap(err, "read")
		}

		if err := c.handle(res); err != nil {
			return err
		}
	}
}

func (c *Client) Close() error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteMessage(websocket.CloseMessage, msg)
	return c.conn.Close()
}
