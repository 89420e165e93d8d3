package common

import (
	"encoding/json"

	"github.com/pkg/errors"
)

type OpType string

const (
	Insert   OpType = "insert"
	Delete   OpType = "delete"
	FullSync OpType = "full_sync"
)

// Op is a single edit. Type selects which of the remaining fields are
// meaningful: Index and Text for Insert, Index and Length for Delete, Text
// for FullSync. Offsets count Unicode code points, not bytes.
type Op struct {
	Type   OpType `json:"type"`
	Index  int    `json:"index,omitempty"`
	Text   string `json:"text,omitempty"`
	Length int    `json:"length,omitempty"`
}

func NewInsert(index int, text string) Op {
	return Op{Type: Insert, Index: index, Text: text}
}

func NewDelete(index, length int) Op {
	return Op{Type: Delete, Index: index, Length: length}
}

func NewFullSync(text string) Op {
	return Op{Type: FullSync, Text: text}
}

// Validate checks the fields that can be checked without a document.
func (op Op) Validate() error {
	switch op.Type {
	case Insert:
		if op.Index < 0 {
			return errors.Wrapf(ErrMalformedOperation, "insert index %d", op.Index)
		}
	case Delete:
		if op.Index < 0 || op.Length < 0 {
			return errors.Wrapf(ErrMalformedOperation, "delete index %d length %d", op.Index, op.Length)
		}
	case FullSync:
	default:
		return errors.Wrapf(ErrMalformedOperation, "unknown type %q", op.Type)
	}
	return nil
}

// wire form; pointers tell a missing field apart from a zero one
type wireOp struct {
	Type   OpType  `json:"type"`
	Index  *int    `json:"index,omitempty"`
	Text   *string `json:"text,omitempty"`
	Length *int    `json:"length,omitempty"`
}

func (op Op) MarshalJSON() ([]byte, error) {
	w := wireOp{Type: op.Type}
	switch op.Type {
	case Insert:
		w.Index, w.Text = &op.Index, &op.Text
	case Delete:
		w.Index, w.Length = &op.Index, &op.Length
	case FullSync:
		w.Text = &op.Text
	default:
		return nil, errors.Wrapf(ErrMalformedOperation, "unknown type %q", op.Type)
	}
	return json.Marshal(w)
}

func (op *Op) UnmarshalJSON(b []byte) error {
	var w wireOp
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(ErrMalformedOperation, err.Error())
	}

	res := Op{Type: w.Type}
	switch w.Type {
	case Insert:
		if w.Index == nil || w.Text == nil {
			return errors.Wrap(ErrMalformedOperation, "insert needs index and text")
		}
		res.Index, res.Text = *w.Index, *w.Text
	case Delete:
		if w.Index == nil || w.Length == nil {
			return errors.Wrap(ErrMalformedOperation, "delete needs index and length")
		}
		res.Index, res.Length = *w.Index, *w.Length
	case FullSync:
		if w.Text == nil {
			return errors.Wrap(ErrMalformedOperation, "full_sync needs text")
		}
		res.Text = *w.Text
	}
	if err := res.Validate(); err != nil {
		return err
	}

	*op = res
	return nil
}

type MsgType string

const (
	// client to server
	SubmitMsg MsgType = "submit"
	ResyncMsg MsgType = "resync"

	// server to client
	HelloMsg     MsgType = "hello"
	OperationMsg MsgType = "operation"
	AckMsg       MsgType = "ack"
	FullSyncMsg  MsgType = "full_sync"
	ErrorMsg     MsgType = "error"
)

// Submit is what a local edit yields for transmission.
type Submit struct {
	Operation Op  `json:"operation"`
	Version   int `json:"version"`
}

// Request is sent from client to server. Epoch is the epoch of the last
// full_sync the client adopted, zero before any.
type Request struct {
	Type      MsgType `json:"type"`
	Operation *Op     `json:"operation,omitempty"`
	Version   int     `json:"version"`
	Epoch     int     `json:"epoch"`
}

// Response is sent from server to client.
type Response struct {
	Type      MsgType `json:"type"`
	ClientId  string  `json:"client_id,omitempty"`
	Operation *Op     `json:"operation,omitempty"`
	Text      string  `json:"text,omitempty"`
	Version   int     `json:"version"`
	Epoch     int     `json:"epoch,omitempty"` // full_sync only
	Error     string  `json:"error,omitempty"`
}
