package wire

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	inserrors "github.com/wagiedev/nmz-inspector-go/internal/errors"
)

// Request field numbers.
const (
	reqType       protowire.Number = 1
	reqProcessID  protowire.Number = 2
	reqPID        protowire.Number = 3
	reqTID        protowire.Number = 4
	reqMsgID      protowire.Number = 5
	reqEvent      protowire.Number = 6
	reqInitiation protowire.Number = 7
)

// Event field numbers.
const (
	evType       protowire.Number = 1
	evFuncCall   protowire.Number = 2
	evFuncReturn protowire.Number = 3
	evExit       protowire.Number = 4
)

// Response field numbers.
const (
	rspResult  protowire.Number = 1
	rspMsgID   protowire.Number = 2
	rspGaMsgID protowire.Number = 3
)

var errNilMessage = errors.New("nil message")

// MarshalRequest encodes req as a frame body.
func MarshalRequest(req *Request) ([]byte, error) {
	if req == nil {
		return nil, errNilMessage
	}

	b := make([]byte, 0, 64+len(req.ProcessID))
	b = appendVarint(b, reqType, int64(req.Type))
	b = appendString(b, reqProcessID, req.ProcessID)
	b = appendVarint(b, reqPID, int64(req.PID))
	b = appendVarint(b, reqTID, int64(req.TID))
	b = appendVarint(b, reqMsgID, int64(req.MsgID))

	if req.Event != nil {
		b = appendMessage(b, reqEvent, marshalEvent(req.Event))
	}

	if req.Initiation != nil {
		b = appendMessage(b, reqInitiation, appendString(nil, 1, req.Initiation.ProcessID))
	}

	return b, nil
}

func marshalEvent(ev *Event) []byte {
	b := appendVarint(nil, evType, int64(ev.Type))

	if ev.FuncCall != nil {
		b = appendMessage(b, evFuncCall, appendString(nil, 1, ev.FuncCall.Name))
	}

	if ev.FuncReturn != nil {
		b = appendMessage(b, evFuncReturn, appendString(nil, 1, ev.FuncReturn.Name))
	}

	if ev.Exit != nil {
		b = appendMessage(b, evExit, appendVarint(nil, 1, int64(ev.Exit.ExitCode)))
	}

	return b
}

// UnmarshalRequest decodes a frame body into a Request.
func UnmarshalRequest(b []byte) (*Request, error) {
	req := &Request{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case reqType:
			return consumeInt32(typ, b, (*int32)(&req.Type))
		case reqProcessID:
			return consumeString(typ, b, &req.ProcessID)
		case reqPID:
			return consumeInt32(typ, b, &req.PID)
		case reqTID:
			return consumeInt32(typ, b, &req.TID)
		case reqMsgID:
			return consumeInt32(typ, b, &req.MsgID)
		case reqEvent:
			req.Event = &Event{}

			return consumeMessage(typ, b, req.Event.unmarshal)
		case reqInitiation:
			req.Initiation = &Initiation{}

			return consumeMessage(typ, b, func(b []byte) error {
				return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
					if num == 1 {
						return consumeString(typ, b, &req.Initiation.ProcessID)
					}

					return skip(num, typ, b)
				})
			})
		default:
			return skip(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

func (ev *Event) unmarshal(b []byte) error {
	return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case evType:
			return consumeInt32(typ, b, (*int32)(&ev.Type))
		case evFuncCall:
			ev.FuncCall = &FuncCall{}

			return consumeMessage(typ, b, nameField(&ev.FuncCall.Name))
		case evFuncReturn:
			ev.FuncReturn = &FuncReturn{}

			return consumeMessage(typ, b, nameField(&ev.FuncReturn.Name))
		case evExit:
			ev.Exit = &Exit{}

			return consumeMessage(typ, b, func(b []byte) error {
				return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
					if num == 1 {
						return consumeInt32(typ, b, &ev.Exit.ExitCode)
					}

					return skip(num, typ, b)
				})
			})
		default:
			return skip(num, typ, b)
		}
	})
}

func nameField(dst *string) func([]byte) error {
	return func(b []byte) error {
		return walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
			if num == 1 {
				return consumeString(typ, b, dst)
			}

			return skip(num, typ, b)
		})
	}
}

// MarshalResponse encodes rsp as a frame body.
func MarshalResponse(rsp *Response) ([]byte, error) {
	if rsp == nil {
		return nil, errNilMessage
	}

	b := appendVarint(make([]byte, 0, 16), rspResult, int64(rsp.Result))

	if rsp.HasMsgID {
		b = appendVarint(b, rspMsgID, int64(rsp.MsgID))
	}

	if rsp.GaMsgID != nil {
		b = appendVarint(b, rspGaMsgID, int64(*rsp.GaMsgID))
	}

	return b, nil
}

// UnmarshalResponse decodes a frame body into a Response.
func UnmarshalResponse(b []byte) (*Response, error) {
	rsp := &Response{}

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case rspResult:
			return consumeInt32(typ, b, (*int32)(&rsp.Result))
		case rspMsgID:
			rsp.HasMsgID = true

			return consumeInt32(typ, b, &rsp.MsgID)
		case rspGaMsgID:
			rsp.GaMsgID = new(int32)

			return consumeInt32(typ, b, rsp.GaMsgID)
		default:
			return skip(num, typ, b)
		}
	})
	if err != nil {
		return nil, err
	}

	return rsp, nil
}

// int32 fields use the protobuf int32 encoding: negative values are sign
// extended to 64 bits.
func appendVarint(b []byte, num protowire.Number, v int64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, uint64(v))
}

func appendString(b []byte, num protowire.Number, s string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, s)
}

func appendMessage(b []byte, num protowire.Number, body []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, body)
}

type fieldFunc func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// walk iterates the fields of one message body.
func walk(b []byte, fn fieldFunc) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(protowire.ParseError(n))
		}

		b = b[n:]

		m, err := fn(num, typ, b)
		if err != nil {
			return err
		}

		b = b[m:]
	}

	return nil
}

func consumeInt32(typ protowire.Type, b []byte, dst *int32) (int, error) {
	if typ != protowire.VarintType {
		return 0, malformed(fmt.Errorf("want varint, got wire type %d", typ))
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, malformed(protowire.ParseError(n))
	}

	*dst = int32(v)

	return n, nil
}

func consumeString(typ protowire.Type, b []byte, dst *string) (int, error) {
	if typ != protowire.BytesType {
		return 0, malformed(fmt.Errorf("want bytes, got wire type %d", typ))
	}

	v, n := protowire.ConsumeString(b)
	if n < 0 {
		return 0, malformed(protowire.ParseError(n))
	}

	*dst = v

	return n, nil
}

func consumeMessage(typ protowire.Type, b []byte, fn func([]byte) error) (int, error) {
	if typ != protowire.BytesType {
		return 0, malformed(fmt.Errorf("want message, got wire type %d", typ))
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return 0, malformed(protowire.ParseError(n))
	}

	if err := fn(v); err != nil {
		return 0, err
	}

	return n, nil
}

func skip(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, malformed(protowire.ParseError(n))
	}

	return n, nil
}

func malformed(err error) error {
	if errors.Is(err, inserrors.ErrMalformedFrame) {
		return err
	}

	return fmt.Errorf("%w: %w", inserrors.ErrMalformedFrame, err)
}
