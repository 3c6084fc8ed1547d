package wire

import "fmt"

// RequestType distinguishes the two request kinds.
type RequestType int32

const (
	// RequestEvent reports an event and waits for a decision.
	RequestEvent RequestType = 0
	// RequestInitiation is the one-time handshake sent with msg_id 0.
	RequestInitiation RequestType = 1
)

func (t RequestType) String() string {
	switch t {
	case RequestEvent:
		return "EVENT"
	case RequestInitiation:
		return "INITIATION"
	default:
		return fmt.Sprintf("RequestType(%d)", int32(t))
	}
}

// EventType is the kind of an observed event.
type EventType int32

const (
	EventFuncCall   EventType = 0
	EventFuncReturn EventType = 1
	EventExit       EventType = 2
)

func (t EventType) String() string {
	switch t {
	case EventFuncCall:
		return "FUNC_CALL"
	case EventFuncReturn:
		return "FUNC_RETURN"
	case EventExit:
		return "EXIT"
	default:
		return fmt.Sprintf("EventType(%d)", int32(t))
	}
}

// Result is the orchestrator's decision carried by a Response.
type Result int32

const (
	// ResultAck lets the waiter identified by MsgID continue.
	ResultAck Result = 0
	// ResultEnd ends inspection and releases every waiter.
	ResultEnd Result = 1
)

func (r Result) String() string {
	switch r {
	case ResultAck:
		return "ACK"
	case ResultEnd:
		return "END"
	default:
		return fmt.Sprintf("Result(%d)", int32(r))
	}
}

// Request is sent from the runtime to the orchestrator.
type Request struct {
	Type      RequestType
	ProcessID string
	PID       int32
	TID       int32
	MsgID     int32

	// Exactly one payload is set, matching Type.
	Initiation *Initiation
	Event      *Event
}

// Initiation is the handshake payload.
type Initiation struct {
	ProcessID string
}

// Event is the payload of an EVENT request.
type Event struct {
	Type       EventType
	FuncCall   *FuncCall
	FuncReturn *FuncReturn
	Exit       *Exit
}

// FuncCall names the instrumented function being entered.
type FuncCall struct {
	Name string
}

// FuncReturn names the instrumented function being left.
type FuncReturn struct {
	Name string
}

// Exit carries the exit status of a terminating process.
type Exit struct {
	ExitCode int32
}

// Response is sent from the orchestrator to the runtime.
type Response struct {
	Result Result

	// MsgID echoes the acknowledged request. HasMsgID is false for END, which
	// is broadcast.
	MsgID    int32
	HasMsgID bool

	GaMsgID *int32
}

// NewInitiation builds the handshake request. Its msg_id is always 0.
func NewInitiation(processID string, pid, tid int32) *Request {
	return &Request{
		Type:       RequestInitiation,
		ProcessID:  processID,
		PID:        pid,
		TID:        tid,
		MsgID:      0,
		Initiation: &Initiation{ProcessID: processID},
	}
}

// NewEvent builds an EVENT request.
func NewEvent(processID string, pid, tid, msgID int32, ev *Event) *Request {
	return &Request{
		Type:      RequestEvent,
		ProcessID: processID,
		PID:       pid,
		TID:       tid,
		MsgID:     msgID,
		Event:     ev,
	}
}

// FuncCallEvent returns a FUNC_CALL event for name.
func FuncCallEvent(name string) *Event {
	return &Event{Type: EventFuncCall, FuncCall: &FuncCall{Name: name}}
}

// FuncReturnEvent returns a FUNC_RETURN event for name.
func FuncReturnEvent(name string) *Event {
	return &Event{Type: EventFuncReturn, FuncReturn: &FuncReturn{Name: name}}
}

// ExitEvent returns an EXIT event.
func ExitEvent(code int32) *Event {
	return &Event{Type: EventExit, Exit: &Exit{ExitCode: code}}
}

// Ack returns an ACK response for msgID.
func Ack(msgID int32) *Response {
	return &Response{Result: ResultAck, MsgID: msgID, HasMsgID: true}
}

// End returns the broadcast END response.
func End() *Response {
	return &Response{Result: ResultEnd}
}

// FuncName returns the function name carried by the event, if any.
func (e *Event) FuncName() string {
	switch {
	case e == nil:
		return ""
	case e.FuncCall != nil:
		return e.FuncCall.Name
	case e.FuncReturn != nil:
		return e.FuncReturn.Name
	default:
		return ""
	}
}
