package rxws

import (
	"fmt"
	"net/http"
	"reflect"

	"github.com/pkg/errors"
)

type EventKind byte

const (
	OpenEvent EventKind = iota + 1
	MessageEvent
	QueuedMessageEvent
	ClosedEvent
)

func (k EventKind) Is(other EventKind) bool {
	return k == other
}

func (k EventKind) IsOpen() bool {
	return k.Is(OpenEvent)
}

func (k EventKind) IsMessage() bool {
	return k.Is(MessageEvent)
}

func (k EventKind) IsQueuedMessage() bool {
	return k.Is(QueuedMessageEvent)
}

func (k EventKind) IsClosed() bool {
	return k.Is(ClosedEvent)
}

func (k EventKind) String() string {
	switch k {
	case OpenEvent:
		return "open"
	case MessageEvent:
		return "message"
	case QueuedMessageEvent:
		return "queued_message"
	case ClosedEvent:
		return "closed"
	default:
		return "unknown"
	}
}

// Event is one of Open, Message, QueuedMessage or Closed.
type Event interface {
	Kind() EventKind
	String() string
}

const (
	CloseNormal        = 1000
	CloseInternalError = 500
)

// Open reports an established connection. Response is the handshake response, or nil when the
// event re-notifies a connection that was already open.
type Open struct {
	Response *http.Response
}

func (o Open) Kind() EventKind { return OpenEvent }

// Synthetic reports whether the event was emitted for an already open connection.
func (o Open) Synthetic() bool { return o.Response == nil }

func (o Open) String() string {
	if o.Response == nil {
		return "Open{synthetic}"
	}
	return fmt.Sprintf("Open{status=%d}", o.Response.StatusCode)
}

// messageCodec is the client's read side: the receive interceptors and the converter registry.
// Messages keep a pointer to it instead of a reference to the whole client.
type messageCodec struct {
	interceptors InterceptorChain
	converters   *ConverterRegistry
}

// Message is an inbound frame. Exactly one of text or binary data is set.
type Message struct {
	text   string
	data   []byte
	binary bool
	codec  *messageCodec
}

func newTextMessage(text string, codec *messageCodec) Message {
	return Message{text: text, codec: codec}
}

func newBinaryMessage(data []byte, codec *messageCodec) Message {
	return Message{data: data, binary: true, codec: codec}
}

func (m Message) Kind() EventKind { return MessageEvent }

func (m Message) IsBinary() bool { return m.binary }

// Text returns the text payload run through the receive interceptors. The chain is applied on
// every call. Binary messages return an empty string.
func (m Message) Text() string {
	if m.binary {
		return ""
	}
	if m.codec == nil {
		return m.text
	}
	return m.codec.interceptors.Apply(m.text)
}

// Bytes returns the binary payload untouched, or nil for text messages.
func (m Message) Bytes() []byte {
	if !m.binary {
		return nil
	}
	return m.data
}

func (m Message) textOrBytes() string {
	if m.binary {
		return string(m.data)
	}
	return m.Text()
}

// Decode converts the payload into v, which must be a non-nil pointer, using the first registered
// converter factory that supports v's element type. Binary payloads are decoded as UTF-8 text.
func (m Message) Decode(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return errors.Wrapf(ErrConversion, "decode target must be a non-nil pointer, got %T", v)
	}

	if m.codec == nil || m.codec.converters == nil {
		return errors.Wrapf(ErrConversion, "no converters registered for %s", rv.Type().Elem())
	}

	decoder := m.codec.converters.ResolveDecoder(rv.Type().Elem())
	if decoder == nil {
		return errors.Wrapf(ErrConversion, "no decoder for %s", rv.Type().Elem())
	}

	if err := decoder.Decode(m.textOrBytes(), v); err != nil {
		return errors.Wrapf(err, "cannot decode message into %s", rv.Type().Elem())
	}

	return nil
}

func (m Message) String() string {
	if m.binary {
		return fmt.Sprintf("Message{type=binary,size=%d}", len(m.data))
	}
	return fmt.Sprintf("Message{type=text,data=%s}", m.text)
}

// DecodeMessage decodes m into a new value of type T.
func DecodeMessage[T any](m Message) (T, error) {
	var out T
	err := m.Decode(&out)
	return out, err
}

// QueuedMessage acknowledges that the transport accepted a payload for transmission. Payload is
// the raw bytes for binary sends and the original value otherwise.
type QueuedMessage struct {
	Payload any
}

func (q QueuedMessage) Kind() EventKind { return QueuedMessageEvent }

func (q QueuedMessage) String() string {
	return fmt.Sprintf("QueuedMessage{payload=%v}", q.Payload)
}

// Closed reports a close requested through Disconnect.
type Closed struct {
	Code   int
	Reason string
}

func (c Closed) Kind() EventKind { return ClosedEvent }

func (c Closed) String() string {
	return fmt.Sprintf("Closed{code=%d,reason=%s}", c.Code, c.Reason)
}
