package rxws

import "fmt"

type payloadKind byte

const (
	binaryPayload payloadKind = iota + 1
	textPayload
	valuePayload
)

// Payload is an outbound message: raw bytes, plain text or a value to be encoded by a converter.
type Payload struct {
	kind  payloadKind
	data  []byte
	text  string
	value any
}

// Binary sends data as a binary frame.
func Binary(data []byte) Payload {
	return Payload{kind: binaryPayload, data: data}
}

// Text sends text verbatim as a text frame, without consulting converters.
func Text(text string) Payload {
	return Payload{kind: textPayload, text: text}
}

// Value sends v encoded by the first converter factory that supports its type. Strings without a
// matching converter are sent verbatim.
func Value(v any) Payload {
	return Payload{kind: valuePayload, value: v}
}

func (p Payload) String() string {
	switch p.kind {
	case binaryPayload:
		return fmt.Sprintf("Payload{type=binary,size=%d}", len(p.data))
	case textPayload:
		return fmt.Sprintf("Payload{type=text,data=%s}", p.text)
	case valuePayload:
		return fmt.Sprintf("Payload{type=value,value=%T}", p.value)
	default:
		return "Payload{}"
	}
}
