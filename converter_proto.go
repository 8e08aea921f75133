package rxws

import (
	"reflect"

	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

var protoMessageType = reflect.TypeFor[proto.Message]()

type protoJSONConverterFactory struct {
	marshal   protojson.MarshalOptions
	unmarshal protojson.UnmarshalOptions
}

// NewProtoJSONConverterFactory converts generated protobuf messages using their canonical JSON
// mapping. Unknown inbound fields are discarded.
func NewProtoJSONConverterFactory() ConverterFactory {
	return protoJSONConverterFactory{
		unmarshal: protojson.UnmarshalOptions{DiscardUnknown: true},
	}
}

func isProtoMessage(t reflect.Type) bool {
	return t.Implements(protoMessageType) ||
		(t.Kind() != reflect.Pointer && reflect.PointerTo(t).Implements(protoMessageType))
}

func (f protoJSONConverterFactory) RequestConverter(t reflect.Type) Encoder {
	if !isProtoMessage(t) {
		return nil
	}
	return EncoderFunc(func(v any) (string, error) {
		m, ok := v.(proto.Message)
		if !ok {
			return "", errors.Wrapf(ErrConversion, "%T must be sent by pointer", v)
		}
		bts, err := f.marshal.Marshal(m)
		if err != nil {
			return "", err
		}
		return string(bts), nil
	})
}

func (f protoJSONConverterFactory) ResponseConverter(t reflect.Type) Decoder {
	if !isProtoMessage(t) {
		return nil
	}
	return DecoderFunc(func(data string, v any) error {
		m, ok := v.(proto.Message)
		if !ok {
			return errors.Wrapf(ErrConversion, "%T is not a protobuf message", v)
		}
		return f.unmarshal.Unmarshal([]byte(data), m)
	})
}
