package rxws

import (
	"reflect"

	"github.com/goccy/go-json"
)

type jsonConverterFactory struct{}

// NewJSONConverterFactory converts structs, maps, arrays and non-byte slices to and from JSON.
func NewJSONConverterFactory() ConverterFactory {
	return jsonConverterFactory{}
}

func (jsonConverterFactory) RequestConverter(t reflect.Type) Encoder {
	if !structuredKind(t) {
		return nil
	}
	return EncoderFunc(func(v any) (string, error) {
		bts, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(bts), nil
	})
}

func (jsonConverterFactory) ResponseConverter(t reflect.Type) Decoder {
	if !structuredKind(t) {
		return nil
	}
	return DecoderFunc(func(data string, v any) error {
		return json.Unmarshal([]byte(data), v)
	})
}
