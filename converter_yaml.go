package rxws

import (
	"reflect"

	"github.com/goccy/go-yaml"
)

type yamlConverterFactory struct {
	types map[reflect.Type]struct{}
}

// NewYAMLConverterFactory converts values of the types of the given samples to and from YAML.
// With no samples every structured type is accepted.
func NewYAMLConverterFactory(samples ...any) ConverterFactory {
	f := yamlConverterFactory{types: make(map[reflect.Type]struct{}, len(samples))}
	for _, sample := range samples {
		t := reflect.TypeOf(sample)
		if t == nil {
			continue
		}
		if t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		f.types[t] = struct{}{}
	}
	return f
}

func (f yamlConverterFactory) supports(t reflect.Type) bool {
	if len(f.types) == 0 {
		return structuredKind(t)
	}
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	_, ok := f.types[t]
	return ok
}

func (f yamlConverterFactory) RequestConverter(t reflect.Type) Encoder {
	if !f.supports(t) {
		return nil
	}
	return EncoderFunc(func(v any) (string, error) {
		bts, err := yaml.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(bts), nil
	})
}

func (f yamlConverterFactory) ResponseConverter(t reflect.Type) Decoder {
	if !f.supports(t) {
		return nil
	}
	return DecoderFunc(func(data string, v any) error {
		return yaml.Unmarshal([]byte(data), v)
	})
}
