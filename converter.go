package rxws

import (
	"reflect"

	"github.com/pkg/errors"
)

type (
	// Encoder converts an outbound value into a text frame.
	Encoder interface {
		Encode(v any) (string, error)
	}

	// Decoder converts an inbound text frame into v, a non-nil pointer.
	Decoder interface {
		Decode(data string, v any) error
	}

	// ConverterFactory produces converters for the types it supports and nil for the rest.
	ConverterFactory interface {
		RequestConverter(t reflect.Type) Encoder
		ResponseConverter(t reflect.Type) Decoder
	}

	// ConverterRegistry resolves converters from factories in registration order. It is immutable
	// once built.
	ConverterRegistry struct {
		factories []ConverterFactory
	}

	EncoderFunc func(v any) (string, error)

	DecoderFunc func(data string, v any) error
)

func (f EncoderFunc) Encode(v any) (string, error) { return f(v) }

func (f DecoderFunc) Decode(data string, v any) error { return f(data, v) }

func NewConverterRegistry(factories ...ConverterFactory) *ConverterRegistry {
	registry := &ConverterRegistry{factories: make([]ConverterFactory, 0, len(factories))}
	for _, factory := range factories {
		if factory != nil {
			registry.factories = append(registry.factories, factory)
		}
	}
	return registry
}

// ResolveEncoder returns the first encoder produced for t, or nil.
func (r *ConverterRegistry) ResolveEncoder(t reflect.Type) Encoder {
	if t == nil {
		return nil
	}
	for _, factory := range r.factories {
		if encoder := factory.RequestConverter(t); encoder != nil {
			return encoder
		}
	}
	return nil
}

// ResolveDecoder returns the first decoder produced for t, or nil.
func (r *ConverterRegistry) ResolveDecoder(t reflect.Type) Decoder {
	if t == nil {
		return nil
	}
	for _, factory := range r.factories {
		if decoder := factory.ResponseConverter(t); decoder != nil {
			return decoder
		}
	}
	return nil
}

func (r *ConverterRegistry) Len() int {
	return len(r.factories)
}

type typedConverterFactory[T any] struct {
	encode func(T) (string, error)
	decode func(string) (T, error)
}

// NewTypedConverterFactory builds a factory for exactly T out of a pair of functions. Either
// function may be nil to support a single direction.
func NewTypedConverterFactory[T any](
	encode func(T) (string, error),
	decode func(string) (T, error),
) ConverterFactory {
	return typedConverterFactory[T]{encode: encode, decode: decode}
}

func (f typedConverterFactory[T]) RequestConverter(t reflect.Type) Encoder {
	if f.encode == nil || t != reflect.TypeFor[T]() {
		return nil
	}
	return EncoderFunc(func(v any) (string, error) {
		typed, ok := v.(T)
		if !ok {
			return "", errors.Wrapf(ErrConversion, "expected %s, got %T", t, v)
		}
		return f.encode(typed)
	})
}

func (f typedConverterFactory[T]) ResponseConverter(t reflect.Type) Decoder {
	if f.decode == nil || t != reflect.TypeFor[T]() {
		return nil
	}
	return DecoderFunc(func(data string, v any) error {
		target, ok := v.(*T)
		if !ok {
			return errors.Wrapf(ErrConversion, "expected *%s, got %T", t, v)
		}
		decoded, err := f.decode(data)
		if err != nil {
			return err
		}
		*target = decoded
		return nil
	})
}

// structuredKind reports whether t, or the type it points to, is a composite type that a
// document format can represent.
func structuredKind(t reflect.Type) bool {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Struct, reflect.Map, reflect.Array:
		return true
	case reflect.Slice:
		return t.Elem().Kind() != reflect.Uint8
	default:
		return false
	}
}
