package rxws

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type order struct {
	ID     int    `json:"id" yaml:"id"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

func TestConverterRegistry_FirstFactoryWins(t *testing.T) {
	first := NewTypedConverterFactory(
		func(o order) (string, error) { return "first:" + o.Symbol, nil },
		nil,
	)
	second := NewTypedConverterFactory(
		func(o order) (string, error) { return "second:" + o.Symbol, nil },
		nil,
	)
	registry := NewConverterRegistry(first, second)

	encoder := registry.ResolveEncoder(reflect.TypeOf(order{}))
	require.NotNil(t, encoder)

	text, err := encoder.Encode(order{Symbol: "BTC"})
	require.NoError(t, err)
	assert.Equal(t, "first:BTC", text)
}

func TestConverterRegistry_SkipsFactoriesWithoutConverter(t *testing.T) {
	ints := NewTypedConverterFactory(
		func(i int) (string, error) { return strconv.Itoa(i), nil },
		func(s string) (int, error) { return strconv.Atoi(s) },
	)
	registry := NewConverterRegistry(NewJSONConverterFactory(), ints)

	assert.NotNil(t, registry.ResolveEncoder(reflect.TypeOf(1)))
	assert.NotNil(t, registry.ResolveDecoder(reflect.TypeOf(1)))
	assert.Nil(t, registry.ResolveEncoder(reflect.TypeOf(1.5)))
	assert.Nil(t, registry.ResolveDecoder(reflect.TypeOf("")))
}

func TestConverterRegistry_IgnoresNilFactories(t *testing.T) {
	registry := NewConverterRegistry(nil, NewJSONConverterFactory(), nil)

	assert.Equal(t, 1, registry.Len())
}

func TestConverterRegistry_NilType(t *testing.T) {
	registry := NewConverterRegistry(NewJSONConverterFactory())

	assert.Nil(t, registry.ResolveEncoder(nil))
	assert.Nil(t, registry.ResolveDecoder(nil))
}

func TestJSONConverterFactory(t *testing.T) {
	factory := NewJSONConverterFactory()

	assert.Nil(t, factory.RequestConverter(reflect.TypeOf("")))
	assert.Nil(t, factory.RequestConverter(reflect.TypeOf([]byte{})))

	encoder := factory.RequestConverter(reflect.TypeOf(&order{}))
	require.NotNil(t, encoder)
	text, err := encoder.Encode(&order{ID: 7, Symbol: "ETH"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":7,"symbol":"ETH"}`, text)

	decoder := factory.ResponseConverter(reflect.TypeOf(order{}))
	require.NotNil(t, decoder)
	var got order
	require.NoError(t, decoder.Decode(`{"id":3,"symbol":"SOL"}`, &got))
	assert.Equal(t, order{ID: 3, Symbol: "SOL"}, got)
}

func TestYAMLConverterFactory_RestrictedToSamples(t *testing.T) {
	factory := NewYAMLConverterFactory(order{})

	assert.NotNil(t, factory.RequestConverter(reflect.TypeOf(order{})))
	assert.NotNil(t, factory.RequestConverter(reflect.TypeOf(&order{})))
	assert.Nil(t, factory.RequestConverter(reflect.TypeOf(map[string]int{})))

	var got order
	decoder := factory.ResponseConverter(reflect.TypeOf(got))
	require.NotNil(t, decoder)
	require.NoError(t, decoder.Decode("id: 9\nsymbol: ADA\n", &got))
	assert.Equal(t, order{ID: 9, Symbol: "ADA"}, got)
}

func TestProtoJSONConverterFactory(t *testing.T) {
	factory := NewProtoJSONConverterFactory()

	assert.Nil(t, factory.RequestConverter(reflect.TypeOf(order{})))

	encoder := factory.RequestConverter(reflect.TypeOf(wrapperspb.String("")))
	require.NotNil(t, encoder)
	text, err := encoder.Encode(wrapperspb.String("hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `"hello"`, text)

	decoder := factory.ResponseConverter(reflect.TypeOf(&wrapperspb.Int64Value{}).Elem())
	require.NotNil(t, decoder)
	got := &wrapperspb.Int64Value{}
	require.NoError(t, decoder.Decode(`"42"`, got))
	assert.Equal(t, int64(42), got.GetValue())
}

func TestTypedConverterFactory_WrongValue(t *testing.T) {
	factory := NewTypedConverterFactory(
		func(i int) (string, error) { return strconv.Itoa(i), nil },
		nil,
	)

	encoder := factory.RequestConverter(reflect.TypeOf(0))
	require.NotNil(t, encoder)
	assert.Nil(t, factory.ResponseConverter(reflect.TypeOf(0)))

	_, err := encoder.Encode("nope")
	assert.True(t, errors.Is(err, ErrConversion))
}

func TestMessageDecode(t *testing.T) {
	codec := &messageCodec{
		interceptors: InterceptorChain{TrimSpaceInterceptor()},
		converters:   NewConverterRegistry(NewJSONConverterFactory()),
	}

	got, err := DecodeMessage[order](newTextMessage("  {\"id\":1,\"symbol\":\"XRP\"}\n", codec))
	require.NoError(t, err)
	assert.Equal(t, order{ID: 1, Symbol: "XRP"}, got)

	got, err = DecodeMessage[order](newBinaryMessage([]byte(`{"id":2}`), codec))
	require.NoError(t, err)
	assert.Equal(t, order{ID: 2}, got)
}

func TestMessageDecode_NoDecoder(t *testing.T) {
	codec := &messageCodec{converters: NewConverterRegistry(NewJSONConverterFactory())}

	_, err := DecodeMessage[int](newTextMessage("1", codec))
	assert.True(t, errors.Is(err, ErrConversion))

	var target order
	err = newTextMessage("{}", codec).Decode(target)
	assert.True(t, errors.Is(err, ErrConversion))

	_, err = DecodeMessage[order](Message{text: "{}"})
	assert.True(t, errors.Is(err, ErrConversion))
}
