package rxws

import (
	"net/http"

	"github.com/fasthttp/websocket"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type (
	options struct {
		rawURL       string
		header       http.Header
		request      ConnectionRequest
		factories    []ConverterFactory
		interceptors []Interceptor
		transport    Transport
		logger       logger
		metrics      *Metrics
	}

	// Option configures a Client built by New.
	Option func(*options) error
)

// WithURL sets the websocket address. Plain http(s) schemes are rewritten to ws(s).
func WithURL(rawURL string) Option {
	return func(o *options) error {
		o.rawURL = rawURL
		return nil
	}
}

// WithHeader adds a handshake header. It is ignored when WithRequest is used.
func WithHeader(key, value string) Option {
	return func(o *options) error {
		if o.header == nil {
			o.header = make(http.Header)
		}
		o.header.Add(key, value)
		return nil
	}
}

// WithRequest uses a prebuilt connection request, taking precedence over WithURL.
func WithRequest(req ConnectionRequest) Option {
	return func(o *options) error {
		if req.IsZero() {
			return ErrMissingAddress
		}
		o.request = req
		return nil
	}
}

// WithConverterFactory appends a converter factory. Factories are consulted in the order they
// were added. Nil factories are ignored.
func WithConverterFactory(factory ConverterFactory) Option {
	return func(o *options) error {
		if factory != nil {
			o.factories = append(o.factories, factory)
		}
		return nil
	}
}

// WithReceiveInterceptor appends an interceptor to the inbound text chain.
func WithReceiveInterceptor(interceptor Interceptor) Option {
	return func(o *options) error {
		if interceptor == nil {
			return errors.New("receive interceptor cannot be nil")
		}
		o.interceptors = append(o.interceptors, interceptor)
		return nil
	}
}

func WithTransport(transport Transport) Option {
	return func(o *options) error {
		if transport == nil {
			return errors.New("transport cannot be nil")
		}
		o.transport = transport
		return nil
	}
}

func WithLogger(l logger) Option {
	return func(o *options) error {
		if l == nil {
			return errors.New("logger cannot be nil")
		}
		o.logger = l
		return nil
	}
}

func WithMetrics(m *Metrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// New validates the options and builds a Client. A target address is required.
func New(opts ...Option) (*Client, error) {
	o := &options{logger: noopLogger{}}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	request := o.request
	if request.IsZero() {
		var err error
		request, err = NewConnectionRequest(o.rawURL, o.header)
		if err != nil {
			return nil, err
		}
	}

	id := uuid.NewString()
	log := o.logger.WithField("client", id)

	transport := o.transport
	if transport == nil {
		transport = NewWebsocketTransport(websocket.DefaultDialer, log)
	}

	codec := &messageCodec{
		interceptors: append(InterceptorChain(nil), o.interceptors...),
		converters:   NewConverterRegistry(o.factories...),
	}
	bus := newEventBus(o.metrics)

	return &Client{
		id:         id,
		request:    request,
		bus:        bus,
		codec:      codec,
		logger:     log,
		controller: newConnectionController(log, request, transport, bus, codec),
	}, nil
}
