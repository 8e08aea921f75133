package rxws

import (
	"context"

	"github.com/pkg/errors"
)

// Client is a reactive facade over a single websocket connection. All operations share one event
// stream: Connect, Send and Disconnect attach to it, trigger their side effect, and resolve with
// the first event of the kind they wait for. The stream terminates once per client, after which
// every operation fails with the terminal value.
type Client struct {
	id         string
	request    ConnectionRequest
	bus        *EventBus
	codec      *messageCodec
	controller *connectionController
	logger     logger
}

func (c *Client) ID() string {
	return c.id
}

func (c *Client) Request() ConnectionRequest {
	return c.request
}

// Connect opens the connection and waits for Open. When the connection is already open it does
// not dial again and resolves with a synthetic Open whose Response is nil.
func (c *Client) Connect(ctx context.Context) (Open, error) {
	e, err := c.await(ctx, OpenEvent, c.controller.doConnect)
	if err != nil {
		return Open{}, err
	}
	return e.(Open), nil
}

// Send hands p to the transport and waits for its QueuedMessage acknowledgement. ErrNoConnection
// and ErrConversion are returned without touching the stream.
func (c *Client) Send(ctx context.Context, p Payload) (QueuedMessage, error) {
	e, err := c.await(ctx, QueuedMessageEvent, func() error {
		return c.controller.doSend(p)
	})
	if err != nil {
		return QueuedMessage{}, err
	}
	return e.(QueuedMessage), nil
}

// Disconnect starts a user requested close and waits for Closed. The stream completes normally
// right after.
func (c *Client) Disconnect(ctx context.Context, code int, reason string) (Closed, error) {
	e, err := c.await(ctx, ClosedEvent, func() error {
		return c.controller.doDisconnect(code, reason)
	})
	if err != nil {
		return Closed{}, err
	}
	return e.(Closed), nil
}

// Listen returns the inbound messages published from now on. It has no side effect and closing
// it never closes the connection.
func (c *Client) Listen() *MessageStream {
	return &MessageStream{sub: c.bus.Subscribe()}
}

// EventStream returns every event published from now on.
func (c *Client) EventStream() *Subscription {
	return c.bus.Subscribe()
}

func (c *Client) await(ctx context.Context, kind EventKind, action func() error) (Event, error) {
	sub, err := c.bus.SubscribeWith(action)
	if err != nil {
		return nil, err
	}
	defer sub.Close()

	e, err := sub.first(ctx, kind)
	if errors.Is(err, ErrStreamCompleted) {
		return nil, errors.Wrapf(err, "no %s event", kind)
	}
	return e, err
}

// MessageStream yields the Message events of a client's event stream.
type MessageStream struct {
	sub *Subscription
}

// Next returns the next message, ErrStreamCompleted after a user requested close, or the error
// that terminated the stream.
func (m *MessageStream) Next(ctx context.Context) (Message, error) {
	e, err := m.sub.first(ctx, MessageEvent)
	if err != nil {
		return Message{}, err
	}
	return e.(Message), nil
}

func (m *MessageStream) Close() {
	m.sub.Close()
}
