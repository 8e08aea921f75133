package rxws

import (
	"net/http"
	"reflect"

	"github.com/pkg/errors"
)

// connectionController owns the single live socket of a client. Every state change and every
// publish runs on exec, so installing a socket, flipping userRequestedClose and emitting the
// matching event are atomic relative to each other.
type connectionController struct {
	request   ConnectionRequest
	transport Transport
	bus       *EventBus
	codec     *messageCodec
	logger    logger
	exec      serialExecutor

	socket             Socket
	dialing            bool
	userRequestedClose bool
}

func newConnectionController(
	logger logger,
	request ConnectionRequest,
	transport Transport,
	bus *EventBus,
	codec *messageCodec,
) *connectionController {
	return &connectionController{
		logger:    logger.WithField("type", "connection_controller"),
		request:   request,
		transport: transport,
		bus:       bus,
		codec:     codec,
	}
}

// doConnect opens the connection, or re-notifies Open when it is already open. A connect issued
// while a dial is in flight waits for that dial's Open.
func (c *connectionController) doConnect() error {
	return c.exec.call(func() error {
		if c.socket != nil {
			c.logger.Debugln("already connected, re-notifying open")
			c.bus.Publish(Open{})
			return nil
		}

		if c.dialing || c.bus.Terminated() {
			return nil
		}

		c.logger.Debugf("opening connection to %s", c.request)
		c.dialing = true
		c.transport.Open(c.request, c)

		return nil
	})
}

func (c *connectionController) doSend(p Payload) error {
	return c.exec.call(func() error {
		if c.socket == nil {
			return ErrNoConnection
		}

		switch p.kind {
		case binaryPayload:
			if p.data == nil {
				return errors.Wrap(ErrConversion, "binary payload cannot be nil")
			}
			return c.queue(c.socket.SendBinary(p.data), p.data)
		case textPayload:
			return c.queue(c.socket.SendText(p.text), p.text)
		case valuePayload:
			return c.sendValue(p.value)
		default:
			return errors.Wrap(ErrConversion, "empty payload")
		}
	})
}

func (c *connectionController) sendValue(v any) error {
	if v == nil {
		return errors.Wrap(ErrConversion, "value payload cannot be nil")
	}

	if encoder := c.codec.converters.ResolveEncoder(reflect.TypeOf(v)); encoder != nil {
		text, err := encoder.Encode(v)
		if err != nil {
			return errors.Wrapf(ErrConversion, "cannot encode %T: %s", v, err)
		}
		return c.queue(c.socket.SendText(text), v)
	}

	if text, ok := v.(string); ok {
		return c.queue(c.socket.SendText(text), v)
	}

	return errors.Wrapf(ErrConversion, "no encoder for %T", v)
}

func (c *connectionController) queue(accepted bool, payload any) error {
	if !accepted {
		return ErrSendRejected
	}
	c.bus.Publish(QueuedMessage{Payload: payload})
	return nil
}

func (c *connectionController) doDisconnect(code int, reason string) error {
	return c.exec.call(func() error {
		if c.socket == nil {
			return ErrNoConnection
		}

		c.userRequestedClose = true
		if !c.socket.Close(code, reason) {
			c.logger.Warnf("close %d was not accepted by the transport, already closing", code)
		}

		return nil
	})
}

func (c *connectionController) setSocket(s Socket) {
	c.socket = s
	c.dialing = false
	c.userRequestedClose = false
}

func (c *connectionController) OnOpen(s Socket, resp *http.Response) {
	c.exec.submit(func() {
		c.logger.Infof("connection open to %s", c.request)
		c.setSocket(s)
		c.bus.Publish(Open{Response: resp})
	})
}

func (c *connectionController) OnTextMessage(_ Socket, text string) {
	c.exec.submit(func() {
		c.bus.Publish(newTextMessage(text, c.codec))
	})
}

func (c *connectionController) OnBinaryMessage(_ Socket, data []byte) {
	c.exec.submit(func() {
		c.bus.Publish(newBinaryMessage(data, c.codec))
	})
}

func (c *connectionController) OnClosed(_ Socket, code int, reason string) {
	c.exec.submit(func() {
		if c.userRequestedClose {
			c.logger.Infof("connection closed by user: %d %s", code, reason)
			c.bus.Publish(Closed{Code: code, Reason: reason})
			c.bus.Complete()
		} else {
			c.logger.Warnf("connection closed unexpectedly: %d %s", code, reason)
			c.bus.Fail(&CloseError{Code: code, Reason: reason})
		}
		c.setSocket(nil)
	})
}

func (c *connectionController) OnFailure(_ Socket, err error, _ *http.Response) {
	c.exec.submit(func() {
		c.logger.Errorf("connection failure: %s", err)
		c.bus.Fail(&TransportError{Err: err})
		c.setSocket(nil)
	})
}
