package rxws

import (
	"context"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/pkg/errors"
)

type (
	ErrAdapter func(*websocket.Conn, *http.Response, error) error

	ErrorAdapters struct {
		OnDial ErrAdapter
	}

	// WebsocketTransport is the default Transport, backed by fasthttp/websocket. Each Open dials
	// on its own goroutine which then becomes the socket's reader.
	WebsocketTransport struct {
		dialer       *websocket.Dialer
		logger       logger
		errAdapters  ErrorAdapters
		dialTimeout  time.Duration
		writeTimeout time.Duration
		pingInterval time.Duration
	}

	TransportOption func(*WebsocketTransport)
)

func WithDialTimeout(d time.Duration) TransportOption {
	return func(t *WebsocketTransport) {
		t.dialTimeout = d
	}
}

func WithWriteTimeout(d time.Duration) TransportOption {
	return func(t *WebsocketTransport) {
		t.writeTimeout = d
	}
}

// WithPingInterval makes every socket send a ping control frame at the given interval.
func WithPingInterval(d time.Duration) TransportOption {
	return func(t *WebsocketTransport) {
		t.pingInterval = d
	}
}

func WithErrorAdapters(adapters ErrorAdapters) TransportOption {
	return func(t *WebsocketTransport) {
		t.errAdapters = adapters
	}
}

func NewWebsocketTransport(
	dialer *websocket.Dialer,
	logger logger,
	opts ...TransportOption,
) *WebsocketTransport {
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}

	t := &WebsocketTransport{
		dialer:       dialer,
		logger:       logger.WithField("net", "ws_transport"),
		writeTimeout: time.Second,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

func (t *WebsocketTransport) Open(req ConnectionRequest, listener Listener) {
	go t.open(req, listener)
}

func (t *WebsocketTransport) open(req ConnectionRequest, listener Listener) {
	ctx := context.Background()
	if t.dialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.dialTimeout)
		defer cancel()
	}

	u := req.URL()
	conn, resp, err := t.dialer.DialContext(ctx, u.String(), req.Header())

	if err = t.handleDialError(conn, resp, err); err != nil {
		t.logger.Errorf("connection err to %s: %s", u.String(), err)
		listener.OnFailure(nil, err, resp)
		return
	}

	t.logger.Debugf("success opening connection to %s", u.String())

	s := newWsSocket(conn, t.logger, t.writeTimeout)
	listener.OnOpen(s, resp)

	if t.pingInterval > 0 {
		go s.keepAlive(t.pingInterval)
	}

	s.read(listener)
}

func (t *WebsocketTransport) handleDialError(conn *websocket.Conn, resp *http.Response, err error) error {
	if t.errAdapters.OnDial != nil {
		err = t.errAdapters.OnDial(conn, resp, err)
		if err == nil && conn == nil {
			return ErrCannotConnect
		}
		return err
	}

	// 1. Check HTTP errors first
	var msg string

	if resp != nil {
		if resp.Body != nil {
			bts, err := io.ReadAll(resp.Body)
			if err == nil {
				msg = string(bts)
			}
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return errors.Wrap(ErrRateLimit, msg)
		}
	}

	// 2. Network errors
	if err != nil {
		return errors.Wrap(ErrCannotConnect, err.Error())
	}

	return nil
}

// wsSocket is the Socket handed to listeners by WebsocketTransport.
type wsSocket struct {
	conn         *websocket.Conn
	logger       logger
	writeTimeout time.Duration
	writeMu      sync.Mutex
	closeSent    atomic.Bool
	closeC       chan struct{}
	closeOnce    sync.Once
}

func newWsSocket(conn *websocket.Conn, logger logger, writeTimeout time.Duration) *wsSocket {
	return &wsSocket{
		conn:         conn,
		logger:       logger,
		writeTimeout: writeTimeout,
		closeC:       make(chan struct{}),
	}
}

func (s *wsSocket) SendText(text string) bool {
	s.logger.Debugf("=> [DATA] %s", text)
	return s.write(websocket.TextMessage, []byte(text))
}

func (s *wsSocket) SendBinary(data []byte) bool {
	s.logger.Debugln("=> [BIN]")
	return s.write(websocket.BinaryMessage, data)
}

func (s *wsSocket) write(messageType int, data []byte) bool {
	if s.closeSent.Load() {
		return false
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	if err := s.conn.WriteMessage(messageType, data); err != nil {
		s.logger.Errorf("error occurred on websocket write: %s", err)
		return false
	}
	return true
}

// Close sends the close frame. The peer's reply ends the read loop, which reports OnClosed.
func (s *wsSocket) Close(code int, reason string) bool {
	if !s.closeSent.CompareAndSwap(false, true) {
		return false
	}

	s.logger.Debugf("=> [CLOSE] %d %s", code, reason)
	deadline := time.Now().Add(s.writeTimeout)
	if err := s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline); err != nil {
		s.logger.Errorf("cannot send close frame: %s", err)
		s.shutdown()
		return false
	}
	return true
}

func (s *wsSocket) keepAlive(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.closeC:
			return
		case <-ticker.C:
			s.logger.Debugln("=> [PING]")
			deadline := time.Now().Add(s.writeTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Warnf("cannot send ping: %s", err)
			}
		}
	}
}

func (s *wsSocket) read(listener Listener) {
	defer s.shutdown()

	s.conn.SetCloseHandler(func(code int, text string) error {
		s.logger.Debugf("<= [CLOSE] %d %s", code, text)
		if s.closeSent.CompareAndSwap(false, true) {
			deadline := time.Now().Add(s.writeTimeout)
			_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, ""), deadline)
		}
		return nil
	})

	for {
		messageType, bts, err := s.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if errors.As(err, &closeErr) {
				listener.OnClosed(s, closeErr.Code, closeErr.Text)
				return
			}

			s.logger.Errorf("error occurred on websocket read: %s", err)
			listener.OnFailure(s, errors.Wrap(ErrConnectionClosed, err.Error()), nil)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			s.logger.Debugln("<= [BIN]")
			listener.OnBinaryMessage(s, bts)
		default:
			s.logger.Debugf("<= [DATA] %s", bts)
			listener.OnTextMessage(s, string(bts))
		}
	}
}

func (s *wsSocket) shutdown() {
	s.closeOnce.Do(func() {
		close(s.closeC)
		_ = s.conn.Close()
	})
}
