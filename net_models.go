package rxws

import (
	"net/http"
)

type (
	// Transport opens websocket connections. Open must not block: the outcome is reported through
	// the listener, from whatever goroutine the transport chooses.
	Transport interface {
		Open(req ConnectionRequest, listener Listener)
	}

	// Socket is a live connection owned by the transport.
	Socket interface {
		// SendText enqueues a text frame, reporting whether the transport accepted it.
		SendText(text string) bool
		// SendBinary enqueues a binary frame, reporting whether the transport accepted it.
		SendBinary(data []byte) bool
		// Close starts the close handshake. Completion is reported through Listener.OnClosed.
		Close(code int, reason string) bool
	}

	// Listener receives the transport's connection callbacks.
	Listener interface {
		OnOpen(s Socket, resp *http.Response)
		OnTextMessage(s Socket, text string)
		OnBinaryMessage(s Socket, data []byte)
		OnClosed(s Socket, code int, reason string)
		OnFailure(s Socket, err error, resp *http.Response)
	}
)
