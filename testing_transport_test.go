package rxws

import (
	"net/http"
	"sync"

	"github.com/stretchr/testify/mock"
)

type fakeTransport struct {
	OpenFunc func(req ConnectionRequest, l Listener)

	mu       sync.Mutex
	opens    int
	listener Listener
}

func (f *fakeTransport) Open(req ConnectionRequest, l Listener) {
	f.mu.Lock()
	f.opens++
	f.listener = l
	f.mu.Unlock()

	if f.OpenFunc != nil {
		f.OpenFunc(req, l)
	}
}

func (f *fakeTransport) Opens() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opens
}

func (f *fakeTransport) Listener() Listener {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listener
}

// openImmediately answers every Open with OnOpen(socket) from the calling goroutine.
func openImmediately(socket Socket) *fakeTransport {
	return &fakeTransport{
		OpenFunc: func(_ ConnectionRequest, l Listener) {
			l.OnOpen(socket, &http.Response{StatusCode: http.StatusSwitchingProtocols})
		},
	}
}

type mockSocket struct {
	mock.Mock
}

func (m *mockSocket) SendText(text string) bool {
	args := m.Called(text)
	return args.Bool(0)
}

func (m *mockSocket) SendBinary(data []byte) bool {
	args := m.Called(data)
	return args.Bool(0)
}

func (m *mockSocket) Close(code int, reason string) bool {
	args := m.Called(code, reason)
	return args.Bool(0)
}
