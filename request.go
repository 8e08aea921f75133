package rxws

import (
	"net/http"
	"net/url"

	"github.com/pkg/errors"
)

// ConnectionRequest is the immutable target of a client: the websocket URL and the handshake
// headers. Accessors return copies.
type ConnectionRequest struct {
	url    url.URL
	header http.Header
}

// NewConnectionRequest validates rawURL and captures a copy of header.
func NewConnectionRequest(rawURL string, header http.Header) (ConnectionRequest, error) {
	if rawURL == "" {
		return ConnectionRequest{}, ErrMissingAddress
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return ConnectionRequest{}, errors.Wrap(ErrInvalidAddress, err.Error())
	}

	switch u.Scheme {
	case "ws", "wss":
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return ConnectionRequest{}, errors.Wrapf(ErrInvalidAddress, "unsupported scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return ConnectionRequest{}, errors.Wrap(ErrInvalidAddress, "missing host")
	}

	return ConnectionRequest{url: *u, header: header.Clone()}, nil
}

func (r ConnectionRequest) URL() url.URL {
	u := r.url
	if r.url.User != nil {
		user := *r.url.User
		u.User = &user
	}
	return u
}

func (r ConnectionRequest) Header() http.Header {
	return r.header.Clone()
}

func (r ConnectionRequest) String() string {
	return r.url.String()
}

func (r ConnectionRequest) IsZero() bool {
	return r.url.Host == ""
}
