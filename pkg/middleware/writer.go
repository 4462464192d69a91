package middleware

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
)

// flushTo forwards Flush to w when it supports streaming.
func flushTo(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

// hijackFrom forwards Hijack to w. The websocket upgrade on the change stream
// relies on every wrapping writer in the chain supporting it.
func hijackFrom(w http.ResponseWriter) (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("hijack: %w", http.ErrNotSupported)
	}
	return h.Hijack()
}
