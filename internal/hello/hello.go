// Package hello serves a tiny HTTP/1.1 subset over raw connections: two
// static pages and a deliberately slow route.
package hello

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"time"

	"github.com/ygrebnov/workerpool/internal/acceptor"
)

const (
	statusOK       = "HTTP/1.1 200 OK"
	statusNotFound = "HTTP/1.1 404 NOT FOUND"

	helloPage    = "hello.html"
	notFoundPage = "404.html"

	readLimit = 1024
)

var (
	requestRoot  = []byte("GET / HTTP/1.1\r\n")
	requestSleep = []byte("GET /sleep HTTP/1.1\r\n")
)

//go:embed static/*.html
var embedded embed.FS

// DefaultPages returns the pages compiled into the binary.
func DefaultPages() fs.FS {
	sub, err := fs.Sub(embedded, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Pages returns os.DirFS(docRoot), or the embedded pages when docRoot is empty.
func Pages(docRoot string) fs.FS {
	if docRoot == "" {
		return DefaultPages()
	}
	return os.DirFS(docRoot)
}

// Handler answers one request per connection.
type Handler struct {
	pages  fs.FS
	delay  time.Duration
	logger *slog.Logger
}

var _ acceptor.ConnHandler = (*Handler)(nil)

// New returns a Handler reading pages from fsys. delay is how long the
// /sleep route waits before responding.
func New(fsys fs.FS, delay time.Duration, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{pages: fsys, delay: delay, logger: logger}
}

// ServeConn reads the request head and writes a single response. The slow
// route sleeps for the full delay regardless of ctx.
func (h *Handler) ServeConn(ctx context.Context, conn net.Conn) {
	buf := make([]byte, readLimit)
	n, err := conn.Read(buf)
	if err != nil {
		h.logger.Debug("read request", "conn_id", acceptor.ConnID(ctx), "error", err)
		return
	}
	request := buf[:n]

	status, page := h.route(request)

	body, err := fs.ReadFile(h.pages, page)
	if err != nil {
		h.logger.Error("read page", "page", page, "error", err)
		return
	}

	if _, err := conn.Write(Response(status, body)); err != nil {
		h.logger.Debug("write response", "conn_id", acceptor.ConnID(ctx), "error", err)
		return
	}
	h.logger.Debug("request served", "conn_id", acceptor.ConnID(ctx), "status", status)
}

func (h *Handler) route(request []byte) (status, page string) {
	switch {
	case bytes.HasPrefix(request, requestRoot):
		return statusOK, helloPage
	case bytes.HasPrefix(request, requestSleep):
		time.Sleep(h.delay)
		return statusOK, helloPage
	default:
		return statusNotFound, notFoundPage
	}
}

// Response formats a status line, a Content-Length header and body.
func Response(status string, body []byte) []byte {
	return fmt.Appendf(nil, "%s\r\nContent-Length: %d\r\n\r\n%s", status, len(body), body)
}
