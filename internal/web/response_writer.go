package web

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to record the status code and
// body size, and to run hooks right before the header is sent.
type ResponseWriter struct {
	http.ResponseWriter
	beforeWrite []func()
	status      int
	size        int64
	written     bool
	mu          sync.Mutex
}

// NewResponseWriter creates a new ResponseWriter.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// OnBeforeWrite registers a hook run once, before the header is written.
// Hooks registered after that point never run.
func (w *ResponseWriter) OnBeforeWrite(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return
	}
	w.beforeWrite = append(w.beforeWrite, fn)
}

// start marks the response written and returns pending hooks.
// It reports false when the response was already started.
func (w *ResponseWriter) start(code int) ([]func(), bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.written {
		return nil, false
	}
	w.written = true
	if code != 0 {
		w.status = code
	}
	hooks := w.beforeWrite
	w.beforeWrite = nil
	return hooks, true
}

// WriteHeader sends the status code. Calls after the first are ignored.
func (w *ResponseWriter) WriteHeader(code int) {
	hooks, ok := w.start(code)
	if !ok {
		return
	}
	for _, fn := range hooks {
		fn()
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *ResponseWriter) Write(b []byte) (int, error) {
	if hooks, ok := w.start(0); ok {
		for _, fn := range hooks {
			fn()
		}
		w.ResponseWriter.WriteHeader(w.status)
	}

	n, err := w.ResponseWriter.Write(b)
	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the response status code, 200 until one is written.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Unwrap returns the underlying writer for http.ResponseController.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
