// Package interrupt turns SIGINT and SIGTERM into a two-step shutdown.
//
// By default the first Ctrl+C cancels the run context. Work that can stop
// between units (a batch of videos) opts into draining with Drain: the first
// Ctrl+C then only closes the drain channel, so no new unit starts while the
// ones in progress finish. A second Ctrl+C, or SIGTERM, cancels the context.
package interrupt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrStopped indicates work was left undone after a drain request.
var ErrStopped = errors.New("stopped by interrupt")

const (
	drainMessage = "\nStopping after the videos in progress (Ctrl+C again to abort)..."
	abortMessage = "\nAborting..."
)

// Handler listens for termination signals and drives the shutdown steps.
type Handler struct {
	mu           sync.Mutex
	drainEnabled bool
	draining     bool
	aborted      bool
	stopped      bool
	drain        chan struct{}
	cancelFunc   context.CancelFunc
	done         chan struct{} // signals the listen goroutine to exit

	stderr io.Writer
}

// Options holds injectable dependencies for testing.
type Options struct {
	SigCh <-chan os.Signal
	// Stderr receives the shutdown messages. Defaults to os.Stderr.
	Stderr io.Writer
}

type handlerKey struct{}

// NewHandler creates a handler that listens for SIGINT/SIGTERM.
// The returned context carries the handler and is canceled on abort.
func NewHandler(parent context.Context) (*Handler, context.Context) {
	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return newHandler(parent, Options{SigCh: sigCh})
}

// NewHandlerWithOptions creates a handler with injectable dependencies.
// Used by tests to inject signal channels and capture messages.
func NewHandlerWithOptions(parent context.Context, opts Options) (*Handler, context.Context) {
	return newHandler(parent, opts)
}

func newHandler(parent context.Context, opts Options) (*Handler, context.Context) {
	ctx, cancel := context.WithCancel(parent)

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	h := &Handler{
		drain:      make(chan struct{}),
		cancelFunc: cancel,
		done:       make(chan struct{}),
		stderr:     stderr,
	}

	if opts.SigCh != nil {
		go h.listen(opts.SigCh)
	}

	return h, context.WithValue(ctx, handlerKey{}, h)
}

// listen handles incoming signals until Stop or abort.
func (h *Handler) listen(sigCh <-chan os.Signal) {
	for {
		select {
		case <-h.done:
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			if h.handle(sig) {
				return
			}
		}
	}
}

// handle applies one signal and reports whether the handler is finished.
func (h *Handler) handle(sig os.Signal) bool {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return true
	}

	if sig != syscall.SIGTERM && h.drainEnabled && !h.draining {
		h.draining = true
		close(h.drain)
		h.mu.Unlock()
		fmt.Fprintln(h.stderr, drainMessage)
		return false
	}

	h.aborted = true
	wasDraining := h.draining
	h.mu.Unlock()

	if wasDraining {
		fmt.Fprintln(h.stderr, abortMessage)
	}
	h.cancelFunc()
	return true
}

// Drain enables draining on the handler carried by ctx and returns a channel
// closed on the first Ctrl+C. Without a handler it returns nil, which never
// fires.
func Drain(ctx context.Context) <-chan struct{} {
	h, ok := ctx.Value(handlerKey{}).(*Handler)
	if !ok {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drainEnabled = true
	return h.drain
}

// Requested reports whether ch, as returned by Drain, has fired.
func Requested(ch <-chan struct{}) bool {
	if ch == nil {
		return false
	}
	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// Draining reports whether a drain was requested.
func (h *Handler) Draining() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.draining
}

// Aborted reports whether the run context was canceled by a signal.
func (h *Handler) Aborted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.aborted
}

// Stop releases the signal subscription. Safe to call more than once.
func (h *Handler) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	signal.Reset(syscall.SIGINT, syscall.SIGTERM)
	close(h.done)
}
