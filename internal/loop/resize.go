package loop

import (
	"sync"

	"github.com/tomz197/nightsky/internal/sky"
)

// ResizeNotifier is an explicit registry of resize handlers. Handlers run in
// subscription order on the goroutine that calls Notify.
type ResizeNotifier struct {
	mu       sync.Mutex
	nextID   int
	handlers []resizeHandler
}

type resizeHandler struct {
	id int
	fn func()
}

// OnResize subscribes fn. The returned function unsubscribes it and may be
// called any number of times.
func (n *ResizeNotifier) OnResize(fn func()) (unsubscribe func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.nextID++
	id := n.nextID
	n.handlers = append(n.handlers, resizeHandler{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { n.remove(id) })
	}
}

func (n *ResizeNotifier) remove(id int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, h := range n.handlers {
		if h.id == id {
			n.handlers = append(n.handlers[:i], n.handlers[i+1:]...)
			return
		}
	}
}

// Len returns the number of subscribed handlers.
func (n *ResizeNotifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.handlers)
}

// Notify calls every subscribed handler.
func (n *ResizeNotifier) Notify() {
	n.mu.Lock()
	handlers := make([]func(), len(n.handlers))
	for i, h := range n.handlers {
		handlers[i] = h.fn
	}
	n.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
}

// Ensure ResizeNotifier satisfies sky.ResizeSource.
var _ sky.ResizeSource = (*ResizeNotifier)(nil)
