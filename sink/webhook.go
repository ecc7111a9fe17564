package sink

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/carlmjohnson/requests"
	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/adapter"
)

const (
	webhook_queue   = 16
	webhook_timeout = 2 * time.Second
)

// Webhook POSTs each event as JSON from a single worker goroutine.
type Webhook struct {
	url     string
	queue   chan Message
	st      stamper
	wg      sync.WaitGroup
	dropped uint64
	mu      sync.Mutex
}

func NewWebhook(url string) *Webhook {
	w := &Webhook{
		url:   url,
		queue: make(chan Message, webhook_queue),
		st:    stamper{now: time.Now},
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

func (w *Webhook) OnEvent(ev adapter.UnifiedInputEvent) {
	m := w.st.stamp(ev)
	select {
	case w.queue <- m:
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		log.WithField("event", m.Event).Warn("webhook queue full, event dropped")
	}
}

func (w *Webhook) Dropped() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

func (w *Webhook) worker() {
	defer w.wg.Done()
	for m := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), webhook_timeout)
		err := requests.
			URL(w.url).
			Method(http.MethodPost).
			BodyJSON(&m).
			Fetch(ctx)
		cancel()
		if err != nil {
			log.WithError(err).WithField("event", m.Event).Warn("webhook post")
		}
	}
}

// Close drains the queue and stops the worker.
func (w *Webhook) Close() {
	close(w.queue)
	w.wg.Wait()
}
