// Package sink delivers adapter events outside the process. Every sink
// returns from OnEvent without waiting on the network; when a sink falls
// behind, events are dropped and logged.
package sink

import (
	"time"

	log "github.com/sirupsen/logrus"

	"reader.raspi/reader_r/adapter"
)

// Message is the wire form of an event for the webhook and MQTT sinks.
type Message struct {
	Event string    `json:"event"`
	Seq   uint64    `json:"seq"`
	Time  time.Time `json:"time"`
}

type stamper struct {
	seq uint64
	now func() time.Time
}

func (s *stamper) stamp(ev adapter.UnifiedInputEvent) Message {
	s.seq++
	return Message{Event: ev.String(), Seq: s.seq, Time: s.now()}
}

// Log writes each event at info level.
type Log struct{}

func (Log) OnEvent(ev adapter.UnifiedInputEvent) {
	log.WithField("event", ev).Info("input")
}

// FanOut hands each event to all sinks in order.
type FanOut []adapter.EventSink

func (f FanOut) OnEvent(ev adapter.UnifiedInputEvent) {
	for _, s := range f {
		s.OnEvent(ev)
	}
}
