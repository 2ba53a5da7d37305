// Package eventbus is a small topic-based pub/sub used by the Chunk
// Pipeline to notify a CLI/HTTP frontend of progress and cancellation
// without coupling the pipeline to any particular presentation layer. It
// generalises the teacher's zone/cache/server/dnssec event topics into the
// three signals an offline batch analyzer actually emits.
package eventbus

import (
	"context"
	"sync"
)

type Topic string

const (
	// TopicProgress carries a pipeline.Progress snapshot, published every
	// progress_interval records processed.
	TopicProgress Topic = "progress"

	// TopicWarning carries a non-fatal issue as a message string as soon as
	// it's produced.
	TopicWarning Topic = "warning"

	// TopicDone carries the final pipeline.Summary once a run completes,
	// including an interrupted run. A failed run publishes nothing here.
	TopicDone Topic = "done"
)

type Event struct {
	Topic Topic
	Data  interface{}
}

type Subscriber struct {
	Ch   <-chan Event
	stop context.CancelFunc
}

type Bus struct {
	mu   sync.RWMutex
	subs map[Topic][]chan Event
	buf  int
}

func New(buf int) *Bus {
	return &Bus{subs: make(map[Topic][]chan Event), buf: buf}
}

func (b *Bus) Publish(ctx context.Context, topic Topic, data interface{}) {
	b.mu.RLock()
	chs := b.subs[topic]
	b.mu.RUnlock()
	for _, ch := range chs {
		select {
		case ch <- Event{Topic: topic, Data: data}:
		default:
			// drop if subscriber is slow
		}
	}
}

func (b *Bus) Subscribe(ctx context.Context, topic Topic) *Subscriber {
	ch := make(chan Event, b.buf)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()

	cctx, cancel := context.WithCancel(ctx)
	go func() {
		<-cctx.Done()
		b.mu.Lock()
		subs := b.subs[topic]
		for i, c := range subs {
			if c == ch {
				b.subs[topic] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		b.mu.Unlock()
		close(ch)
	}()
	return &Subscriber{Ch: ch, stop: cancel}
}

func (s *Subscriber) Close() { if s.stop != nil { s.stop() } }
