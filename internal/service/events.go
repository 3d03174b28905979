package service

import "github.com/fjod/go_cart/shop-admin/internal/domain"

// EventSink accepts events for asynchronous publication.
type EventSink interface {
	Enqueue(e domain.Event)
}

type discardSink struct{}

func (discardSink) Enqueue(domain.Event) {}

func sinkOrDiscard(s EventSink) EventSink {
	if s == nil {
		return discardSink{}
	}
	return s
}
