package main

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// LeaseEvent is the message published whenever the lease graph changes.
type LeaseEvent struct {
	LeaseID    uuid.UUID   `json:"lease_id"`
	PropertyID uuid.UUID   `json:"property_id"`
	OwnerID    uuid.UUID   `json:"owner_id"`
	TenantIDs  []uuid.UUID `json:"tenant_ids,omitempty"`
	EventType  string      `json:"event_type"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Lease event types
const (
	EventLeaseCreated    = "lease_created"
	EventLeaseTerminated = "lease_terminated"
	EventTenantDetached  = "tenant_detached"
)

// LeaseEventProducer publishes lease events through a buffered worker pool so
// handlers never block on the broker. A nil producer is valid and drops every
// event, which keeps the stream optional in development and tests.
type LeaseEventProducer struct {
	writer       *kafka.Writer
	eventChan    chan LeaseEvent
	workerCount  int
	shutdownChan chan struct{}
	wg           sync.WaitGroup
}

// NewLeaseEventProducer creates a producer with its worker pool started.
func NewLeaseEventProducer(broker string) (*LeaseEventProducer, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(broker),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	}

	p := &LeaseEventProducer{
		writer:       writer,
		eventChan:    make(chan LeaseEvent, 1000),
		workerCount:  4,
		shutdownChan: make(chan struct{}),
	}
	p.startWorkers()
	return p, nil
}

func (p *LeaseEventProducer) startWorkers() {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.eventWorker(i)
	}
	logrus.Infof("[kafka] started %d lease event workers", p.workerCount)
}

func (p *LeaseEventProducer) eventWorker(id int) {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.eventChan:
			if err := p.sendEventSync(event); err != nil {
				logrus.Warnf("[kafka worker %d] failed to send lease event: %v", id, err)
			}
		case <-p.shutdownChan:
			return
		}
	}
}

// SendLeaseEvent queues a lease event without blocking. Events are dropped
// when the queue is full or when the producer is disabled.
func (p *LeaseEventProducer) SendLeaseEvent(event LeaseEvent) error {
	if p == nil {
		return nil
	}
	event.OccurredAt = time.Now()
	select {
	case p.eventChan <- event:
		return nil
	default:
		return fmt.Errorf("lease event queue full, event dropped")
	}
}

func (p *LeaseEventProducer) sendEventSync(event LeaseEvent) error {
	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lease event: %w", err)
	}

	msg := kafka.Message{
		Topic: "lease-events",
		Key:   []byte(event.OwnerID.String()),
		Value: message,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "owner_id", Value: []byte(event.OwnerID.String())},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write lease event to Kafka: %w", err)
	}
	return nil
}

// Close drains the worker pool and closes the writer.
func (p *LeaseEventProducer) Close() error {
	if p == nil {
		return nil
	}
	close(p.shutdownChan)
	p.wg.Wait()
	close(p.eventChan)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close Kafka writer: %w", err)
	}
	return nil
}
