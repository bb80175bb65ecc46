// Package audit consumes directory change events off the broker and records
// them in the trail.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/orielmalik/people-directory/business/broker/rabbitmq"
	redisRepo "github.com/orielmalik/people-directory/business/domain/audit/store/redis"
	"github.com/orielmalik/people-directory/business/domain/person"
	"github.com/orielmalik/people-directory/business/worker"
)

// Auditor represents the consumer side of the events queue.
type Auditor struct {
	rClient *rabbitmq.Client
	trail   *redisRepo.Repository
	worker  *worker.Worker
	logger  *slog.Logger
}

// Config represents all of the required configuration to create an auditor.
type Config struct {
	RabbitClient  *rabbitmq.Client
	Trail         *redisRepo.Repository
	Logger        *slog.Logger
	MaxConcurrent int
}

// New creates an auditor and makes sure the events queue exists.
func New(conf Config) (*Auditor, error) {
	if err := conf.RabbitClient.DeclareQueue(person.EventsQueue); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	worker, err := worker.New(conf.MaxConcurrent)
	if err != nil {
		return nil, fmt.Errorf("new worker: %w", err)
	}

	return &Auditor{
		rClient: conf.RabbitClient,
		trail:   conf.Trail,
		worker:  worker,
		logger:  conf.Logger,
	}, nil
}

// ConsumeEvents listens on the events queue and records every event it can
// parse. A malformed message is logged and dropped, it never stops the
// consumer.
func (a *Auditor) ConsumeEvents(ctx context.Context) error {
	msgs, err := a.rClient.Consumer(person.EventsQueue)
	if err != nil {
		return fmt.Errorf("consumer: %w", err)
	}

	go func() {
		for msg := range msgs {
			if err := msg.Ack(false); err != nil {
				a.logger.Error("ack", "status", "failed", "msg", err.Error())
				continue
			}

			var evt person.Event
			if err := json.Unmarshal(msg.Body, &evt); err != nil {
				a.logger.Error("parse event", "status", "failed", "msg", err.Error())
				continue
			}

			body := msg.Body
			err := a.worker.Start(ctx, func(ctx context.Context) {
				if err := a.trail.Record(ctx, body); err != nil {
					a.logger.Error("record event", "status", "failed", "msg", err.Error())
					return
				}
				a.logger.Info("event recorded", "kind", evt.Kind, "email", evt.Email)
			})
			if err != nil {
				a.logger.Error("start handler", "status", "failed", "msg", err.Error())
			}
		}
	}()

	return nil
}

// Shutdown waits for the in flight handlers to finish.
func (a *Auditor) Shutdown(ctx context.Context) error {
	return a.worker.Shutdown(ctx)
}
