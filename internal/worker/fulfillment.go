package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"

	"github.com/flicky/green-store/internal/model"
	"github.com/flicky/green-store/internal/service"
)

const idempotencyTTL = 24 * time.Hour

// Fulfiller is the part of the order service the worker drives.
type Fulfiller interface {
	CompleteOrder(ctx context.Context, orderID uuid.UUID) (*model.Order, error)
}

type FulfillmentWorker struct {
	channel      *amqp.Channel
	fulfiller    Fulfiller
	redisClient  *redis.Client
	autoComplete bool
	log          *slog.Logger
	done         chan struct{}
}

func NewFulfillmentWorker(
	ch *amqp.Channel,
	fulfiller Fulfiller,
	redisClient *redis.Client,
	autoComplete bool,
	log *slog.Logger,
) *FulfillmentWorker {
	return &FulfillmentWorker{
		channel:      ch,
		fulfiller:    fulfiller,
		redisClient:  redisClient,
		autoComplete: autoComplete,
		log:          log,
		done:         make(chan struct{}),
	}
}

func (w *FulfillmentWorker) Start(ctx context.Context) error {
	msgs, err := w.channel.Consume(orderQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				w.processMessage(ctx, msg)
			case <-w.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	w.log.Info("fulfillment worker started", "auto_complete", w.autoComplete)
	return nil
}

func (w *FulfillmentWorker) Stop() { close(w.done) }

func (w *FulfillmentWorker) processMessage(ctx context.Context, msg amqp.Delivery) {
	var event model.OrderEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil || event.OrderID == uuid.Nil {
		w.log.Error("malformed order event", "error", err, "body", string(msg.Body))
		_ = msg.Nack(false, false)
		return
	}

	log := w.log.With("type", event.Type, "order_id", event.OrderID, "user_id", event.UserID)

	key := idempotencyKey(event)
	if w.redisClient != nil {
		exists, err := w.redisClient.Exists(ctx, key).Result()
		if err != nil {
			log.Error("check idempotency key", "error", err)
			_ = msg.Nack(false, true)
			return
		}
		if exists > 0 {
			log.Info("order event already handled, skipping")
			_ = msg.Ack(false)
			return
		}
	}

	if err := w.handle(ctx, event); err != nil {
		// One retry, then the DLQ.
		log.Error("handle order event failed", "error", err, "redelivered", msg.Redelivered)
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}

	if w.redisClient != nil {
		if err := w.redisClient.Set(ctx, key, "1", idempotencyTTL).Err(); err != nil {
			log.Error("set idempotency key", "error", err)
		}
	}

	_ = msg.Ack(false)
	log.Info("order event handled")
}

func (w *FulfillmentWorker) handle(ctx context.Context, event model.OrderEvent) error {
	if event.Type != model.OrderEventCreated || !w.autoComplete {
		return nil
	}

	_, err := w.fulfiller.CompleteOrder(ctx, event.OrderID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, service.ErrOrderNotPending), errors.Is(err, service.ErrOrderNotFound):
		w.log.Info("order no longer pending", "order_id", event.OrderID)
		return nil
	default:
		return fmt.Errorf("complete order: %w", err)
	}
}

func idempotencyKey(event model.OrderEvent) string {
	return "order_event:" + event.OrderID.String() + ":" + string(event.Type)
}
