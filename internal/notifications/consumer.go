package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"shelfkeeper/internal/shared/config"
	"shelfkeeper/pkg/logger"

	"github.com/IBM/sarama"
)

// KafkaConsumer runs a set of consumer group members that deliver
// notifications through a mail Sender.
type KafkaConsumer struct {
	groups []sarama.ConsumerGroup
	topics []string
	sender Sender
	policy RetryPolicy
	log    *logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newConsumerConfig() *sarama.Config {
	saramaConfig := sarama.NewConfig()

	saramaConfig.Consumer.Group.Session.Timeout = 30 * time.Second
	saramaConfig.Consumer.Group.Heartbeat.Interval = 3 * time.Second
	saramaConfig.Consumer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Consumer.MaxProcessingTime = 5 * time.Minute
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	saramaConfig.Version = sarama.V2_1_0_0
	return saramaConfig
}

// NewKafkaConsumer creates NumConsumerWorkers members of the consumer group.
// Partitions are balanced across them by the broker.
func NewKafkaConsumer(cfg config.KafkaConfig, sender Sender, policy RetryPolicy, log *logger.Logger) (*KafkaConsumer, error) {
	if log == nil {
		log = logger.GetDefault()
	}
	workers := cfg.NumConsumerWorkers
	if workers <= 0 {
		workers = 1
	}

	consumer := &KafkaConsumer{
		topics: []string{cfg.NotificationTopic},
		sender: sender,
		policy: policy,
		log:    log.WithComponent("notifications.consumer"),
	}
	for i := 0; i < workers; i++ {
		group, err := sarama.NewConsumerGroup(cfg.Brokers, cfg.ConsumerGroupID, newConsumerConfig())
		if err != nil {
			consumer.closeGroups()
			return nil, fmt.Errorf("failed to create consumer group: %w", err)
		}
		consumer.groups = append(consumer.groups, group)
	}
	return consumer, nil
}

func (kc *KafkaConsumer) Start(ctx context.Context) {
	ctx, kc.cancel = context.WithCancel(ctx)

	for i, group := range kc.groups {
		handler := &consumerGroupHandler{
			workerID: i,
			sender:   kc.sender,
			policy:   kc.policy,
			log:      kc.log,
		}

		kc.wg.Add(2)
		go func(group sarama.ConsumerGroup) {
			defer kc.wg.Done()
			for err := range group.Errors() {
				kc.log.WarnWithContext(ctx, "Consumer group error", err, nil)
			}
		}(group)
		go func(group sarama.ConsumerGroup) {
			defer kc.wg.Done()
			kc.consumeLoop(ctx, group, handler)
		}(group)
	}

	kc.log.InfoWithContext(ctx, "Notification consumers started", map[string]interface{}{
		"workers": len(kc.groups),
		"topics":  kc.topics,
	})
}

// consumeLoop re-joins the group after every rebalance until ctx ends.
func (kc *KafkaConsumer) consumeLoop(ctx context.Context, group sarama.ConsumerGroup, handler *consumerGroupHandler) {
	for {
		if err := group.Consume(ctx, kc.topics, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return
			}
			kc.log.WarnWithContext(ctx, "Consume returned an error", err, map[string]interface{}{
				"worker": handler.workerID,
			})
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			return
		}
	}
}

// Stop cancels the consume loops and closes every group member.
func (kc *KafkaConsumer) Stop() error {
	if kc.cancel != nil {
		kc.cancel()
	}
	err := kc.closeGroups()
	kc.wg.Wait()
	return err
}

func (kc *KafkaConsumer) closeGroups() error {
	var errs []error
	for _, group := range kc.groups {
		if err := group.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to close consumer group: %w", errors.Join(errs...))
	}
	return nil
}

type consumerGroupHandler struct {
	workerID int
	sender   Sender
	policy   RetryPolicy
	log      *logger.Logger
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// A message that cannot be delivered after all retries is still
			// marked; redelivering it forever would stall the partition.
			if err := h.processMessage(session.Context(), message); err != nil {
				h.log.ErrorWithContext(session.Context(), "Dropping undeliverable notification", err, map[string]interface{}{
					"worker":    h.workerID,
					"partition": message.Partition,
					"offset":    message.Offset,
				})
			}
			session.MarkMessage(message, "")

		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *consumerGroupHandler) processMessage(ctx context.Context, message *sarama.ConsumerMessage) error {
	var notification EmailNotification
	if err := json.Unmarshal(message.Value, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	if err := sendWithRetry(ctx, h.sender, &notification, h.policy); err != nil {
		return err
	}

	h.log.InfoWithContext(ctx, "Notification sent", map[string]interface{}{
		"worker":          h.workerID,
		"notification_id": notification.ID.String(),
		"type":            string(notification.Type),
		"retries":         notification.RetryCount,
	})
	return nil
}
