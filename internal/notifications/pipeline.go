package notifications

import (
	"context"
	"errors"

	"shelfkeeper/internal/shared/config"
	"shelfkeeper/pkg/logger"
)

type PipelineConfig struct {
	Kafka     config.KafkaConfig
	Email     config.EmailConfig
	QueueSize int
	Policy    RetryPolicy
}

// Pipeline wires the dispatcher to its sink. With Kafka enabled the sink is
// the topic and the consumer group sends the mail; otherwise mail is sent
// straight from the dispatcher workers.
type Pipeline struct {
	Dispatcher *Dispatcher

	publisher *KafkaPublisher
	consumer  *KafkaConsumer
	log       *logger.Logger
}

func NewPipeline(cfg PipelineConfig, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.GetDefault()
	}
	log = log.WithComponent("notifications")
	if cfg.Policy == (RetryPolicy{}) {
		cfg.Policy = DefaultRetryPolicy()
	}

	var mail Sender = NewLoggingSender(log)
	if cfg.Email.Enabled() {
		smtpSender, err := NewSMTPSender(cfg.Email)
		if err != nil {
			log.Warn("Invalid SMTP configuration, notifications will be logged", "error", err.Error())
		} else {
			mail = smtpSender
		}
	}

	p := &Pipeline{log: log}
	sink := mail
	policy := cfg.Policy

	if cfg.Kafka.Enabled {
		publisher, consumer, err := newKafkaPair(cfg, mail, log)
		if err != nil {
			log.Warn("Kafka unavailable, delivering notifications in-process", "error", err.Error())
		} else {
			p.publisher = publisher
			p.consumer = consumer
			sink = publisher
			// The sarama producer already retries.
			policy = RetryPolicy{}
		}
	}

	p.Dispatcher = NewDispatcher(sink, DispatcherOptions{
		QueueSize: cfg.QueueSize,
		Workers:   cfg.Kafka.NumConsumerWorkers,
		Policy:    policy,
		Logger:    log,
	})
	return p
}

func newKafkaPair(cfg PipelineConfig, mail Sender, log *logger.Logger) (*KafkaPublisher, *KafkaConsumer, error) {
	publisher, err := NewKafkaPublisher(cfg.Kafka, log)
	if err != nil {
		return nil, nil, err
	}
	consumer, err := NewKafkaConsumer(cfg.Kafka, mail, cfg.Policy, log)
	if err != nil {
		return nil, nil, errors.Join(err, publisher.Close())
	}
	return publisher, consumer, nil
}

// UsesKafka reports whether notifications travel through the topic.
func (p *Pipeline) UsesKafka() bool {
	return p.publisher != nil
}

func (p *Pipeline) Start(ctx context.Context) {
	if p.consumer != nil {
		p.consumer.Start(ctx)
	}
	p.Dispatcher.Start(ctx)
}

// Stop drains the dispatcher first so queued messages reach the producer
// before it closes.
func (p *Pipeline) Stop() {
	p.Dispatcher.Stop()
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			p.log.Warn("Closing Kafka producer failed", "error", err.Error())
		}
	}
	if p.consumer != nil {
		if err := p.consumer.Stop(); err != nil {
			p.log.Warn("Stopping Kafka consumers failed", "error", err.Error())
		}
	}
}
