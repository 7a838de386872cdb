package main

import (
	"fmt"

	"go.uber.org/zap"

	"go-shop/pkg/config"
	"go-shop/pkg/events"
	"go-shop/pkg/kafka"
	"go-shop/pkg/logger"
	"go-shop/pkg/rabbitmq"
)

// broker holds one publisher per event stream. rabbit is set only for the
// RabbitMQ broker, which also feeds the fulfillment consumer.
type broker struct {
	customers events.Publisher
	catalog   events.Publisher
	orders    events.Publisher

	rabbit  *rabbitmq.Connection
	closers []func() error
}

func newBroker(cfg *config.Config, log *logger.Logger) (*broker, error) {
	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		return newRabbitBroker(cfg, log)
	case config.BrokerKafka:
		return newKafkaBroker(cfg, log)
	case config.BrokerNone:
		log.Warn("events broker disabled, events will be dropped")
		return &broker{customers: events.Discard{}, catalog: events.Discard{}, orders: events.Discard{}}, nil
	default:
		return nil, fmt.Errorf("unsupported events broker %q", cfg.EventsBroker)
	}
}

func newRabbitBroker(cfg *config.Config, log *logger.Logger) (*broker, error) {
	conn, err := rabbitmq.NewConnection(cfg.RabbitMQURL, log)
	if err != nil {
		return nil, err
	}
	b := &broker{rabbit: conn, closers: []func() error{conn.Close}}

	publishers := make(map[string]events.Publisher, 3)
	for _, exchange := range []string{events.ExchangeCustomers, events.ExchangeCatalog, events.ExchangeOrders} {
		pub, err := rabbitmq.NewPublisher(conn, exchange, log)
		if err != nil {
			b.Close()
			return nil, err
		}
		publishers[exchange] = pub
	}

	b.customers = publishers[events.ExchangeCustomers]
	b.catalog = publishers[events.ExchangeCatalog]
	b.orders = publishers[events.ExchangeOrders]
	return b, nil
}

func newKafkaBroker(cfg *config.Config, log *logger.Logger) (*broker, error) {
	b := &broker{}
	topic := func(name string) (events.Publisher, error) {
		pub, err := kafka.NewPublisher(cfg.KafkaBrokerList(), name, log)
		if err != nil {
			return nil, err
		}
		b.closers = append(b.closers, pub.Close)
		return pub, nil
	}

	var err error
	if b.customers, err = topic(events.ExchangeCustomers); err != nil {
		return nil, err
	}
	if b.catalog, err = topic(events.ExchangeCatalog); err != nil {
		b.Close()
		return nil, err
	}
	if b.orders, err = topic(events.ExchangeOrders); err != nil {
		b.Close()
		return nil, err
	}

	log.Info("publishing events to kafka", zap.Strings("brokers", cfg.KafkaBrokerList()))
	return b, nil
}

// Close releases publishers and connections in reverse order
func (b *broker) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		_ = b.closers[i]()
	}
	b.closers = nil
}
