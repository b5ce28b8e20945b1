// Package natsbus carries booking events over NATS subjects as an
// alternative to Kafka topics.
package natsbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

const headerEventKey = "Flightops-Event-Key"

type msgPublisher interface {
	PublishMsg(m *nats.Msg) error
}

type Publisher struct {
	conn msgPublisher
	log  *logrus.Entry
}

func NewPublisher(conn *nats.Conn, log *logrus.Entry) *Publisher {
	return newPublisher(conn, log)
}

func newPublisher(conn msgPublisher, log *logrus.Entry) *Publisher {
	return &Publisher{conn: conn, log: log.WithField("component", "nats_publisher")}
}

// Publish sends payload as JSON on the subject named by topic.
func (p *Publisher) Publish(_ context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	msg := nats.NewMsg(topic)
	msg.Header.Set(headerEventKey, key)
	msg.Data = data
	if err := p.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to NATS: %w", err)
	}

	p.log.WithFields(logrus.Fields{"subject": topic, "key": key}).Debug("message published")
	return nil
}

type Subscriber struct {
	conn  *nats.Conn
	queue string
	log   *logrus.Entry
}

func NewSubscriber(conn *nats.Conn, queue string, log *logrus.Entry) *Subscriber {
	return &Subscriber{conn: conn, queue: queue, log: log.WithField("component", "nats_subscriber")}
}

// Consume delivers messages on subject to handler until ctx is cancelled.
// Workers sharing the queue name split the stream between them.
func (s *Subscriber) Consume(ctx context.Context, subject string, handler func(context.Context, []byte) error) error {
	sub, err := s.conn.QueueSubscribe(subject, s.queue, dispatch(ctx, handler, s.log))
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	<-ctx.Done()
	return sub.Drain()
}

func dispatch(ctx context.Context, handler func(context.Context, []byte) error, log *logrus.Entry) nats.MsgHandler {
	return func(m *nats.Msg) {
		if err := handler(ctx, m.Data); err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"subject": m.Subject,
				"key":     m.Header.Get(headerEventKey),
			}).Error("handler failed")
		}
	}
}

// Connect opens a named NATS connection that keeps reconnecting.
func Connect(url, name string) (*nats.Conn, error) {
	conn, err := nats.Connect(url, nats.Name(name), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return conn, nil
}
