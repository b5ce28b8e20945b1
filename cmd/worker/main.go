package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/config"
	"github.com/Domenick1991/flightops/internal/email"
	"github.com/Domenick1991/flightops/internal/kafka"
	"github.com/Domenick1991/flightops/internal/logger"
	"github.com/Domenick1991/flightops/internal/natsbus"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/storage"
	"github.com/Domenick1991/flightops/internal/worker"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	base, err := logger.New(cfg.Log)
	if err != nil {
		logrus.Fatalf("init logger: %v", err)
	}
	log := logrus.NewEntry(base).WithField("service", "flightops-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer closeDB()

	store := repository.NewStore(storage.NewGateway(db, log.WithField("component", "gateway")))
	notifier := worker.NewNotifier(email.NewSender(log), store.Audit(), log)

	// Events are published to both topics when notifications are split out,
	// so only one of them is consumed.
	topic := cfg.Events.BookingTopic
	if cfg.Events.NotificationsTopic != "" {
		topic = cfg.Events.NotificationsTopic
	}
	log = log.WithFields(logrus.Fields{"driver": cfg.Events.Driver, "topic": topic})
	log.Info("worker started")

	switch cfg.Events.Driver {
	case config.EventsKafka:
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Events.GroupID, topic, log)
		defer consumer.Close()
		err = consumer.Consume(ctx, notifier.Handle)
	case config.EventsNATS:
		conn, connErr := natsbus.Connect(cfg.NATS.URL, "flightops-worker")
		if connErr != nil {
			log.WithError(connErr).Fatal("connect nats")
		}
		defer conn.Close()
		err = natsbus.NewSubscriber(conn, cfg.NATS.Queue, log).Consume(ctx, topic, notifier.Handle)
	default:
		log.Warn("events are disabled, nothing to consume")
		<-ctx.Done()
	}

	if err != nil {
		log.WithError(err).Error("consumer stopped")
		return
	}
	log.Info("worker stopped")
}
