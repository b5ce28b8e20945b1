package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/Domenick1991/flightops/config"
	"github.com/Domenick1991/flightops/internal/bootstrap"
	"github.com/Domenick1991/flightops/internal/kafka"
	"github.com/Domenick1991/flightops/internal/logger"
	"github.com/Domenick1991/flightops/internal/natsbus"
	"github.com/Domenick1991/flightops/internal/repository"
	"github.com/Domenick1991/flightops/internal/service/booking"
	"github.com/Domenick1991/flightops/internal/service/flights"
	"github.com/Domenick1991/flightops/internal/service/passengers"
	"github.com/Domenick1991/flightops/internal/storage"
)

type publisher interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

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
	log := logrus.NewEntry(base).WithField("service", "flightops-app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, closeDB, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("open database")
	}
	defer closeDB()

	if cfg.Database.AutoMigrate {
		if err := storage.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("migrate database")
		}
		log.Info("schema applied")
	}

	events, closeEvents, err := newPublisher(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("init events")
	}
	defer closeEvents()

	gateway := storage.NewGateway(db, log.WithField("component", "gateway"))
	store := repository.NewStore(gateway)

	bookingService := booking.NewBookingService(
		store,
		events,
		cfg.Events.BookingTopic,
		booking.WithNotificationsTopic(cfg.Events.NotificationsTopic),
		booking.WithStoredProcedure(cfg.Booking.StoredProcedureEnabled()),
		booking.WithLogger(log),
	)
	flightService := flights.NewFlightService(store.Flights(), events, cfg.Events.BookingTopic, log)
	passengerService := passengers.NewPassengerService(store.Passengers())

	err = bootstrap.Run(ctx, cfg, bootstrap.Services{
		Bookings:   bookingService,
		Flights:    flightService,
		Passengers: passengerService,
		Health:     gateway,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("server error")
	}
}

// newPublisher returns nil when events are disabled; the services then skip
// publishing.
func newPublisher(ctx context.Context, cfg *config.Config, log *logrus.Entry) (publisher, func(), error) {
	switch cfg.Events.Driver {
	case config.EventsKafka:
		producer := kafka.NewProducer(cfg.Kafka.Brokers, log)
		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka is not reachable yet, events will be retried by the writer")
		}
		return producer, func() { _ = producer.Close() }, nil
	case config.EventsNATS:
		conn, err := natsbus.Connect(cfg.NATS.URL, "flightops-app")
		if err != nil {
			return nil, nil, err
		}
		return natsbus.NewPublisher(conn, log), conn.Close, nil
	case config.EventsNone:
		return nil, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unsupported events driver %q", cfg.Events.Driver)
	}
}
