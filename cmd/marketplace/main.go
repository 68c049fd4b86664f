package main

import (
	bookingsevents "locmaroc/internal/bookings/events"
	bookingshandler "locmaroc/internal/bookings/handler"
	bookingsrepo "locmaroc/internal/bookings/repository"
	bookingsservice "locmaroc/internal/bookings/service"
	bookingsvalidator "locmaroc/internal/bookings/validator"
	itemshandler "locmaroc/internal/items/handler"
	itemsrepo "locmaroc/internal/items/repository"
	itemsservice "locmaroc/internal/items/service"
	itemsvalidator "locmaroc/internal/items/validator"
	usershandler "locmaroc/internal/users/handler"
	usersrepo "locmaroc/internal/users/repository"
	usersservice "locmaroc/internal/users/service"
	usersvalidator "locmaroc/internal/users/validator"
	"locmaroc/pkg/app"
	"locmaroc/pkg/auth"
	"locmaroc/pkg/config"
	"locmaroc/pkg/kafka"
	kafkaconfig "locmaroc/pkg/kafka/config"
	kafkamiddleware "locmaroc/pkg/kafka/middleware"
)

const ServiceName = "marketplace"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	cfg.SetRedis()

	cfg.Log.Info("Starting marketplace service")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	guard := auth.NewGuard(issuer)

	publisher, producer := initPublisher(cfg)

	userService := usersservice.NewUserService(
		usersrepo.NewMongoUserRepository(cfg),
		issuer,
		usersvalidator.NewUserValidator(cfg.Log),
		cfg,
	)
	itemService := itemsservice.NewItemService(
		itemsrepo.NewMongoItemRepository(cfg),
		userService,
		itemsvalidator.NewItemValidator(cfg.Log),
		cfg,
	)
	bookingService := bookingsservice.NewBookingService(
		bookingsrepo.NewMongoBookingRepository(cfg),
		initLockRepository(cfg),
		itemService,
		bookingsvalidator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg)
	if producer != nil {
		serverApp.OnShutdown(func() {
			if err := producer.Close(); err != nil {
				cfg.Log.Error("Failed to close Kafka producer", "error", err)
			}
		})
	}
	serverApp.SetApp(
		usershandler.NewUserHandler(userService, guard, cfg.Log),
		itemshandler.NewItemHandler(itemService, bookingService, guard, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, guard, cfg.Log),
	)
	serverApp.Run()
}

// initLockRepository returns nil when the per-item creation lock is disabled.
func initLockRepository(cfg *config.Config) bookingsrepo.BookingLockRepository {
	if !cfg.BookingLockEnabled {
		cfg.Log.Warn("Booking creation lock disabled; concurrent overlapping requests can both succeed")
		return nil
	}
	if cfg.BookingLockBackend == config.BackendRedis {
		cfg.Log.Info("Booking creation lock enabled", "backend", config.BackendRedis)
		return bookingsrepo.NewRedisBookingLockRepository(cfg.Client.Redis)
	}
	cfg.Log.Info("Booking creation lock enabled", "backend", config.BackendMongo)
	return bookingsrepo.NewMongoBookingLockRepository(cfg)
}

func initPublisher(cfg *config.Config) (bookingsevents.Publisher, *kafka.Producer) {
	if !cfg.KafkaEnabled() {
		cfg.Log.Info("Kafka disabled, booking events are not published")
		return bookingsevents.NewNopPublisher(), nil
	}

	kafkaCfg := kafkaconfig.Load(cfg.KafkaBrokers, cfg.KafkaBookingTopic)
	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamiddleware.Logging(cfg.Log))
	producer.Use(kafkamiddleware.Metrics())

	cfg.Log.Info("Kafka producer initialized", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaBookingTopic)
	return bookingsevents.NewKafkaPublisher(producer), producer
}
