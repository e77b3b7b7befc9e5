package cmd

import (
	"context"
	"fmt"
	"time"

	"clubbet/api"
	"clubbet/config"
	"clubbet/database"
	"clubbet/domain/interfaces"
	"clubbet/infrastructure"
	"clubbet/repository"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting club betting service...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, database.ConstructDatabaseURL(cfg.DatabaseURL, cfg.DatabaseName))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.MigrateUp(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Event publisher: Kafka when brokers are configured, otherwise a no-op
	var publisher interfaces.EventPublisher = infrastructure.NewNoopPublisher()
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := infrastructure.NewKafkaPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
		log.WithField("brokers", cfg.KafkaBrokers).Info("Kafka event publishing enabled")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, publisher)

	// Team name resolution: Redis cache in front of the match table when
	// configured, otherwise straight from the database
	var resolver interfaces.TeamNameResolver
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		resolver = infrastructure.NewCachedTeamNameResolver(redisClient, repository.NewMatchRepository(db))
		log.WithField("addr", cfg.RedisAddr).Info("Redis team name cache enabled")
	}

	infrastructure.StartMetricsServer(cfg.MetricsPort)

	server := api.NewServer(cfg.ListenAddr, uowFactory, resolver)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start()
	}()

	log.WithField("environment", cfg.Environment).Info("Service is running")

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}

	return nil
}
