// Worker consumes telemetry event envelopes from Kafka and archives them.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID, and at least one of DATABASE_URL
// (Postgres archive) or LOKI_URL (Loki push). APPINSIGHTS_KEY is required by config
// but unused by the worker; set DISABLE_TELEMETRY=1 to skip it.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"modtel/internal/config"
	"modtel/internal/db"
	"modtel/internal/telemetry/archive"
	"modtel/internal/telemetry/loki"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	if cfg.DatabaseURL == "" && cfg.LokiURL == "" {
		log.Fatal("worker: at least one of DATABASE_URL or LOKI_URL is required")
	}

	var repo *archive.PostgresRepository
	if cfg.DatabaseURL != "" {
		pool, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("worker: db: %v", err)
		}
		defer pool.Close()
		repo = archive.NewPostgresRepository(pool)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.KafkaTopic, cfg.KafkaGroupID)

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		if repo != nil {
			rec, err := archive.FromWire(msg.Value)
			if err != nil {
				log.Printf("worker: skip malformed envelope: %v", err)
			} else {
				saveCtx, saveCancel := context.WithTimeout(ctx, 10*time.Second)
				if err := repo.Save(saveCtx, rec); err != nil {
					log.Printf("worker: archive save failed: %v", err)
				}
				saveCancel()
			}
		}

		if cfg.LokiURL != "" {
			pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
			if err := loki.PushEventJSON(pushCtx, cfg.LokiURL, msg.Value); err != nil {
				log.Printf("worker: loki push failed: %v", err)
			}
			pushCancel()
		}
	}
}
