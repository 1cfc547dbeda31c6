// track sends a single telemetry event (or exception) from the command line.
//
//	APPINSIGHTS_KEY=... go run ./cmd/track -name install -prop step=download -metric duration_ms=1234
//	APPINSIGHTS_KEY=... go run ./cmd/track -error "disk full" -bucket install
//
// Optional mirrors are enabled by config: KAFKA_BROKERS (Kafka), OTLP_ENDPOINT
// (OTel log records), PRIVACY_POLICY_FILE (Rego property filter).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"modtel/internal/config"
	"modtel/internal/logging"
	"modtel/internal/telemetry"
	"modtel/internal/telemetry/otel"
	"modtel/internal/telemetry/privacy"
	"modtel/internal/telemetry/producer"
)

// kvFlag collects repeated -prop k=v pairs.
type kvFlag map[string]string

func (f kvFlag) String() string { return fmt.Sprintf("%v", map[string]string(f)) }

func (f kvFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f[k] = v
	return nil
}

// metricFlag collects repeated -metric k=v pairs with float values.
type metricFlag map[string]float64

func (f metricFlag) String() string { return fmt.Sprintf("%v", map[string]float64(f)) }

func (f metricFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("metric %q: %w", k, err)
	}
	f[k] = n
	return nil
}

func main() {
	props := kvFlag{}
	metrics := metricFlag{}
	name := flag.String("name", "", "Event name to send")
	errMsg := flag.String("error", "", "Send an exception event with this message instead of a custom event")
	bucket := flag.String("bucket", "", "Error bucket for exception events")
	synchronous := flag.Bool("sync", false, "Send on the calling goroutine instead of a background one")
	verbose := flag.Bool("v", false, "Verbose logging")
	flag.Var(props, "prop", "Event property as key=value (repeatable)")
	flag.Var(metrics, "metric", "Event metric as key=value (repeatable, value is a float)")
	flag.Parse()

	if *name == "" && *errMsg == "" {
		fmt.Fprintln(os.Stderr, "one of -name or -error is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.NewStdLogger(*verbose)
	client := telemetry.NewClient(cfg, logger)
	if !cfg.DefaultNoStatus {
		client.SetProgress(os.Stderr)
	}

	ctx := context.Background()

	if brokers := cfg.KafkaBrokersList(); len(brokers) > 0 {
		prod, err := producer.NewKafkaProducer(brokers, cfg.KafkaTopic)
		if err != nil {
			log.Fatalf("kafka: %v", err)
		}
		defer prod.Close()
		client.AddMirror(prod)
	}

	if cfg.OTLPEndpoint != "" {
		providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ModuleName, false)
		if err != nil {
			log.Fatalf("otel: %v", err)
		}
		defer providers.Shutdown(ctx)
		client.AddMirror(otel.NewEventEmitter(providers.LoggerProvider))
	}

	if cfg.PrivacyPolicyFile != "" {
		filter, err := privacy.NewFilterFromFile(cfg.PrivacyPolicyFile)
		if err != nil {
			log.Fatalf("privacy policy: %v", err)
		}
		client.SetPropertyFilter(filter)
	}

	if *errMsg != "" {
		client.EmitException(ctx, fmt.Errorf("%s", *errMsg), *bucket, props, *synchronous)
		return
	}
	client.EmitEvent(ctx, *name, props, metrics, *synchronous)
}
