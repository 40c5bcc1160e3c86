package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/geodetica/fdemsurvey/internal/services/archive"
	"github.com/geodetica/fdemsurvey/pkg/broker"
	"github.com/geodetica/fdemsurvey/pkg/dedup"
)

func envStr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
func envInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	// === Config ===
	cfg := struct {
		Broker broker.Config

		InfluxURL    string
		InfluxToken  string
		InfluxOrg    string
		InfluxBucket string

		Topics        []string
		BatchSize     int
		FlushInterval time.Duration

		HTTPPort      int
		ShutdownGrace time.Duration
	}{
		Broker: broker.Config{
			Host:     envStr("MQTT_HOST", "localhost"),
			Port:     envInt("MQTT_PORT", 1883),
			User:     envStr("MQTT_USER", "guest"),
			Password: envStr("MQTT_PASSWORD", "guest"),
			ClientID: envStr("HOSTNAME", "archive-service"),
		},

		InfluxURL:    envStr("INFLUX_URL", "http://localhost:8086"),
		InfluxToken:  os.Getenv("INFLUX_TOKEN"),
		InfluxOrg:    envStr("INFLUX_ORG", "geodetica"),
		InfluxBucket: envStr("INFLUX_BUCKET", "surveys"),

		Topics: func() []string {
			raw := envStr("ARCHIVE_SUB_TOPICS", "event/contrastResult/#,event/solverFault/#")
			parts := strings.Split(raw, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if s := strings.TrimSpace(p); s != "" {
					out = append(out, s)
				}
			}
			return out
		}(),
		BatchSize:     envInt("WRITE_BATCH_SIZE", 10),
		FlushInterval: time.Duration(envInt("WRITE_FLUSH_INTERVAL_MS", 200)) * time.Millisecond,

		HTTPPort:      envInt("HTTP_PORT", 8080),
		ShutdownGrace: 5 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// === InfluxDB ===
	opts := influxdb2.DefaultOptions().
		SetBatchSize(uint(cfg.BatchSize)).
		SetFlushInterval(uint(cfg.FlushInterval.Milliseconds()))
	influx := influxdb2.NewClientWithOptions(cfg.InfluxURL, cfg.InfluxToken, opts)
	defer influx.Close()
	writer := archive.NewWriter(influx.WriteAPI(cfg.InfluxOrg, cfg.InfluxBucket))

	// === MQTT ===
	client, err := broker.Connect(ctx, cfg.Broker)
	if err != nil {
		log.Fatalf("mqtt connection error: %v", err)
	}

	// cache degli ultimi risultati per il fallback dell'API
	cache := archive.NewLatestCache(100)

	// === HTTP ===
	mux := http.NewServeMux()
	mux.Handle("/healthz", archive.NewHealthHandler(client, influx, writer))
	mux.Handle("/readyz", archive.NewReadyHandler(client, influx, writer, 2*time.Second))
	mux.Handle("/evaluations/recent", archive.NewRecentHandler(influx, cfg.InfluxOrg, cfg.InfluxBucket, cache))

	hs := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("archive: HTTP listening on :%d", cfg.HTTPPort)
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server error: %v", err)
		}
	}()

	// === Consumer ===
	h := archive.NewMQTTHandler(func(evt archive.ArchivedEvent) {
		writer.WritePoint(evt.EventType, archive.EventToPoint(evt))
		if evt.EventType == archive.EventTypeResult {
			cache.Add(archive.EvaluationFrom(evt))
		}
	})

	// dedup solo su event/contrastResult/# (QoS1 → possibili redelivery)
	d := dedup.New(10*time.Minute, 20000)
	handler := func(_ string, m mqtt.Message) error {
		if strings.HasPrefix(m.Topic(), "event/contrastResult/") {
			hh := sha256.Sum256(m.Payload())
			if !d.ShouldProcess(hex.EncodeToString(hh[:])) {
				return nil
			}
		}
		return h.Handle("", m)
	}
	consumer := broker.NewMultiConsumer(client, cfg.Topics, handler)
	go consumer.ConsumeMessage(ctx)

	// === Wait for signal ===
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	log.Printf("archive: shutting down...")

	// graceful http
	shCtx, shCancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer shCancel()
	_ = hs.Shutdown(shCtx)

	// consenti il flush dei punti in coda
	time.Sleep(cfg.FlushInterval + 100*time.Millisecond)
}
