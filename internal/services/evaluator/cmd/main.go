package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/geodetica/fdemsurvey/internal/contrast"
	"github.com/geodetica/fdemsurvey/internal/petro"
	"github.com/geodetica/fdemsurvey/internal/services/evaluator"
	"github.com/geodetica/fdemsurvey/internal/solver"
	"github.com/geodetica/fdemsurvey/pkg/broker"
)

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := broker.Config{
		Host:     env("MQTT_HOST", "localhost"),
		Port:     envInt("MQTT_PORT", 1883),
		User:     env("MQTT_USER", "guest"),
		Password: env("MQTT_PASSWORD", "guest"),
		ClientID: fmt.Sprintf("ContrastEvaluator-%s", env("HOSTNAME", "local")),
	}
	client, err := broker.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("MQTT connect failed: %v", err)
	}

	requestTopic := env("EVALUATE_SUB_TOPIC", "survey/evaluate/#")
	consumer := broker.NewConsumer(client, requestTopic, nil)
	publisher := broker.NewPublisher(client)
	defer publisher.Close()

	mode := env("SOLVER_MODE", "remote")
	var sv contrast.Solver
	switch mode {
	case "lin":
		sv = solver.NewLIN()
	default:
		sv = solver.NewRemote(solver.RemoteConfig{
			BaseURL:      env("SOLVER_URL", "http://localhost:8085"),
			Timeout:      time.Duration(envInt("SOLVER_TIMEOUT_MS", 5000)) * time.Millisecond,
			BreakerFails: envInt("SOLVER_CB_FAILS", 3),
			BreakerOpen:  time.Duration(envInt("SOLVER_CB_OPEN_MS", 10000)) * time.Millisecond,
		})
	}

	svc := evaluator.NewService(consumer, publisher,
		contrast.NewEvaluator(sv, petro.Default()),
		env("RESULT_TOPIC_TMPL", ""),
		env("FAULT_TOPIC_TMPL", ""),
	)

	log.Printf("ContrastEvaluator running. sub=%s solver=%s", requestTopic, mode)
	go svc.Start(ctx)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc
	log.Println("shutting down")
	cancel()
}
