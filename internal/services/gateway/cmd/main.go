package main

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geodetica/fdemsurvey/internal/contrast"
	"github.com/geodetica/fdemsurvey/internal/petro"
	"github.com/geodetica/fdemsurvey/internal/services/gateway/app"
	"github.com/geodetica/fdemsurvey/internal/solver"
)

func ms(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func main() {
	cfg := loadConfig()

	remote := solver.NewRemote(solver.RemoteConfig{
		BaseURL:      cfg.SolverURL,
		Timeout:      ms(cfg.SolverTimeoutMs),
		BreakerFails: cfg.CBSolverFails,
		BreakerOpen:  ms(cfg.CBSolverOpenMs),
	})

	gw := app.NewGateway(app.Config{
		ArchiveBaseURL:  cfg.ArchiveURL,
		ArchivePath:     cfg.ArchivePath,
		HTTPTimeout:     ms(cfg.TimeoutMs),
		BreakerFailures: cfg.CBArchiveFails,
		BreakerOpenFor:  ms(cfg.CBArchiveOpenMs),
		BreakerInterval: ms(cfg.CBArchiveIntervalMs),
	}, contrast.NewEvaluator(remote, petro.Default()))

	http.HandleFunc("/evaluate", gw.HandleEvaluate)
	http.HandleFunc("/evaluate/sweep", gw.HandleSweep)
	http.HandleFunc("/evaluations/recent", gw.HandleRecent)
	http.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	http.Handle("/metrics", promhttp.Handler())

	addr := ":" + cfg.Port
	log.Printf("gateway listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, nil))
}
