package app

import (
	"log"
	"sync"
	"time"

	"github.com/geodetica/fdemsurvey/internal/contrast"
)

type Config struct {
	ArchiveBaseURL string
	ArchivePath    string
	HTTPTimeout    time.Duration

	BreakerFailures int
	BreakerOpenFor  time.Duration
	BreakerInterval time.Duration

	Logger *log.Logger
}

type Gateway struct {
	cfg       Config
	evaluator *contrast.Evaluator
	archive   *Upstream

	// ultima risposta valida dell'archivio, servita quando l'upstream non risponde
	mu       sync.RWMutex
	lastGood []Evaluation
}

func NewGateway(cfg Config, ev *contrast.Evaluator) *Gateway {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	ab := mkBreaker("archive", cfg.BreakerFailures, cfg.BreakerOpenFor, cfg.BreakerInterval)
	a := NewUpstream("archive", cfg.ArchiveBaseURL, cfg.ArchivePath, cfg.HTTPTimeout, ab)

	return &Gateway{cfg: cfg, evaluator: ev, archive: a}
}
