package main

import (
	"os"
	"strconv"
)

type Config struct {
	Port      string
	TimeoutMs int

	// Forward solver remoto
	SolverURL       string // es. http://solver-sim:8085
	SolverTimeoutMs int
	CBSolverFails   int
	CBSolverOpenMs  int

	// Archivio valutazioni
	ArchiveURL          string // es. http://archive.cloud:8080
	ArchivePath         string
	CBArchiveFails      int
	CBArchiveOpenMs     int
	CBArchiveIntervalMs int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}
func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func loadConfig() Config {
	return Config{
		Port:      getenv("PORT", "5009"),
		TimeoutMs: getenvInt("TIMEOUT_MS", 3000),

		SolverURL:       getenv("SOLVER_URL", "http://localhost:8085"),
		SolverTimeoutMs: getenvInt("SOLVER_TIMEOUT_MS", 5000),
		CBSolverFails:   getenvInt("CB_SOLVER_FAILS", 3),
		CBSolverOpenMs:  getenvInt("CB_SOLVER_OPEN_MS", 10000),

		ArchiveURL:          getenv("ARCHIVE_URL", "http://localhost:8080"),
		ArchivePath:         getenv("ARCHIVE_PATH", "/evaluations/recent"),
		CBArchiveFails:      getenvInt("CB_ARCHIVE_FAILS", 3),
		CBArchiveOpenMs:     getenvInt("CB_ARCHIVE_OPEN_MS", 10000),
		CBArchiveIntervalMs: getenvInt("CB_ARCHIVE_INTERVAL_MS", 60000),
	}
}
