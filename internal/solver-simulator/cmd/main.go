package main

import (
	"flag"
	"log"
	"net/http"

	"github.com/geodetica/fdemsurvey/internal/solver"
	solverSimulator "github.com/geodetica/fdemsurvey/internal/solver-simulator"
)

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	maxB := flag.Float64("max-induction", solver.DefaultMaxInductionNumber, "induction number validity limit")
	flag.Parse()

	engine := solver.NewLIN()
	engine.MaxInductionNumber = *maxB

	srv := solverSimulator.NewServer(engine)
	log.Printf("solver-sim: listening on %s", *addr)
	log.Fatal(http.ListenAndServe(*addr, srv.Routes()))
}
