package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	internalrelgen "github.com/barnettlynn/mfcrypto1/internal/relgen"
	"github.com/barnettlynn/mfcrypto1/pkg/cnf"
)

func main() {
	outputs := flag.Int("outputs", 64, "number of keystream bits the relation covers")
	outPath := flag.String("o", "crypto1-64.cnf", "output file (- for stdout)")
	verbose := flag.Bool("v", false, "enable debug logging")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	flag.Parse()

	// Configure slog
	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if *logFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, opts)))
	} else {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, opts)))
	}

	rel, err := internalrelgen.Build(*outputs)
	if err != nil {
		log.Fatalf("build relation failed: %v", err)
	}
	slog.Debug("relation built",
		"vars", rel.NumVars,
		"clauses", len(rel.Clauses),
		"xor_clauses", len(rel.XorClauses))

	if *outPath == "-" {
		if _, err := rel.WriteTo(os.Stdout); err != nil {
			log.Fatalf("write relation failed: %v", err)
		}
		return
	}
	if err := writeFile(*outPath, rel); err != nil {
		log.Fatalf("write relation failed: %v", err)
	}
	fmt.Printf("Wrote %s: %d variables, %d clauses, %d xor clauses, keystream from variable %d\n",
		*outPath, rel.NumVars, len(rel.Clauses), len(rel.XorClauses), rel.KnownOffset)
}

// writeFile writes rel to path. A failed close is returned.
func writeFile(path string, rel *cnf.Relation) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := rel.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
