package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/barnettlynn/mfcrypto1/internal/config"
	"github.com/barnettlynn/mfcrypto1/internal/transcript"
	"github.com/barnettlynn/mfcrypto1/pkg/attack"
	"github.com/barnettlynn/mfcrypto1/pkg/cnf"
)

const configFileName = "config.yaml"

func main() {
	transcriptPath := flag.String("t", "", "transcript YAML file to attack")
	selftest := flag.Bool("selftest", false, "attack random simulated sessions instead of a transcript")
	configFlag := flag.String("config", "", "config file (default: config.yaml next to the binary)")
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

	if !*selftest && *transcriptPath == "" {
		log.Fatalf("either -t <transcript> or -selftest is required")
	}

	// Load config
	configPath := *configFlag
	if configPath == "" {
		var err error
		configPath, err = defaultConfigPath()
		if err != nil {
			log.Fatalf("resolve config path failed: %v", err)
		}
	}
	fmt.Printf("Using config: %s\n", configPath)

	mode := config.ValidationRecover
	if *selftest {
		mode = config.ValidationSelftest
	}
	cfg, err := config.LoadWithMode(configPath, mode)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	// Load relation
	fmt.Printf("Relation: %s\n", cfg.Relation.File)
	rel, err := cnf.ParseFile(cfg.Relation.File)
	if err != nil {
		log.Fatalf("relation load failed: %v", err)
	}
	attacker, err := attack.New(rel)
	if err != nil {
		log.Fatalf("attack setup failed: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *selftest {
		if err := runSelftest(ctx, attacker, *cfg.Selftest.Rounds, *cfg.Selftest.HintBits, cfg.SolverTimeout()); err != nil {
			log.Fatalf("selftest failed: %v", err)
		}
		return
	}

	rec, err := transcript.Load(*transcriptPath)
	if err != nil {
		log.Fatalf("transcript load failed: %v", err)
	}
	res, err := recoverKey(ctx, attacker, rec.Transcript, cfg.SolverTimeout())
	if err != nil {
		log.Fatalf("recover failed: %v", err)
	}

	fmt.Printf("Keystream: %016X\n", res.Keystream)
	fmt.Printf("State:     %012X\n", uint64(res.State))
	fmt.Printf("Key:       %012X\n", res.Key)
	fmt.Printf("Elapsed:   %s\n", res.Elapsed)

	if rec.HasNr {
		if err := verifyKey(res.Key, rec.Transcript); err != nil {
			log.Fatalf("key verification failed: %v", err)
		}
		fmt.Println("Key reproduces the transcript")
	}
}

func defaultConfigPath() (string, error) {
	exePath, err := os.Executable()
	if err != nil {
		return "", err
	}
	exeConfigPath := filepath.Join(filepath.Dir(exePath), configFileName)
	if fileExists(exeConfigPath) {
		return exeConfigPath, nil
	}

	// Fallback for `go run`, where the executable is placed in a temp directory.
	cwd, err := os.Getwd()
	if err != nil {
		return exeConfigPath, nil
	}
	cwdConfigPath := filepath.Join(cwd, configFileName)
	if fileExists(cwdConfigPath) {
		return cwdConfigPath, nil
	}
	return exeConfigPath, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
