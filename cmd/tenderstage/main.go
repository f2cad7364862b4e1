package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jask/tenderstage/internal/auth"
	"github.com/jask/tenderstage/internal/config"
	"github.com/jask/tenderstage/internal/database"
	"github.com/jask/tenderstage/internal/database/repository"
	"github.com/jask/tenderstage/internal/merge"
	"github.com/jask/tenderstage/internal/reconcile"
	"github.com/jask/tenderstage/internal/scheduler"
	"github.com/jask/tenderstage/internal/staging"
)

const usage = `usage: tenderstage [-db path] [-owner id] <command> [args]

commands:
  stage <key>    stage a batch of items from stdin (JSON array)
  drain <key>    drain a channel against an empty working set, print the report
  watch <key>    drain on a polling interval; each stdin line forces a drain
  sweep          remove the owner's expired entries
  purge          remove all of the owner's entries
`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbPath := flag.String("db", cfg.Database.Path, "sqlite database path")
	owner := flag.String("owner", os.Getenv("TENDERSTAGE_OWNER"), "acting principal id")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx := context.Background()

	if err := os.MkdirAll(filepath.Dir(*dbPath), 0o755); err != nil {
		log.Fatalf("mkdir db dir: %v", err)
	}
	if err := database.RunMigrations(*dbPath); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	db, err := database.Open(*dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	cache := &staging.Cache{
		Repo:      repository.NewStagingRepo(db),
		Principal: auth.Static{ID: strings.TrimSpace(*owner)},
		TTL:       cfg.Staging.DefaultTTL,
	}
	coord := &merge.Coordinator{
		Cache:   cache,
		Options: merge.Options{KeepStaged: cfg.Staging.KeepStaged},
	}

	switch cmd, args := flag.Arg(0), flag.Args()[1:]; cmd {
	case "stage":
		if len(args) != 1 {
			log.Fatalf("stage: expected <key>")
		}
		var items []reconcile.Item
		if err := json.NewDecoder(os.Stdin).Decode(&items); err != nil {
			log.Fatalf("stage: decode items: %v", err)
		}
		if err := coord.StageItems(ctx, args[0], items); err != nil {
			log.Fatalf("stage: %v", err)
		}
		fmt.Printf("staged %d item(s) on %q\n", len(items), args[0])
	case "drain":
		if len(args) != 1 {
			log.Fatalf("drain: expected <key>")
		}
		report, err := coord.Drain(ctx, args[0], nil)
		if err != nil {
			log.Fatalf("drain: %v", err)
		}
		if !report.Drained {
			fmt.Printf("channel %q is empty\n", args[0])
			return
		}
		fmt.Printf("batch %s: accepted %d, duplicates %d\n", report.BatchID, report.Accepted, len(report.DuplicateNames))
		for _, name := range report.DuplicateNames {
			fmt.Printf("  duplicate: %s\n", name)
		}
		out, err := json.MarshalIndent(report.Merged, "", "  ")
		if err != nil {
			log.Fatalf("drain: encode merged items: %v", err)
		}
		fmt.Println(string(out))
	case "watch":
		if len(args) != 1 {
			log.Fatalf("watch: expected <key>")
		}
		watch(ctx, coord, cfg, args[0])
	case "sweep":
		n, err := cache.SweepExpired(ctx)
		if err != nil {
			log.Fatalf("sweep: %v", err)
		}
		fmt.Printf("removed %d expired entr(ies)\n", n)
	case "purge":
		n, err := cache.ClearAll(ctx)
		if err != nil {
			log.Fatalf("purge: %v", err)
		}
		fmt.Printf("removed %d entr(ies)\n", n)
	default:
		flag.Usage()
		os.Exit(2)
	}
}

// watch multiplexes the polling interval and stdin signals into one debounced
// drain, accumulating the working set across drains. Returns on stdin EOF.
func watch(ctx context.Context, coord *merge.Coordinator, cfg config.Config, key string) {
	var mu sync.Mutex
	var working []reconcile.Item

	sched := scheduler.New(func(ctx context.Context) {
		mu.Lock()
		defer mu.Unlock()
		report, err := coord.Drain(ctx, key, working)
		if err != nil {
			log.Printf("drain: %v", err)
			return
		}
		if !report.Drained {
			return
		}
		working = report.Merged
		fmt.Printf("batch %s: accepted %d, duplicates %d, working set %d\n",
			report.BatchID, report.Accepted, len(report.DuplicateNames), len(working))
	}, cfg.Scheduler.PollInterval, cfg.Scheduler.Debounce)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("watch: %v", err)
	}
	defer sched.Stop()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		sched.Notify()
	}
}
