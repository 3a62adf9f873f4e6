package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/leonitousconforti/basilisk/internal/journal"
)

func main() {
	dbPath := flag.String("db", "data/basilisk.db", "Path to SQLite database")
	withActions := flag.Bool("actions", false, "Print every dispatched action")
	flag.Parse()

	if _, err := os.Stat(*dbPath); os.IsNotExist(err) {
		log.Fatalf("Database not found at %s", *dbPath)
	}

	j, err := journal.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer j.Close()

	ctx := context.Background()
	sessions, err := j.Sessions(ctx)
	if err != nil {
		log.Fatalf("Failed to query sessions: %v", err)
	}

	for _, s := range sessions {
		fmt.Printf("Session: %s (%s)\n", s.Name, s.ID)
		if s.EndedAt.IsZero() {
			fmt.Printf("Time: %s - still running\n", s.StartedAt.Format(time.RFC822))
		} else {
			fmt.Printf("Time: %s - %s (%s)\n", s.StartedAt.Format(time.RFC822), s.EndedAt.Format(time.RFC822),
				s.EndedAt.Sub(s.StartedAt).Round(time.Second))
		}
		fmt.Printf("Strategy: %s, keys: %s\n", s.Strategy, s.Backend)

		entries, err := j.Actions(ctx, s.ID)
		if err != nil {
			log.Fatalf("Failed to query actions: %v", err)
		}
		fmt.Printf("Actions: %d\n", len(entries))

		if *withActions {
			for _, e := range entries {
				kind := "once"
				if e.Cyclic {
					kind = "cyclic"
				}
				fmt.Printf("  %4d %s %-5v at %v, head %v (%s)\n", e.Seq, e.Time.Format("15:04:05.000"), e.Dir, e.At, e.Head, kind)
			}
		}
		fmt.Println("--------------------------------------------------")
	}

	fmt.Printf("Total sessions: %d\n", len(sessions))
}
