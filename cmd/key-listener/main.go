// Command key-listener connects to a running basilisk's key hub and prints
// every direction it receives on its own line, ready to be piped into whatever
// presses keys on the machine running the game.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/leonitousconforti/basilisk/internal/board"
	"github.com/leonitousconforti/basilisk/internal/keys"
)

func main() {
	defaultURL := os.Getenv("BASILISK_HUB_URL")
	if defaultURL == "" {
		defaultURL = "ws://localhost" + keys.DefaultAddr + "/"
	}
	url := flag.String("url", defaultURL, "WebSocket URL of the basilisk key hub")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener := keys.NewListener(*url)
	if err := listener.Connect(ctx); err != nil {
		log.Fatal(err)
	}

	log.Println("Listening for keys... Press Ctrl+C to stop")
	count := 0
	err := listener.Run(ctx, func(dir board.Direction) {
		token, _ := dir.Token()
		fmt.Println(token)
		count++
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Printf("Received %d keys", count)
}
