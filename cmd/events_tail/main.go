package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"qa-paper-be/internal/config"
	"qa-paper-be/pkg/events"
	nats "qa-paper-be/pkg/nats"
)

// Tails the session event stream. Useful when debugging a stuck job: shows
// every SESSION_PROGRESS and SESSION_FINISHED event as it is mirrored.
func main() {
	cfg := config.Load()

	sub, err := nats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Error: failed to connect to NATS: %v", err)
	}
	defer sub.Close()

	print := func(_ context.Context, ev events.Event) error {
		line, err := json.Marshal(ev.Payload())
		if err != nil {
			return err
		}
		log.Printf("%s %s", ev.EventType(), line)
		return nil
	}

	if err := sub.Subscribe("events.SESSION_PROGRESS", "events-tail-progress", print); err != nil {
		log.Fatalf("Error: %v", err)
	}
	if err := sub.Subscribe("events.SESSION_FINISHED", "events-tail-finished", print); err != nil {
		log.Fatalf("Error: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
