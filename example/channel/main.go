package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ghalamif/mtcflow"
)

func main() {
	flow, err := mtcflow.Conf("../../data/config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, batches, closeBatches := mtcflow.NewChannelStore("fanout", 32)
	defer closeBatches()

	go fanoutWorker("positions", batches)

	if err := flow.Run(ctx, mtcflow.StreamOutStore(store)); err != nil {
		log.Fatal().Err(err).Msg("bridge exited")
	}
}

func fanoutWorker(name string, batches <-chan []mtcflow.Measurement) {
	for batch := range batches {
		var positions int
		for _, m := range batch {
			if m.Measurement == "PathPosition" {
				positions++
			}
		}
		fmt.Printf("[%s] %d records, %d axis positions at %s\n",
			name, len(batch), positions, time.Now().Format(time.RFC3339))
	}
}
