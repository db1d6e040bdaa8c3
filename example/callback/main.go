package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ghalamif/mtcflow/pkg/mtcflow"
)

func main() {
	// Built-in defaults: NIST test bed agent, five second interval.
	flow, err := mtcflow.ConfFromConfig(mtcflow.DefaultConfig())
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	callback := func(batch []mtcflow.Measurement) error {
		for _, m := range batch {
			fmt.Printf("%s %s id=%s value=%s\n",
				m.Timestamp,
				m.Measurement,
				m.Tags.DataItemID,
				m.Fields.Value,
			)
		}
		return nil
	}

	err = flow.
		StreamIN(mtcflow.StreamInMultiAxis("Orientation", "A", "B", "C")).
		Run(ctx, mtcflow.StreamOutCallback("stdout", callback))
	if err != nil {
		log.Fatal().Err(err).Msg("bridge exited")
	}
}
