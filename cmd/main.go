package main

import (
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/pakit/pakit/internal/app"
	"github.com/pakit/pakit/internal/logging"
	"github.com/pakit/pakit/pkg/config"
	"github.com/rs/zerolog/log"
)

var (
	pakit   *app.Pakit
	cli     config.Cli
	version = "dev"
	meta    = config.Meta{
		ID:   "pakit",
		Name: "Pakit",
		Desc: "Compress and decompress files, with the formats taken from their extensions",
		URL:  "https://github.com/pakit/pakit",
	}
)

func main() {
	var err error
	runtime.GOMAXPROCS(runtime.NumCPU())

	meta.Version = version

	kctx := kong.Parse(&cli,
		kong.Name(meta.ID),
		kong.Description(fmt.Sprintf("%s. More info: %s", meta.Desc, meta.URL)),
		kong.UsageOnError(),
		kong.Vars{
			"version": version,
		},
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	// Logging
	logging.Configure(cli)

	// Handle os signals
	channel := make(chan os.Signal, 1)
	signal.Notify(channel, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-channel
		log.Warn().Msgf("caught signal %v", sig)
		// The app may not be constructed yet when the signal lands.
		if pakit == nil {
			os.Exit(1)
		}
		// Cancelling the context lets in-flight pipelines remove their
		// staged output before the process ends.
		pakit.Close()
	}()

	// Init
	if pakit, err = app.New(meta, cli, kctx.Command()); err != nil {
		log.Fatal().Err(err).Msg("cannot initialize pakit")
	}

	// Start
	if err = pakit.Start(); err != nil {
		log.Fatal().Stack().Err(err).Send()
	}
}
