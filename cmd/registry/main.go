// Command registry runs the standalone GlobalRegistry process: the
// authoritative name->endpoint map that managers register actors
// against and look them up from.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/lguibr/actorhost/registry"
)

func main() {
	app := &cli.App{
		Name:  "registry",
		Usage: "run the global actor name registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "endpoint",
				Value: "0.0.0.0:5555",
				Usage: "address to bind the registry's request/reply socket on",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "path to the optional host/service config JSON",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("registry exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	hosts, err := registry.LoadConfig(c.String("config"))
	if err != nil {
		slog.Warn("continuing without process-control config", "error", err)
	}

	log := slog.Default()
	reg := registry.New(log, hosts)
	reg.Start()
	defer reg.Stop()

	srv := registry.NewServer(c.String("endpoint"), reg, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("registry: listen failed: %w", err)
	case <-stop:
		slog.Info("shutting down registry")
		return srv.Close()
	}
}
