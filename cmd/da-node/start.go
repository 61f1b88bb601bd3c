package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/axiomesh/axiom-da-node/internal/app"
	"github.com/axiomesh/axiom-da-node/pkg/loggers"
	"github.com/axiomesh/axiom-da-node/pkg/repo"
)

func startFullNode(ctx *cli.Context) error {
	return run(ctx, app.ModeFull)
}

func startReplica(ctx *cli.Context) error {
	return run(ctx, app.ModeReplica)
}

func startSequencer(ctx *cli.Context) error {
	return run(ctx, app.ModeSequencer)
}

func run(ctx *cli.Context, mode app.Mode) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	r, err := repo.Load(p)
	if err != nil {
		return err
	}

	appCtx, cancel := context.WithCancel(ctx.Context)
	defer cancel()
	if err := loggers.Initialize(appCtx, r, true); err != nil {
		return err
	}

	log := loggers.Logger(loggers.App)
	printVersion(func(c string) {
		log.Info(c)
	})
	r.PrintNodeInfo(func(c string) {
		log.Info(c)
	})

	if err := repo.WritePid(r.RepoRoot); err != nil {
		return errors.Wrap(err, "write pid error")
	}
	defer func() {
		if err := repo.RemovePID(r.RepoRoot); err != nil {
			log.WithField("err", err).Error("Remove pid failed")
		}
	}()

	n, err := app.New(mode, r, appCtx, cancel)
	if err != nil {
		log.WithField("err", err).Error("Startup failed")
		return errors.Wrapf(err, "init %s node failed", mode)
	}

	if r.Config.Monitor.Enable {
		monitor := app.NewMonitor(r.Config.Port.Monitor, n.Health, log)
		if err := monitor.Start(); err != nil {
			n.Stop()
			return err
		}
		defer monitor.Stop()
	}

	handleShutdown(appCtx, n)

	if err := n.Run(); err != nil {
		log.WithField("err", err).Error("Node exited")
		return err
	}
	log.Infof("%s stopped", repo.AppName)
	return nil
}

// handleShutdown stops the node on SIGINT or SIGTERM.
func handleShutdown(ctx context.Context, n app.Node) {
	var stop = make(chan os.Signal, 2)
	signal.Notify(stop, syscall.SIGTERM)
	signal.Notify(stop, syscall.SIGINT)

	go func() {
		defer signal.Stop(stop)
		select {
		case <-stop:
			fmt.Println("received interrupt signal, shutting down...")
			n.Stop()
		case <-ctx.Done():
		}
	}()
}
