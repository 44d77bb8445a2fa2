package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/bryan-buckman/vakantie/internal/commands"
	"github.com/bryan-buckman/vakantie/internal/config"
	"github.com/bryan-buckman/vakantie/internal/database"
	"github.com/bryan-buckman/vakantie/internal/holidays"
	"github.com/bryan-buckman/vakantie/internal/preference"
	"github.com/bryan-buckman/vakantie/internal/server"
)

const usage = `Usage: vakantie [command] [flags]

Commands:
  serve                 start the web server (default)
  next                  show the next vacation
  list                  show all vacations of the school year
  countdown             count down to the next vacation
  set-region <region>   store the region (Noord, Midden, Zuid)
  set-schoolyear <year> store the school year (e.g. 2025-2026)

Run "vakantie <command> -h" for the flags.
`

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, commands.ErrUsage) {
			fmt.Fprint(os.Stderr, usage)
		}
		log.Fatal(err)
	}
}

func run(args []string) error {
	// Check for subcommands
	cmd := "serve"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}
	switch cmd {
	case "serve", "next", "list", "countdown", "set-region", "set-schoolyear":
	case "help":
		fmt.Print(usage)
		return nil
	default:
		return fmt.Errorf("%w: unknown command %q", commands.ErrUsage, cmd)
	}

	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Warning: %v", err)
	}
	cfg, err := config.Parse(cmd, args)
	if err != nil {
		return err
	}

	store, err := database.Open(cfg.DBPath, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prefs := preference.NewPreferences(store, time.Now())
	client := holidays.NewClient(cfg.FeedURL, cfg.Timeout)

	if cmd == "serve" {
		log.Printf("Using %s database", store.DatabaseType())
		return serve(ctx, cfg, store, prefs, client)
	}

	prefs.Load(ctx)
	defer prefs.Wait()

	loc, err := time.LoadLocation("Europe/Amsterdam")
	if err != nil {
		loc = time.Local
	}
	env := &commands.Env{
		Prefs:      prefs,
		Source:     client,
		Out:        os.Stdout,
		Now:        time.Now,
		Loc:        loc,
		Region:     cfg.Region,
		SchoolYear: cfg.SchoolYear,
	}

	switch cmd {
	case "next":
		return commands.Next(ctx, env)
	case "list":
		return commands.List(ctx, env)
	case "countdown":
		return commands.Countdown(ctx, env)
	case "set-region":
		return commands.SetRegion(env, cfg.Args)
	default:
		return commands.SetSchoolYear(env, cfg.Args)
	}
}

func serve(ctx context.Context, cfg config.Config, store database.Store, prefs *preference.Preferences, client *holidays.Client) error {
	// Pages wait for this; the server starts right away.
	go prefs.Load(ctx)

	srv, err := server.New(store, prefs, client)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start(cfg.Addr) }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Printf("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Stop(shutdownCtx)
}
