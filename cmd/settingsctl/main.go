// Command settingsctl manages user settings through the REST API.
//
//	settingsctl [flags] list [-page n] [-size n]
//	settingsctl [flags] search [-size n] <query>
//	settingsctl [flags] get <id>
//	settingsctl [flags] set [-id n] [-goal n] [-unit KG|LB] [-reminder HH:mm] [-user n]
//	settingsctl [flags] delete [-y] <id>
//	settingsctl [flags] watch <id>
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/smb564/21-points/internal/client"
	"github.com/smb564/21-points/internal/config"
	"github.com/smb564/21-points/internal/eventbus"
	"github.com/smb564/21-points/internal/logger"
)

// errUsage makes main print usage and exit 2.
var errUsage = errors.New("usage")

// app is everything a subcommand needs.
type app struct {
	client *client.Client
	bus    *eventbus.Bus
	topic  string
	log    zerolog.Logger
	in     io.Reader
	out    io.Writer
	// interactive is true when prompts can be answered.
	interactive bool
}

func main() {
	cfg := config.Load()

	fs := flag.NewFlagSet("settingsctl", flag.ExitOnError)
	apiURL := fs.String("api", cfg.APIBaseURL, "Base URL of the 21 Points API")
	logLevel := fs.String("log-level", "warn", "Log level")
	fs.Usage = func() { usage(fs) }
	_ = fs.Parse(os.Args[1:])

	log := logger.New(os.Stderr, *logLevel, "pretty")

	a := &app{
		client: client.New(client.Config{
			BaseURL: *apiURL,
			Timeout: cfg.APITimeout,
			Logger:  &log,
		}),
		bus:         eventbus.New(log),
		topic:       config.Key.UserSettingsUpdateTopic(cfg.AppNamespace),
		log:         log,
		in:          os.Stdin,
		out:         os.Stdout,
		interactive: isTerminal(os.Stdin),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := a.run(ctx, fs.Args())
	switch {
	case errors.Is(err, errUsage):
		usage(fs)
		os.Exit(2)
	case err != nil:
		fmt.Fprintln(os.Stderr, "settingsctl:", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return a.list(ctx, rest)
	case "search":
		return a.search(ctx, rest)
	case "get":
		return a.get(ctx, rest)
	case "set":
		return a.set(ctx, rest)
	case "delete":
		return a.delete(ctx, rest)
	case "watch":
		return a.watch(ctx, rest)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func usage(fs *flag.FlagSet) {
	out := fs.Output()
	fmt.Fprintln(out, "Usage: settingsctl [flags] <command> [args]")
	fmt.Fprintln(out, "Commands: list, search <query>, get <id>, set, delete <id>, watch <id>")
	fmt.Fprintln(out, "Flags:")
	fs.PrintDefaults()
}
