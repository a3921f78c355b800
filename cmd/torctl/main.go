package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/cvsouth/torctl/circuit"
	"github.com/cvsouth/torctl/control"
	"github.com/cvsouth/torctl/grammar"
	"github.com/cvsouth/torctl/transport"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	endpoint := flag.String("endpoint", transport.DefaultEndpoint, "control port endpoint: host:port or a unix socket path")
	verb := flag.String("cmd", "circuits", "circuits | streams | router <id> | all-routers | extend <circ-id> <fp1,fp2,...> | getconf <key>")
	logPath := flag.String("log-file", "torctl-debug.log", "path to the JSON debug log")
	flag.Parse()

	logger, logFile := setupLogging(*logPath)
	defer func() { _ = logFile.Close() }()

	fmt.Printf("=== torctl %s ===\n", Version)

	ctl, err := control.Dial(*endpoint, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect/authenticate failed: %v\n", err)
		os.Exit(1)
	}
	defer ctl.Session.Close()

	if err := runCommand(ctl, *verb, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", *verb, err)
		os.Exit(1)
	}
}

func runCommand(ctl *control.Controller, verb string, args []string) error {
	switch verb {
	case "circuits":
		circs, err := ctl.Circuits()
		if err != nil {
			return err
		}
		for _, c := range circs {
			fmt.Printf("%s %s path=%s\n", c.ID, c.Status, c.Path)
		}
	case "streams":
		streams, err := ctl.Streams()
		if err != nil {
			return err
		}
		for _, s := range streams {
			attached := "unattached"
			if s.IsAttached() {
				attached = string(s.CircuitID)
			}
			fmt.Printf("%s %s circuit=%s target=%s\n", s.ID, s.Status, attached, s.Target)
		}
	case "router":
		if len(args) < 1 {
			return fmt.Errorf("usage: -cmd router <id>")
		}
		r, err := ctl.OnionRouter(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s flags=%s\n", r.Nickname, r.Target, r.Flags)
	case "all-routers":
		routers, err := ctl.AllOnionRouters()
		if err != nil {
			return err
		}
		for _, r := range routers {
			fmt.Printf("%s %s flags=%s\n", r.Nickname, r.Target, r.Flags)
		}
	case "extend":
		if len(args) < 2 {
			return fmt.Errorf("usage: -cmd extend <circ-id> <fp1,fp2,...>")
		}
		id, err := grammar.ParseCircuitID(args[0])
		if err != nil {
			return err
		}
		path, err := circuit.ParsePath(args[1])
		if err != nil {
			return err
		}
		out, err := ctl.ExtendCircuit(id, path)
		if err != nil {
			return err
		}
		fmt.Print(out)
	case "getconf":
		if len(args) < 1 {
			return fmt.Errorf("usage: -cmd getconf <key>")
		}
		out, err := ctl.GetConf(args[0])
		if err != nil {
			return err
		}
		fmt.Print(out)
	default:
		return fmt.Errorf("unknown command %q", verb)
	}
	return nil
}

func setupLogging(path string) (*slog.Logger, *os.File) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
		os.Exit(1)
	}
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	stdoutHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, stdoutHandler}})
	return logger, logFile
}

// multiHandler fans out slog records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
