// Command uiloop-demo runs a small interactive scene in the terminal. The
// terminal, driven by bubbletea, is the platform: its key and mouse input
// is dispatched on the main loop, and frames are rendered on the render
// loop.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joeycumines/go-uiloop/app"
	"github.com/joeycumines/go-uiloop/config"
	"github.com/joeycumines/go-uiloop/notice"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet(`uiloop-demo`, flag.ContinueOnError)
	configPath := fs.String(`config`, ``, `Path to a YAML or TOML configuration file`)
	diagAddr := fs.String(`diag`, ``, `Diagnostics listen address, overriding the configuration`)
	logFile := fs.String(`log`, ``, `Log file, overriding the configuration`)
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 2
	}

	cfg := config.Default()
	if *configPath != `` {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			return 1
		}
	}
	if *diagAddr != `` {
		cfg.Diag.Addr = *diagAddr
	}
	if *logFile != `` {
		cfg.Log.File = *logFile
	}
	// the terminal is taken over by the program
	if cfg.Log.File == `` {
		cfg.Log.File = filepath.Join(os.TempDir(), `uiloop-demo.log`)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	var (
		a      *app.App
		frames = make(chan string, 1)
	)
	quit := func() { a.Exit(0) }
	sc := newScene(80, 24, quit)
	host := &terminalHost{exit: func(code int) { a.Exit(code) }}

	a, err := app.New(cfg,
		app.WithHost(host),
		app.WithKeyTable(terminalKeyTable()),
		app.WithRenderer(newRenderer(sc, frames)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		return 1
	}
	logger := a.Process().Logger()
	host.logger = logger

	a.Dispatcher().SetRoot(sc.root)
	a.Dispatcher().Focus(sc.buttons[0].box)

	prog := tea.NewProgram(
		newModel(a, frames, func(width, height int) {
			lock := a.UILock()
			lock.Lock()
			sc.resize(width, height)
			lock.Unlock()
		}),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
	)
	if err := a.Process().SafeExit().On(func(notice.Event) { prog.Quit() }, prog); err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		return 1
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			logger.Err().Err(err).Log(`terminal program failed`)
			a.Exit(1)
			return
		}
		a.Exit(0)
	}()

	code := a.Run(ctx)

	select {
	case <-done:
	case <-time.After(time.Second):
		prog.Kill()
		<-done
	}
	return code
}

// newRenderer returns the frame function, publishing the scene whenever it
// changes.
func newRenderer(sc *scene, frames chan string) func(app.Frame) {
	var last string
	return func(app.Frame) {
		if s := sc.render(); s != last {
			last = s
			publishFrame(frames, s)
		}
	}
}
