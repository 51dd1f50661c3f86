package engine

import (
	"fmt"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spaghettifunk/cala/engine/core"
)

// Title turns a package name into an application title: separators become
// spaces and every word starts with an upper case letter.
// "my-cool_app" becomes "My Cool App".
func Title(pkg string) string {
	spaced := strings.Map(func(r rune) rune {
		if r == '.' || r == '-' || r == '_' {
			return ' '
		}
		return r
	}, pkg)
	caser := cases.Title(language.Und, cases.NoLower)
	words := strings.Split(spaced, " ")
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// PackageName returns the name of the main package, or the executable name
// when the binary carries no build information.
func PackageName() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, p := range []string{bi.Path, bi.Main.Path} {
			if p != "" && p != "command-line-arguments" {
				return path.Base(p)
			}
		}
	}
	exe := filepath.Base(os.Args[0])
	return strings.TrimSuffix(exe, filepath.Ext(exe))
}

// Command builds the root command of an application. It runs the engine and
// has a capabilities sub-command listing what was compiled in.
func Command[T any](step Step[T], init InitFunc[T], opts ...Option) *cobra.Command {
	var (
		flagConfig    string
		flagLogLevel  string
		flagFrameRate int
		flagTitle     string
		flagHeadless  bool
	)

	name := PackageName()
	root := &cobra.Command{
		Use:           name,
		Short:         "Run " + Title(name),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := DefaultApplicationConfig(Title(name))
			if flagConfig != "" {
				if err := LoadConfig(flagConfig, &cfg); err != nil {
					return err
				}
			}
			flags := cmd.Flags()
			if flags.Changed("log-level") {
				cfg.LogLevel = flagLogLevel
			}
			if flags.Changed("frame-rate") {
				cfg.FrameRate = flagFrameRate
			}
			if flags.Changed("title") {
				cfg.Name = flagTitle
			}
			if flags.Changed("headless") {
				cfg.Headless = flagHeadless
			}

			e, err := New(cfg, step, init, opts...)
			if err != nil {
				return err
			}
			return runWithSignals(e)
		},
	}

	root.Flags().StringVarP(&flagConfig, "config", "c", "", "Configuration file (toml or yaml)")
	root.Flags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.Flags().IntVar(&flagFrameRate, "frame-rate", 60, "Maximum ticks per second, 0 for unlimited")
	root.Flags().StringVar(&flagTitle, "title", Title(name), "Application title")
	root.Flags().BoolVar(&flagHeadless, "headless", false, "Run without window, audio device or controllers")

	root.AddCommand(&cobra.Command{
		Use:   "capabilities",
		Short: "List the capabilities compiled into this binary",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, c := range Capabilities() {
				fmt.Fprintln(cmd.OutOrStdout(), c)
			}
		},
	})

	return root
}

// runWithSignals turns SIGINT and SIGTERM into Engine.Interrupt for the
// duration of Run.
func runWithSignals[T any](e *Engine[T]) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-sigCh:
				e.Interrupt()
			case <-done:
				return
			}
		}
	}()
	return e.Run()
}

// Main runs the application and exits with status 1 when it fails to start
// or stops on a fatal error.
func Main[T any](step Step[T], init InitFunc[T], opts ...Option) {
	if err := Command(step, init, opts...).Execute(); err != nil {
		core.DefaultJournal().Error("application failed", "err", err)
		os.Exit(1)
	}
}
