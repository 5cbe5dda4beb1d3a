// Package cli implements the classattr command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/classattr/internal/manifest"
	"github.com/mesh-intelligence/classattr/internal/registry"
	"github.com/mesh-intelligence/classattr/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	manifest  string
	logLevel  string
	jsonMode  bool
}

// NewRootCmd creates the top-level "classattr" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:   "classattr",
		Short: "Resolve inherited attribute values in a type hierarchy",
		Long: "classattr loads a type hierarchy from a manifest and resolves attribute values\n" +
			"through instance overrides, the type itself, and its ancestors.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&f.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/classattr)")
	root.PersistentFlags().StringVar(&f.manifest, "manifest", "", "hierarchy manifest (default: <config-dir>/manifest.yaml)")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	root.PersistentFlags().BoolVar(&f.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(f))
	root.AddCommand(newResolveCmd(f))
	root.AddCommand(newExplainCmd(f))
	root.AddCommand(newTreeCmd(f))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "classattr:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code. Bad input (a malformed
// manifest, a broken hierarchy, an unknown name) is the caller's mistake;
// anything else, such as an unreadable file, is a system error.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, manifest.ErrInvalid),
		errors.Is(err, types.ErrNotDeclared),
		errors.Is(err, types.ErrInvalidPromotion),
		errors.Is(err, types.ErrInvalidName),
		errors.Is(err, types.ErrTypeNotFound),
		errors.Is(err, types.ErrInstanceNotFound),
		errors.Is(err, types.ErrDuplicateName),
		errors.Is(err, types.ErrCycle),
		errors.Is(err, types.ErrManifestEmpty),
		errors.Is(err, types.ErrLogLevelUnknown),
		errors.Is(err, errTargetNotFound):
		return exitUserError
	default:
		return exitSysError
	}
}

// session is the state a query command works against.
type session struct {
	cfg      types.Config
	logger   *slog.Logger
	registry *registry.Registry
}

// openSession resolves configuration, builds the logger, and loads the
// manifest into a fresh registry.
func openSession(cmd *cobra.Command, f *rootFlags) (*session, error) {
	cfg, _, err := resolveConfig(f)
	if err != nil {
		return nil, err
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return nil, err
	}

	reg := registry.New(logger)
	if err := reg.Load(m); err != nil {
		return nil, fmt.Errorf("load %s: %w", cfg.ManifestPath, err)
	}
	return &session{cfg: cfg, logger: logger, registry: reg}, nil
}

// newLogger returns a text logger writing to w at the named level.
func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case types.LogLevelDebug:
		l = slog.LevelDebug
	case types.LogLevelInfo:
		l = slog.LevelInfo
	case types.LogLevelError:
		l = slog.LevelError
	default:
		l = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: l}))
}
