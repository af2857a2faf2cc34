package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"hoainiem-portal/internal/app"
	"hoainiem-portal/internal/client"
	"hoainiem-portal/internal/config"
	"hoainiem-portal/internal/service"
	"hoainiem-portal/internal/validation"
)

var (
	// Global flags
	verbose    bool
	configPath string
	sessionDB  string
	output     string
	timeout    time.Duration

	// Logger
	logger *zap.Logger

	// portal is built once per invocation by the root command
	portal *app.App
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "newsctl",
	Short: "Terminal client for the Hoai Niem news platform",
	Long: `newsctl reads and writes on the Hoai Niem news platform from a terminal.

It drives the same services as the portal gateway: sign in once and the
session is kept in a local SQLite file between invocations.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		config.OutputPaths = []string{"stderr"}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		portal, err = openPortal()
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if portal != nil {
			if err := portal.Close(); err != nil {
				logger.Warn("Failed to close session store", zap.Error(err))
			}
		}
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// openPortal loads the configuration and builds the application with one
// session for the user. A memory session store is swapped for a SQLite file
// so the login outlives the process.
func openPortal() (*app.App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.Session.Shared = true

	if cfg.Session.Store == "memory" {
		dsn := sessionDB
		if dsn == "" {
			dsn, err = defaultSessionDB()
			if err != nil {
				return nil, err
			}
		}
		cfg.Session.Store = "database"
		cfg.Session.DSN = dsn
	}

	logger.Debug("Opening portal",
		zap.String("portal_api_url", cfg.PortalAPI.BaseURL),
		zap.String("session_store", cfg.Session.Store),
	)
	return app.New(cfg, logger, nil)
}

func defaultSessionDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	dir := filepath.Join(home, ".newsctl")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return filepath.Join(dir, "session.db"), nil
}

// commandContext bounds a command by the --timeout flag
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// printResult writes v in the --output format
func printResult(cmd *cobra.Command, v interface{}) error {
	out := cmd.OutOrStdout()
	switch output {
	case "", "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q (json, yaml)", output)
	}
}

// describeError turns service errors into the message shown to the user
func describeError(err error) error {
	if err == nil {
		return nil
	}

	if verr, ok := validation.AsErrors(err); ok {
		lines := make([]string, 0, len(verr.Fields))
		for field, msg := range verr.Fields {
			lines = append(lines, fmt.Sprintf("  %s: %s", field, msg))
		}
		sort.Strings(lines)
		return fmt.Errorf("invalid input:\n%s", strings.Join(lines, "\n"))
	}

	var cooldown *service.CooldownError
	if errors.As(err, &cooldown) {
		return fmt.Errorf("please wait %ds before requesting another email", cooldown.Seconds())
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if msg := apiErr.UserMessage(); msg != "" {
			return fmt.Errorf("%s (status %d)", msg, apiErr.StatusCode)
		}
		return err
	}

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		return errors.New("not logged in, run 'newsctl login' first")
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("request timed out after %s", timeout)
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Configuration file")
	rootCmd.PersistentFlags().StringVar(&sessionDB, "session-db", "", "SQLite file keeping the session (default: ~/.newsctl/session.db)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "json", "Output format: json or yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	// Add commands to root
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(forgotPasswordCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(sidebarCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(latestCmd)
	rootCmd.AddCommand(metadataCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(commentsCmd)
	rootCmd.AddCommand(commentCmd)
	rootCmd.AddCommand(replyCmd)
	rootCmd.AddCommand(likeCmd)
	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(postCmd)
	rootCmd.AddCommand(profileCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}
