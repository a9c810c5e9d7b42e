// Package cli holds the cobra command tree of the time-tracker binary.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"time-tracker/internal/adapter/api"
	"time-tracker/internal/config"
)

// options are the persistent flags shared by every command.
type options struct {
	verbose   bool
	server    string
	token     string
	tokenFile string

	log *slog.Logger
}

// NewRootCmd builds the command tree. Logs go to logOut.
func NewRootCmd(logOut io.Writer) *cobra.Command {
	o := &options{}
	client := config.LoadClient()

	root := &cobra.Command{
		Use:   "time-tracker",
		Short: "Track working time with a start/pause/stop timer",
		Long: `time-tracker is both the REST server and its command-line client.

Examples:
  time-tracker serve                          # run the API server
  time-tracker migrate --seed                 # apply migrations and create the demo user
  time-tracker login --email demo@example.com # store a session token
  time-tracker timer start "Write report" -c Work
  time-tracker timer watch                    # live stopwatch
  time-tracker stats weekly`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if o.verbose {
				level = slog.LevelDebug
			}
			o.log = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(o.log)
		},
	}

	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false,
		"Enable verbose logging")
	root.PersistentFlags().StringVar(&o.server, "server", client.Server,
		"API server base URL (env TT_SERVER)")
	root.PersistentFlags().StringVar(&o.token, "token", client.Token,
		"Session token (env TT_TOKEN, otherwise the stored login)")
	root.PersistentFlags().StringVar(&o.tokenFile, "token-file", defaultTokenFile(),
		"Where login stores the session token")
	_ = root.PersistentFlags().MarkHidden("token-file")

	root.AddCommand(
		newServeCmd(o),
		newMigrateCmd(o),
		newRegisterCmd(o),
		newLoginCmd(o),
		newLogoutCmd(o),
		newMeCmd(o),
		newCategoriesCmd(o),
		newTimerCmd(o),
		newEntriesCmd(o),
		newStatsCmd(o),
		newExportCmd(o),
	)
	return root
}

var errNotLoggedIn = errors.New("not logged in, run `time-tracker login` first")

// apiClient returns a client without requiring a session.
func (o *options) apiClient() *api.Client {
	return api.NewClient(o.server, o.resolveToken(), o.log)
}

// authedClient returns a client carrying a session token.
func (o *options) authedClient() (*api.Client, error) {
	c := o.apiClient()
	if c.Token() == "" {
		return nil, errNotLoggedIn
	}
	return c, nil
}

func (o *options) resolveToken() string {
	if o.token != "" {
		return o.token
	}
	if o.tokenFile == "" {
		return ""
	}
	b, err := os.ReadFile(o.tokenFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (o *options) saveToken(token string) error {
	if o.tokenFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(o.tokenFile), 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	return os.WriteFile(o.tokenFile, []byte(token+"\n"), 0o600)
}

func (o *options) clearToken() error {
	if o.tokenFile == "" {
		return nil
	}
	if err := os.Remove(o.tokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "time-tracker", "token")
}
