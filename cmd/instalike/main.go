package main

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/instalike/internal/config"
	"github.com/mmcdole/instalike/internal/gateway"
	"github.com/mmcdole/instalike/internal/instalike"
	"github.com/mmcdole/instalike/internal/log"
	"github.com/mmcdole/instalike/internal/service"
	"github.com/mmcdole/instalike/internal/session"
	"github.com/mmcdole/instalike/internal/store"
	"github.com/mmcdole/instalike/internal/tui"
	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run executes one command line. The store is closed on every exit path,
// including a failing command.
func run(args []string) error {
	a := &app{}
	defer a.close()

	root := newRootCmd(a)
	root.SetArgs(args)
	return root.Execute()
}

// app holds the wired dependencies shared by every command
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.SessionStore
	sess   *session.Session
	svc    *tui.Services
}

func newRootCmd(a *app) *cobra.Command {
	var serverURL string

	root := &cobra.Command{
		Use:           "instalike",
		Short:         "Terminal client for the Instalike social network",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !needsSetup(cmd) {
				return nil
			}
			return a.setup(cmd, serverURL)
		},
		RunE: func(*cobra.Command, []string) error {
			return a.runTUI()
		},
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "", "Instalike API base URL (overrides the config file)")

	root.AddCommand(
		newLoginCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newFeedCmd(a),
		newNotificationsCmd(a),
		newProfileCmd(a),
		newPasswordCmd(a),
	)
	return root
}

// setup loads the configuration and wires the client stack
func (a *app) setup(cmd *cobra.Command, serverURL string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if serverURL != "" {
		cfg.Server.URL = strings.TrimRight(serverURL, "/")
	}

	// Setup logger
	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)
	logger.Info("starting instalike", "version", Version, "command", cmd.Name())

	if !cfg.IsConfigured() {
		if err := runSetupFlow(cfg); err != nil {
			return err
		}
	}

	cfg.Watch(func(next *config.Config) {
		log.SetLevel(next.Logging.Level)
		logger.Info("configuration reloaded", "level", next.Logging.Level)
	})

	st, err := store.NewSessionStore(cfg.Storage.Path, cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}
	sess := session.New(st, logger)

	gw := gateway.New(cfg.Server.URL, sess, gateway.Options{
		Timeout:           cfg.Server.Timeout,
		RateLimit:         cfg.Server.RateLimit,
		Burst:             cfg.Server.Burst,
		RetryAfterRefresh: cfg.Server.RetryAfterRefresh,
	}, logger)
	client := instalike.NewClient(gw, logger)

	a.cfg = cfg
	a.logger = logger
	a.store = st
	a.sess = sess
	a.svc = &tui.Services{
		Session:       service.NewSessionService(client, client, client, sess, logger),
		Feed:          service.NewFeedService(client, client, logger),
		Posts:         service.NewPostService(client, logger),
		Notifications: service.NewNotificationService(client, sess, logger),
		Users:         service.NewUserService(client, sess, logger),
		Timeout:       cfg.Server.Timeout,
		DefaultScreen: cfg.UI.DefaultScreen,
		Server:        cfg.Server.URL,
		Logger:        logger,
	}
	return nil
}

// needsSetup is false for cobra's own help and completion commands, which
// must work before the client is configured.
func needsSetup(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		switch c.Name() {
		case "help", "completion", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
			return false
		}
	}
	return true
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Warn("failed to close session store", "error", err)
		}
	}
	if a.logger != nil {
		a.logger.Info("shutting down")
	}
}

func (a *app) runTUI() error {
	p := tea.NewProgram(
		tui.NewModel(a.svc),
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")
	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// runSetupFlow asks for the API URL on first run and saves it
func runSetupFlow(cfg *config.Config) error {
	fmt.Println()
	fmt.Println("Welcome to Instalike!")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("Enter the Instalike API URL (e.g., https://api.instalike.fr): ")
		input, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read input: %w", err)
		}
		url := strings.TrimRight(strings.TrimSpace(input), "/")
		if url == "" {
			fmt.Println("The API URL cannot be empty. Please try again.")
			continue
		}
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			fmt.Println("The API URL must start with http:// or https://")
			continue
		}
		cfg.Server.URL = url
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Println("✓ Configuration saved to", cfg.Dir())
	fmt.Println()
	return nil
}
