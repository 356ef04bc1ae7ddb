package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"partsdesk/internal/config"
	"partsdesk/internal/console"
	"partsdesk/internal/desk"
	"partsdesk/internal/domain"
	"partsdesk/internal/jobs"
	"partsdesk/internal/logger"
	"partsdesk/internal/partsapi"
	"partsdesk/internal/scheduler"
	"partsdesk/internal/security"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.yaml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to a dotenv file loaded before the configuration")
	runOnce := flag.Bool("run-once", false, "In watch mode, run every job once and exit")
	flag.Usage = usage
	flag.Parse()

	if err := config.LoadEnvFile(*envPath); err != nil {
		log.Fatalf("Failed to load env file: %v", err)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting partsdesk...", "base_url", cfg.API.BaseURL, "locale", cfg.UI.Locale)

	viewer, err := security.ResolveViewer(cfg.Session.IdentityToken, cfg.Session.IdentitySecret, domain.Viewer{
		Username:        cfg.Session.Username,
		Supervisor:      cfg.Session.Supervisor,
		CategoryManager: cfg.Session.CategoryManager,
	})
	if err != nil {
		log.Fatalf("Failed to resolve session identity: %v", err)
	}
	logger.Info("Session identity resolved", "username", viewer.Username, "supervisor", viewer.Supervisor)

	client, err := partsapi.New(partsapi.Options{
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.Timeout(),
		UserAgent:  cfg.API.UserAgent,
		CookieName: cfg.Session.CookieName,
		SessionID:  cfg.Session.SessionID,
		CSRFToken:  cfg.Session.CSRFToken,
	})
	if err != nil {
		log.Fatalf("Failed to create API client: %v", err)
	}

	term := console.NewTerminal(os.Stdin, os.Stdout, cfg.UI.Locale)
	app := desk.New(desk.Options{
		API:       client,
		Presenter: term,
		Viewer:    viewer,
		Locale:    cfg.UI.Locale,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	cmd := "shell"
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "shell":
		err = console.NewShell(app, term, cfg.Export.Dir).Run(ctx)
	case "watch":
		if len(args) != 1 {
			usage()
			os.Exit(2)
		}
		err = watch(ctx, app, cfg, desk.ViewID(args[0]), *runOnce)
	case "export":
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		err = exportView(ctx, app, desk.ViewID(args[0]), args[1])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("partsdesk failed", "command", cmd, "error", err)
		os.Exit(1)
	}
}

// watch shows one table and keeps it fresh on the configured schedule.
func watch(ctx context.Context, app *desk.App, cfg *config.Config, view desk.ViewID, once bool) error {
	if v, ok := desk.LookupView(view); !ok || !v.HasTable() {
		return fmt.Errorf("%w: %q has no table to watch", desk.ErrUnknownView, view)
	}
	if err := app.Activate(ctx, view); err != nil {
		logger.Warn("Initial load failed", "view", view, "error", err)
	}

	jobRunner := jobs.NewJobRunner(app, string(view), cfg)
	if once {
		jobRunner.RunAll()
		return nil
	}

	cronScheduler, err := scheduler.NewScheduler(jobRunner)
	if err != nil {
		return err
	}
	cronScheduler.Start()
	logger.Info("Watching table. Press Ctrl+C to stop.", "view", view, "next", cronScheduler.Next())

	<-ctx.Done()
	cronScheduler.Stop()
	logger.Info("Watch stopped. Goodbye!")
	return nil
}

// exportView loads one table and writes it to path.
func exportView(ctx context.Context, app *desk.App, view desk.ViewID, path string) error {
	if err := app.Activate(ctx, view); err != nil {
		return err
	}
	if err := app.Export(path); err != nil {
		return err
	}
	fmt.Println(path)
	return nil
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: partsdesk [flags] [shell | watch <view> | export <view> <file>]\n\nViews:\n")
	for _, v := range desk.Views() {
		fmt.Fprintf(os.Stderr, "  - %s\n", v.ID)
	}
	fmt.Fprintf(os.Stderr, "\nFlags:\n")
	flag.PrintDefaults()
}
