package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"meal-planner/internal/app"
	"meal-planner/internal/config"
	"meal-planner/internal/logging"
	"meal-planner/internal/shopping"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	application, cleanup, err := app.Setup(ctx, cfg, logger, reg)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	defer cleanup()

	args := os.Args[2:]
	switch os.Args[1] {
	case "clip":
		err = runClip(ctx, application, args)
	case "list":
		err = runList(ctx, application)
	case "show":
		err = runShow(ctx, application, args)
	case "delete":
		err = runDelete(ctx, application, args)
	case "shop":
		err = runShop(ctx, application, args)
	case "plan":
		err = runPlan(ctx, application, args)
	case "serve":
		err = runServe(ctx, application, cfg, logger, reg)
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func runClip(ctx context.Context, a *app.App, urls []string) error {
	if len(urls) == 0 {
		return errors.New("clip needs at least one URL")
	}
	report, err := a.IngestURLs(ctx, urls)
	for _, r := range report.Saved {
		fmt.Printf("saved  %s  %s (%d ingredients, %d steps)\n", r.ID, r.Title, len(r.Ingredients), len(r.Steps))
	}
	for url, ferr := range report.Failed {
		fmt.Printf("failed %s: %v\n", url, ferr)
	}
	if err != nil {
		return err
	}
	if len(report.Saved) == 0 {
		return fmt.Errorf("no recipe saved from %d URL(s)", len(urls))
	}
	return nil
}

func runList(ctx context.Context, a *app.App) error {
	recipes, err := a.ListRecipes(ctx)
	if err != nil {
		return err
	}
	if len(recipes) == 0 {
		fmt.Println("No saved recipes.")
		return nil
	}
	for _, r := range recipes {
		fmt.Printf("%s  %s\n", r.ID, r.Title)
	}
	return nil
}

func runShow(ctx context.Context, a *app.App, args []string) error {
	if len(args) != 1 {
		return errors.New("show needs exactly one recipe ID")
	}
	r, err := a.GetRecipe(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("%s\n", r.Title)
	if r.SourceURL != "" {
		fmt.Printf("Source: %s\n", r.SourceURL)
	}
	fmt.Println("\nIngredients:")
	for _, line := range r.Ingredients {
		fmt.Printf("- %s\n", line)
	}
	if len(r.Steps) > 0 {
		fmt.Println("\nSteps:")
		for i, step := range r.Steps {
			fmt.Printf("%d. %s\n", i+1, step)
		}
	}
	return nil
}

func runDelete(ctx context.Context, a *app.App, ids []string) error {
	if len(ids) == 0 {
		return errors.New("delete needs at least one recipe ID")
	}
	for _, id := range ids {
		if err := a.DeleteRecipe(ctx, id); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", id)
	}
	return nil
}

func runShop(ctx context.Context, a *app.App, ids []string) error {
	var (
		items []shopping.Item
		err   error
	)
	if len(ids) == 0 {
		var res app.PlanResult
		res, err = a.LatestPlan(ctx)
		items = res.Shopping
	} else {
		items, err = a.ShoppingList(ctx, ids)
	}
	if err != nil {
		return err
	}
	fmt.Print(shopping.FormatText(items))
	return nil
}

func runPlan(ctx context.Context, a *app.App, args []string) error {
	planCmd := flag.NewFlagSet("plan", flag.ExitOnError)
	k := planCmd.Int("k", 0, "Number of recipes to plan (0 uses DEFAULT_MEAL_COUNT)")
	if err := planCmd.Parse(args); err != nil {
		return err
	}

	res, err := a.PlanMeals(ctx, *k)
	if err != nil {
		return err
	}
	fmt.Printf("Meal plan %s (%s, overlap score %d)\n", res.Plan.ID, res.Plan.Strategy, res.Plan.Score)
	for i, r := range res.Recipes {
		fmt.Printf("%d. %s\n", i+1, r.Title)
	}
	fmt.Println()
	fmt.Print(shopping.FormatText(res.Shopping))
	return nil
}

func runServe(ctx context.Context, a *app.App, cfg *config.Config, logger *zap.Logger, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", healthHandler(a))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logging.Middleware(logger, mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv, logger)
}

func healthHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h, err := a.Health(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, h.String())
	}
}

// serve runs srv until ctx is cancelled and then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server exiting")
	return nil
}

func printUsage() {
	fmt.Println("Usage: meal-planner <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println(strings.Join([]string{
		"  clip <url>...      Fetch pages and save the recipes found on them",
		"  list               List saved recipes",
		"  show <id>          Print a saved recipe",
		"  delete <id>...     Delete saved recipes",
		"  shop [id...]       Shopping list for the given recipes, or the latest plan",
		"  plan [-k N]        Pick N recipes that share the most ingredients",
		"  serve              Serve /health and /metrics on PORT",
	}, "\n"))
}
