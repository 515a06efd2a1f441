// Command vtgridd is a small demo host that exposes vtgrid-backed PTY
// sessions over HTTP and WebSockets: a reference integration showing how a
// real server wires the grid up to a shell, not a production multiplexer.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/api"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/config"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/palette"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/session"
	"github.com/coachfortner/vtgrid/cmd/vtgridd/internal/stream"
)

var cfg = config.Default()

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "vtgridd",
	Short: "Headless terminal grid demo host",
	Long:  `Spawns PTY-backed shell sessions and streams their vtgrid character grid over HTTP and WebSockets.`,
	RunE:  run,
}

func init() {
	rootCmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Server port")
	rootCmd.Flags().StringVar(&cfg.Host, "host", cfg.Host, "Bind address (empty means all interfaces)")
	rootCmd.Flags().StringVar(&cfg.BasicAuthUsername, "username", "", "Basic auth username")
	rootCmd.Flags().StringVar(&cfg.BasicAuthPassword, "password", "", "Basic auth password")
	rootCmd.Flags().IntVar(&cfg.DefaultRows, "rows", cfg.DefaultRows, "Default session rows")
	rootCmd.Flags().IntVar(&cfg.DefaultCols, "cols", cfg.DefaultCols, "Default session columns")
	rootCmd.Flags().StringVar(&cfg.DefaultTerm, "term", cfg.DefaultTerm, "TERM value exported to spawned shells")
	rootCmd.Flags().IntVar(&cfg.ScrollbackLines, "scrollback-lines", cfg.ScrollbackLines, "Scrollback line cap per session")
	rootCmd.Flags().IntVar(&cfg.ScrollbackBytes, "scrollback-bytes", cfg.ScrollbackBytes, "Scrollback byte budget per session")
	rootCmd.Flags().StringVar(&cfg.PalettePath, "palette", "", "Path to a JSON palette file to hot-reload")
}

func run(cmd *cobra.Command, args []string) error {
	cfg.LoadFromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}
	if !cfg.HasAuth() {
		log.Println("WARNING: no authentication configured; set --username/--password or VTGRIDD_USERNAME/VTGRIDD_PASSWORD")
	}

	var paletteWatcher *palette.Watcher
	if cfg.PalettePath != "" {
		paletteWatcher = palette.New(cfg.PalettePath)
		if err := paletteWatcher.Start(); err != nil {
			return fmt.Errorf("failed to start palette watcher: %v", err)
		}
	}

	sessionManager := session.NewManager(cfg)
	streamServer := stream.New(cfg, sessionManager)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	})

	apiGroup := router.Group("/api")
	apiGroup.Use(api.BasicAuth(cfg))
	api.NewHandler(sessionManager).RegisterRoutes(apiGroup)

	router.GET("/ws/sessions/:id", streamServer.HandleSession)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: router,
	}

	cleanupTicker := time.NewTicker(cfg.CleanupInterval)
	go func() {
		for range cleanupTicker.C {
			sessionManager.CleanupIdle()
		}
	}()

	go func() {
		addr := fmt.Sprintf("http://localhost:%d", cfg.Port)
		if cfg.Host != "" {
			addr = fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		}
		log.Printf("vtgridd listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down vtgridd...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cleanupTicker.Stop()
	if paletteWatcher != nil {
		paletteWatcher.Stop()
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server forced to shutdown: %v", err)
	}
	log.Println("vtgridd exiting")
	return nil
}
