package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/kalambet/checkmate/internal/advisor"
	"github.com/kalambet/checkmate/internal/api"
	"github.com/kalambet/checkmate/internal/chat"
	"github.com/kalambet/checkmate/internal/config"
	"github.com/kalambet/checkmate/internal/news"
	"github.com/kalambet/checkmate/internal/openai"
	"github.com/kalambet/checkmate/internal/storage"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the checkmate server (foreground)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running checkmate server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return stopServer()
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkmate system status",
	RunE: func(cmd *cobra.Command, args []string) error {
		return showStatus(cmd)
	},
}

func pidFilePath(dataDir string) string {
	return filepath.Join(dataDir, "checkmate.pid")
}

func writePIDFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func removePIDFile(path string) {
	os.Remove(path)
}

func runServer() error {
	fmt.Fprintf(os.Stderr, "checkmate version %s\n", version)

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize structured logging.
	logLevel := slog.LevelInfo
	if strings.EqualFold(cfg.Log.Level, "debug") {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// Write PID file. Check if server is already running via health endpoint.
	pidPath := pidFilePath(cfg.Storage.DataDir)
	healthURL := fmt.Sprintf("http://127.0.0.1:%d/health", cfg.Server.Port)
	healthClient := &http.Client{Timeout: 2 * time.Second}
	if resp, err := healthClient.Get(healthURL); err == nil {
		resp.Body.Close()
		if pid, pidErr := readPIDFile(pidPath); pidErr == nil {
			printWarning("checkmate is already running (PID %d)", pid)
			return fmt.Errorf("server already running (PID %d)", pid)
		}
		printWarning("checkmate is already running on port %d", cfg.Server.Port)
		return fmt.Errorf("server already running on port %d", cfg.Server.Port)
	}
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer removePIDFile(pidPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open storage.
	store, err := storage.Open(cfg.Storage.DataDir)
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: closing storage: %v\n", err)
		}
	}()

	// Build the message pipeline.
	llm := openai.NewClientWithBaseURL(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL)
	model := cfg.OpenAI.Model

	searchClient := news.NewClient(cfg.Naver.ClientID, cfg.Naver.ClientSecret)
	newsExtractor := news.NewExtractor(llm, model, searchClient, news.NewPageFetcher())
	if cfg.Naver.ClientID == "" {
		slog.Warn("Naver credentials not set, news-backed extraction will come up empty")
	}

	newAssistant := func() api.Assistant {
		return chat.NewAssistant(
			chat.NewDetector(llm, model),
			chat.NewExtractor(llm, model),
			chat.NewResponder(llm, model),
			newsExtractor,
		)
	}

	commentator := advisor.NewCommentator(llm, model)

	var weather api.WeatherAdviser
	if cfg.Weather.ServiceKey != "" {
		weather = advisor.NewWeatherAdvisor(llm, model, advisor.NewForecastClient(cfg.Weather.ServiceKey))
	} else {
		slog.Warn("weather service key not set, weather advisory disabled")
	}

	mediator := advisor.NewMediator(commentator, weather, cfg.Weather.GridX, cfg.Weather.GridY)

	// Build HTTP handler and server.
	handler := api.NewHandler(api.Deps{
		Store:        store,
		NewAssistant: newAssistant,
		Commentator:  commentator,
		Mediator:     mediator,
		Weather:      weather,
		GridX:        cfg.Weather.GridX,
		GridY:        cfg.Weather.GridY,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	// Build and start MCP server (streamable HTTP transport on its own port).
	mcpSrv := api.NewMCPServer(api.MCPDeps{
		Store:        store,
		NewAssistant: newAssistant,
		Commentator:  commentator,
	})
	mcpAddr := fmt.Sprintf("127.0.0.1:%d", cfg.Server.MCPPort)
	mcpHTTP := server.NewStreamableHTTPServer(mcpSrv)
	go func() {
		slog.Info("MCP server listening", "addr", mcpAddr)
		if err := mcpHTTP.Start(mcpAddr); err != nil && err != http.ErrServerClosed {
			slog.Error("MCP server error", "error", err)
		}
	}()

	// Start server in a goroutine.
	errCh := make(chan error, 1)
	go func() {
		fmt.Fprintf(os.Stderr, "checkmate listening on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for signal or server error.
	select {
	case <-ctx.Done():
		fmt.Fprintln(os.Stderr, "shutting down...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	// Graceful shutdown with timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := mcpHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Warn("MCP server shutdown", "error", err)
	}
	return srv.Shutdown(shutdownCtx)
}

func stopServer() error {
	cfg, err := config.Load()
	if err != nil {
		printError("could not load config: %v", err)
		return err
	}

	pidPath := pidFilePath(cfg.Storage.DataDir)
	pid, err := readPIDFile(pidPath)
	if err != nil {
		printError("checkmate is not running (no PID file)")
		return fmt.Errorf("not running: %w", err)
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		printError("could not find process %d", pid)
		return err
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		printError("could not stop checkmate (PID %d): %v", pid, err)
		removePIDFile(pidPath)
		return err
	}

	printSuccess("Sent stop signal to checkmate (PID %d)", pid)
	return nil
}

func showStatus(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		// Still show partial status even if config fails.
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := false
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if resp.StatusCode == 200 {
			running = true
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Model", "%s", cfg.OpenAI.Model)
	printStatus("News search", "%s", configuredLabel(cfg.Naver.ClientID != ""))
	printStatus("Weather", "%s", configuredLabel(cfg.Weather.ServiceKey != ""))

	// Show the upcoming event count when a token is at hand.
	if running {
		if apiCl, err := newAPIClient(cmd); err == nil && apiCl.token != "" {
			if eventsResp, err := apiCl.get(cmd.Context(), "/events"); err == nil {
				var events []eventLine
				if decodeJSON(eventsResp, &events) == nil {
					printStatus("Upcoming events", "%d", len(events))
				}
			}
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func configuredLabel(ok bool) string {
	if ok {
		return "configured"
	}
	return "not configured"
}
