package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/logging"
	"github.com/lens-forum/app/content"
	"github.com/lens-forum/app/domain"
	"github.com/lens-forum/app/middleware"
	"github.com/lens-forum/app/querycache"
	"github.com/lens-forum/app/thread"
	"github.com/lens-forum/app/ui"
	"github.com/lens-forum/app/ui/common"
	"github.com/lens-forum/app/util"
	"github.com/lens-forum/app/web"
	"github.com/muesli/termenv"
)

// App represents the main application with all its servers and dependencies
type App struct {
	config     *util.AppConfig
	cache      *querycache.Cache
	source     content.Source
	sshServer  *ssh.Server
	httpServer *http.Server
	done       chan os.Signal
}

// New creates a new App instance with the given configuration
func New(conf *util.AppConfig) (*App, error) {
	return &App{
		config: conf,
		done:   make(chan os.Signal, 1),
	}, nil
}

// Initialize builds the content client, the shared query cache and the servers
func (a *App) Initialize() error {
	keyPath := util.ResolveFilePath(a.config.Conf.SigningKey)
	log.Printf("Using signing key at: %s", keyPath)
	key, err := util.LoadOrCreateSigningKey(keyPath)
	if err != nil {
		return fmt.Errorf("failed to load signing key: %w", err)
	}

	client := content.NewClient(content.Options{
		BaseURL: a.config.Conf.ApiURL,
		Timeout: a.config.Conf.ApiTimeout,
		Rate:    a.config.Conf.ApiRate,
		Burst:   a.config.Conf.ApiBurst,
		Signer:  content.NewSigner(key, util.Name),
	})
	a.cache = querycache.New(a.config.Conf.StaleTime)
	a.source = querycache.NewSource(client, a.cache)

	sshKeyPath := util.ResolveFilePath("lensforumhostkey")
	log.Printf("Using SSH host key at: %s", sshKeyPath)

	sshServer, err := wish.NewServer(
		wish.WithAddress(fmt.Sprintf("%s:%d", a.config.Conf.Host, a.config.Conf.SshPort)),
		wish.WithHostKeyPath(sshKeyPath),
		wish.WithPublicKeyAuth(func(ssh.Context, ssh.PublicKey) bool { return true }),
		wish.WithMiddleware(
			middleware.MainTui(a.Env(domain.Account{})),
			middleware.AuthMiddleware(a.config),
			logging.MiddlewareWithLogger(log.Default()),
		),
	)
	if err != nil {
		return fmt.Errorf("failed to create SSH server: %w", err)
	}
	a.sshServer = sshServer

	a.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", a.config.Conf.Host, a.config.Conf.HttpPort),
		Handler: web.Router(a.config, a.source),
	}

	return nil
}

// Env is the per-session environment for acc
func (a *App) Env(acc domain.Account) common.Env {
	return common.Env{
		Source:    a.source,
		Cache:     a.cache,
		Account:   acc,
		Community: a.config.Conf.Community,
		PageSize:  a.config.Conf.PageSize,
		Timeout:   a.config.Conf.ApiTimeout,
		Gate: thread.Gate{
			Required: a.config.Conf.RequireReputation,
			MinScore: a.config.Conf.MinReputation,
		},
		MaxContextDepth: a.config.Conf.MaxContextDepth,
	}
}

// RunLocal runs the TUI in the current terminal as the configured local account
func (a *App) RunLocal() error {
	acc := domain.Account{}
	if handle := a.config.LocalAccount; handle != "" {
		ac, ok := a.config.FindAccountByHandle(handle)
		if !ok {
			return fmt.Errorf("local account %q is not configured", handle)
		}
		acc = middleware.AccountFromConf(ac, "")
	}

	lipgloss.SetColorProfile(termenv.EnvColorProfile())

	width, height := common.MinWidth+10, common.MinHeight+10
	p := tea.NewProgram(ui.NewModel(a.Env(acc), width, height), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("local session: %w", err)
	}
	return nil
}

// Start starts all servers and blocks until a shutdown signal is received
func (a *App) Start() error {
	signal.Notify(a.done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Printf("Starting SSH server on %s:%d", a.config.Conf.Host, a.config.Conf.SshPort)
	go func() {
		if err := a.sshServer.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatalf("SSH server error: %v", err)
		}
	}()

	log.Printf("Starting HTTP server on %s:%d", a.config.Conf.Host, a.config.Conf.HttpPort)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-a.done
	log.Println("Shutdown signal received")

	return a.Shutdown()
}

// Shutdown gracefully stops all servers with a 30 second timeout
func (a *App) Shutdown() error {
	log.Println("Initiating graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var shutdownErr error

	log.Println("Stopping HTTP server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		shutdownErr = err
	} else {
		log.Println("HTTP server stopped gracefully")
	}

	log.Println("Stopping SSH server...")
	if err := a.sshServer.Shutdown(ctx); err != nil {
		log.Printf("SSH server shutdown error: %v", err)
		if shutdownErr == nil {
			shutdownErr = err
		}
	} else {
		log.Println("SSH server stopped gracefully")
	}

	log.Println("All servers stopped")
	return shutdownErr
}
