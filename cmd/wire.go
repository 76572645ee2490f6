package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bnema/codelynx/internal/adapters/config"
	"github.com/bnema/codelynx/internal/adapters/provider/cerebras"
	markdownrender "github.com/bnema/codelynx/internal/adapters/render/markdown"
	usagerender "github.com/bnema/codelynx/internal/adapters/render/usage"
	tomlrepo "github.com/bnema/codelynx/internal/adapters/repo/toml"
	chainstore "github.com/bnema/codelynx/internal/adapters/secrets/chain"
	"github.com/bnema/codelynx/internal/adapters/workspace"
	"github.com/bnema/codelynx/internal/application"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type app struct {
	service       *application.Service
	settings      *config.Source
	logger        *log.Logger
	homeDir       string
	usageRenderer func(application.UsageStats, usagerender.RenderOptions) (string, error)
	// interactive is true when stdin and stderr are terminals; it enables spinners, markdown and line editing.
	interactive   bool
	readPassword  func() (string, error)
}

func wireApp() (*app, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	settings, err := config.NewSource(viper.New(), homeDir)
	if err != nil {
		return nil, fmt.Errorf("wire settings: %w", err)
	}

	logger := newLogger(os.Stderr, settings.LogLevel())

	usageRepo, err := tomlrepo.NewUsageRepository(settings.Viper())
	if err != nil {
		return nil, fmt.Errorf("wire usage repository: %w", err)
	}

	secretStore, err := chainstore.NewPassFirstWithFileFallback(filepath.Join(homeDir, config.ConfigDir, "secrets"))
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	factory := cerebras.Factory{
		HTTPClient: &http.Client{Transport: http.DefaultTransport},
		Logger:     logger,
	}

	opts := []application.Option{application.WithLogger(logger)}
	if cwd, err := os.Getwd(); err == nil {
		folder, err := workspace.New(cwd)
		if err != nil {
			return nil, fmt.Errorf("wire workspace: %w", err)
		}
		opts = append(opts, application.WithWorkspace(folder))
	}

	return &app{
		service:       application.NewService(settings, secretStore, usageRepo, factory, opts...),
		settings:      settings,
		logger:        logger,
		homeDir:       homeDir,
		usageRenderer: usagerender.Render,
		interactive:   term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd())),
		readPassword:  readPasswordFromTerminal,
	}, nil
}

func newLogger(w io.Writer, level string) *log.Logger {
	parsed, err := log.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		parsed = log.WarnLevel
	}

	return log.NewWithOptions(w, log.Options{
		Level:           parsed,
		Prefix:          "codelynx",
		ReportTimestamp: true,
	})
}

// markdown returns a glamour renderer on a terminal and a pass-through renderer otherwise.
func (a *app) markdown() *markdownrender.Renderer {
	if !a.interactive {
		return markdownrender.Plain()
	}

	renderer, err := markdownrender.New(markdownrender.DefaultWordWrap)
	if err != nil {
		a.logger.Debug("markdown renderer unavailable", "err", err)
		return markdownrender.Plain()
	}
	return renderer
}

func (a *app) historyPath() string {
	return filepath.Join(a.homeDir, config.ConfigDir, "history")
}

func readPasswordFromTerminal() (string, error) {
	value, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", fmt.Errorf("read api key: %w", err)
	}
	return string(value), nil
}
