package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/whartman-APD/invoice-send-aws/internal/adapters/books"
	"github.com/whartman-APD/invoice-send-aws/internal/adapters/cloudops"
	"github.com/whartman-APD/invoice-send-aws/internal/adapters/docstore"
	"github.com/whartman-APD/invoice-send-aws/internal/adapters/mail"
	tomlregistry "github.com/whartman-APD/invoice-send-aws/internal/adapters/registry/toml"
	filesecrets "github.com/whartman-APD/invoice-send-aws/internal/adapters/secrets/file"
	"github.com/whartman-APD/invoice-send-aws/internal/adapters/tracker"
	"github.com/whartman-APD/invoice-send-aws/internal/config"
	"github.com/whartman-APD/invoice-send-aws/internal/ports"
)

// Secret-store keys for the shared service credentials. Per-client usage
// platform keys are referenced from the client registry instead.
const (
	trackerTokenKey = "tracker/api-token"
	booksTokenKey   = "books/access-token"
	docsTokenKey    = "docs/access-token"
	mailTokenKey    = "mail/api-token"
)

type app struct {
	cfg        config.Config
	logger     *slog.Logger
	secrets    ports.SecretStore
	registry   ports.ClientRegistry
	platforms  ports.UsagePlatformFactory
	httpClient *http.Client
	clock      ports.Clock
}

func wireApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)

	registry, err := tomlregistry.NewRegistry(viper.New())
	if err != nil {
		return nil, fmt.Errorf("wire client registry: %w", err)
	}

	secretsPath := cfg.SecretsPath
	if secretsPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home directory: %w", err)
		}
		secretsPath = filepath.Join(homeDir, ".invoicer", "secrets")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}

	return &app{
		cfg:        cfg,
		logger:     logger,
		secrets:    filesecrets.NewStore(secretsPath),
		registry:   registry,
		platforms:  cloudops.NewFactory(cfg.CloudOpsBaseURL, httpClient),
		httpClient: httpClient,
		clock:      ports.SystemClock{},
	}, nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

func (a *app) trackerClient(ctx context.Context) (*tracker.Client, error) {
	token, err := a.secrets.Get(ctx, trackerTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load tracker credential: %w", err)
	}
	return tracker.NewClient(a.cfg.TrackerBaseURL, token, a.cfg.TrackerListID, a.httpClient), nil
}

func (a *app) booksClient(ctx context.Context) (*books.Client, error) {
	token, err := a.secrets.Get(ctx, booksTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load accounting credential: %w", err)
	}
	return books.NewClient(a.cfg.BooksBaseURL, a.cfg.BooksRealmID, token, a.httpClient), nil
}

func (a *app) docsClient(ctx context.Context) (*docstore.Client, error) {
	token, err := a.secrets.Get(ctx, docsTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load document store credential: %w", err)
	}
	return docstore.NewClient(a.cfg.DocsBaseURL, a.cfg.DocsDriveID, token, a.httpClient), nil
}

func (a *app) mailClient(ctx context.Context) (*mail.Client, error) {
	token, err := a.secrets.Get(ctx, mailTokenKey)
	if err != nil {
		return nil, fmt.Errorf("load mail credential: %w", err)
	}
	return mail.NewClient(a.cfg.MailBaseURL, token, a.httpClient), nil
}
