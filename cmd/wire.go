package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/kurzickkrozz/GWPB/internal/adapters/logging"
	rosteradapter "github.com/kurzickkrozz/GWPB/internal/adapters/render/roster"
	tomlrepo "github.com/kurzickkrozz/GWPB/internal/adapters/repo/toml"
	chainstore "github.com/kurzickkrozz/GWPB/internal/adapters/secrets/chain"
	filestore "github.com/kurzickkrozz/GWPB/internal/adapters/secrets/file"
	"github.com/kurzickkrozz/GWPB/internal/domain"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

const (
	keySecretsBackend = "secrets.backend"
	keySecretsDir     = "secrets.dir"

	secretsBackendAuto = "auto"
	secretsBackendFile = "file"
)

type app struct {
	cfg            *config
	logger         *slog.Logger
	store          *tomlrepo.PartyRepository
	secretStore    ports.SecretStore
	catalog        domain.Catalog
	rosterRenderer func([]domain.Party, rosteradapter.RenderOptions) (string, error)
	now            func() time.Time
}

func wireApp(configPath string, logOutput io.Writer) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	repo, err := tomlrepo.NewPartyRepository(cfg.viper)
	if err != nil {
		return nil, fmt.Errorf("wire party repository: %w", err)
	}

	secretStore, err := wireSecretStore(cfg)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:            cfg,
		logger:         logging.New(logOutput, cfg.logLevel, cfg.logFormat),
		store:          repo,
		secretStore:    secretStore,
		catalog:        domain.DefaultCatalog(),
		rosterRenderer: rosteradapter.Render,
		now:            time.Now,
	}, nil
}

func wireSecretStore(cfg *config) (ports.SecretStore, error) {
	root := cfg.viper.GetString(keySecretsDir)
	if root == "" {
		defaultRoot, err := filestore.DefaultRoot()
		if err != nil {
			return nil, err
		}
		root = defaultRoot
	}

	switch backend := strings.ToLower(strings.TrimSpace(cfg.viper.GetString(keySecretsBackend))); backend {
	case "", secretsBackendAuto:
		store, err := chainstore.NewTokenStore(root)
		if err != nil {
			return nil, fmt.Errorf("wire secret store chain: %w", err)
		}
		return store, nil
	case secretsBackendFile:
		return filestore.NewStore(root), nil
	default:
		return nil, fmt.Errorf("unknown secrets.backend %q (want %q or %q)", backend, secretsBackendAuto, secretsBackendFile)
	}
}
