package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/kurzickkrozz/GWPB/internal/application"
	"github.com/kurzickkrozz/GWPB/internal/ports"
	"github.com/spf13/viper"
)

const (
	configDirName  = ".gwpb"
	configFileName = "config.toml"

	keyPartyTimeout   = "party.timeout"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keyDiscordAppID   = "discord.app_id"
	keyDiscordGuildID = "discord.guild_id"
)

var (
	errInvalidTimeout = errors.New("party.timeout must be a positive duration")
	errNoBotToken     = errors.New("no discord bot token: set GWPB_DISCORD_TOKEN or run `gwpb token set`")
)

// envOverlay holds environment values that win over the config file.
type envOverlay struct {
	DiscordToken   string `env:"GWPB_DISCORD_TOKEN"`
	DiscordAppID   string `env:"GWPB_DISCORD_APP_ID"`
	DiscordGuildID string `env:"GWPB_DISCORD_GUILD_ID"`
	LogLevel       string `env:"GWPB_LOG_LEVEL"`
}

type config struct {
	viper        *viper.Viper
	path         string
	partyTimeout time.Duration
	logLevel     string
	logFormat    string
	appID        string
	guildID      string
	envToken     string
}

func defaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(homeDir, configDirName, configFileName), nil
}

// loadConfig reads path (or ~/.gwpb/config.toml) and applies the
// environment overlay. A missing file leaves every key at its default.
func loadConfig(path string) (*config, error) {
	if path == "" {
		defaultPath, err := defaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	v := viper.New()
	v.SetDefault(keyPartyTimeout, application.DefaultPartyTimeout)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogFormat, "text")
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("stat config %s: %w", path, err)
	}

	var overlay envOverlay
	if err := env.Parse(&overlay); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	overrides := map[string]string{
		keyDiscordAppID:   overlay.DiscordAppID,
		keyDiscordGuildID: overlay.DiscordGuildID,
		keyLogLevel:       overlay.LogLevel,
	}
	for key, value := range overrides {
		if value != "" {
			v.Set(key, value)
		}
	}

	timeout := v.GetDuration(keyPartyTimeout)
	if timeout <= 0 {
		return nil, fmt.Errorf("%w: %q", errInvalidTimeout, v.GetString(keyPartyTimeout))
	}

	return &config{
		viper:        v,
		path:         path,
		partyTimeout: timeout,
		logLevel:     v.GetString(keyLogLevel),
		logFormat:    v.GetString(keyLogFormat),
		appID:        v.GetString(keyDiscordAppID),
		guildID:      v.GetString(keyDiscordGuildID),
		envToken:     strings.TrimSpace(overlay.DiscordToken),
	}, nil
}

// resolveBotToken prefers the environment and falls back to the secret store.
func (c *config) resolveBotToken(ctx context.Context, secrets ports.SecretStore) (string, error) {
	if c.envToken != "" {
		return c.envToken, nil
	}

	token, err := secrets.Get(ctx, ports.BotTokenKey)
	if err != nil {
		if errors.Is(err, ports.ErrSecretNotFound) {
			return "", errNoBotToken
		}
		return "", fmt.Errorf("read bot token: %w", err)
	}
	return token, nil
}
