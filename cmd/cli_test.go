package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	filestore "github.com/kurzickkrozz/GWPB/internal/adapters/secrets/file"
	"github.com/kurzickkrozz/GWPB/internal/application"
	"github.com/kurzickkrozz/GWPB/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartyListShowsSavedParties(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))

	stdout, _, err := executeCLI(t, home, "party", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "parties: 1")
	assert.Contains(t, stdout, "Domain of Anguish (p-1)")
	assert.Contains(t, stdout, "leader: 100")
	assert.Contains(t, stdout, "@100")
	assert.Contains(t, stdout, "Bob (external)")
}

func TestPartyListJSONOutput(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))

	stdout, _, err := executeCLI(t, home, "party", "list", "--json")
	require.NoError(t, err)
	require.True(t, json.Valid([]byte(stdout)))

	var parties []partyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &parties))
	require.Len(t, parties, 1)
	assert.Equal(t, "p-1", parties[0].ID)
	assert.Equal(t, "doa", parties[0].Kind)
	assert.Equal(t, "chan-1/msg-1", parties[0].PresentationRef)
	assert.True(t, parties[0].CreatedAt.Add(application.DefaultPartyTimeout).Equal(parties[0].ExpiresAt))
	require.Len(t, parties[0].Slots, 8)
	assert.Equal(t, "external", parties[0].Slots[2].OccupantType)
	assert.Equal(t, "Bob", parties[0].Slots[2].Occupant)
}

func TestPartyListWithoutStateFile(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "party", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "parties: 0")
	assert.Contains(t, stdout, "No active parties.")
}

func TestPartyListUsesConfiguredTimeout(t *testing.T) {
	home := t.TempDir()
	config := fileBackendConfig(home) + "\n[party]\ntimeout = \"90m\"\n"
	require.NoError(t, writeFixture(home, config))

	stdout, _, err := executeCLI(t, home, "party", "list", "--json")
	require.NoError(t, err)

	var parties []partyOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &parties))
	require.Len(t, parties, 1)
	assert.True(t, parties[0].CreatedAt.Add(90*time.Minute).Equal(parties[0].ExpiresAt))
}

func TestPartyTemplatesListsCatalog(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "party", "templates")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Party Templates")
	assert.Contains(t, stdout, "Domain of Anguish")
	assert.Contains(t, stdout, "Underworld Speed Clear")
	assert.Contains(t, stdout, "Cryway")
}

func TestTokenSetRequiresValueFlag(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))

	_, _, err := executeCLI(t, home, "token", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"value\" not set")
}

func TestTokenSetRejectsBlankValue(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))

	_, _, err := executeCLI(t, home, "token", "set", "--value", "   ")
	require.ErrorIs(t, err, errEmptyToken)
}

func TestTokenSetThenRemove(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))
	secrets := filestore.NewStore(secretsDir(home))

	stdout, _, err := executeCLI(t, home, "token", "set", "--value", "  bot-token-123  ")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bot token stored")

	stored, err := secrets.Get(context.Background(), ports.BotTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "bot-token-123", stored)

	stdout, _, err = executeCLI(t, home, "token", "remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, "bot token removed")

	_, err = secrets.Get(context.Background(), ports.BotTokenKey)
	require.ErrorIs(t, err, ports.ErrSecretNotFound)
}

func TestServeWithoutTokenFails(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, fileBackendConfig(home)))
	t.Setenv("GWPB_DISCORD_TOKEN", "")

	_, _, err := executeCLI(t, home, "serve")
	require.ErrorIs(t, err, errNoBotToken)
}

func TestInvalidPartyTimeoutIsRejected(t *testing.T) {
	home := t.TempDir()
	config := fileBackendConfig(home) + "\n[party]\ntimeout = \"-1h\"\n"
	require.NoError(t, writeFixture(home, config))

	_, _, err := executeCLI(t, home, "party", "list")
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidTimeout)
}

func TestUnknownSecretsBackendIsRejected(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, "[secrets]\nbackend = \"vault\"\n"))

	_, _, err := executeCLI(t, home, "token", "remove")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown secrets.backend \"vault\"")
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeFixture(home, "this is = = not toml"))

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestExplicitConfigFlag(t *testing.T) {
	home := t.TempDir()
	configPath := filepath.Join(t.TempDir(), "custom.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[party]\ntimeout = \"0s\"\n"), 0o600))

	_, _, err := executeCLI(t, home, "--config", configPath, "party", "templates")
	require.ErrorIs(t, err, errInvalidTimeout)
}

func TestUnknownCommand(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "raid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command \"raid\"")
}

func TestLoadConfigAppliesEnvironmentOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[discord]
app_id = "file-app"
guild_id = "file-guild"

[log]
level = "warn"
format = "json"
`), 0o600))

	t.Setenv("GWPB_DISCORD_TOKEN", "  env-token  ")
	t.Setenv("GWPB_DISCORD_APP_ID", "")
	t.Setenv("GWPB_DISCORD_GUILD_ID", "env-guild")
	t.Setenv("GWPB_LOG_LEVEL", "debug")

	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "file-app", cfg.appID)
	assert.Equal(t, "env-guild", cfg.guildID)
	assert.Equal(t, "debug", cfg.logLevel)
	assert.Equal(t, "json", cfg.logFormat)
	assert.Equal(t, application.DefaultPartyTimeout, cfg.partyTimeout)

	token, err := cfg.resolveBotToken(context.Background(), filestore.NewStore(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, "env-token", token)
}

func TestResolveBotTokenFallsBackToSecretStore(t *testing.T) {
	t.Setenv("GWPB_DISCORD_TOKEN", "")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	secrets := filestore.NewStore(t.TempDir())
	_, err = cfg.resolveBotToken(context.Background(), secrets)
	require.ErrorIs(t, err, errNoBotToken)

	require.NoError(t, secrets.Put(context.Background(), ports.BotTokenKey, "stored-token"))
	token, err := cfg.resolveBotToken(context.Background(), secrets)
	require.NoError(t, err)
	assert.Equal(t, "stored-token", token)
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func secretsDir(home string) string {
	return filepath.Join(home, ".gwpb", "secrets")
}

func fileBackendConfig(home string) string {
	return "[secrets]\nbackend = \"file\"\ndir = \"" + filepath.ToSlash(secretsDir(home)) + "\"\n"
}

func writeFixture(home, config string) error {
	configDir := filepath.Join(home, ".gwpb")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600); err != nil {
		return err
	}

	parties := `version = 1

[[parties]]
id = "p-1"
kind = "doa"
leader = "100"
created_at = "2026-03-14T19:42:07Z"
presentation_ref = "chan-1/msg-1"

[[parties.slots]]
role = "Tank"
occupant_type = "member"
occupant = "100"

[[parties.slots]]
role = "Emo"

[[parties.slots]]
role = "Bonder"
occupant_type = "external"
occupant = "Bob"

[[parties.slots]]
role = "Healer"

[[parties.slots]]
role = "Spiker"

[[parties.slots]]
role = "Spiker"

[[parties.slots]]
role = "Spiker"

[[parties.slots]]
role = "Spiker"
`
	return os.WriteFile(filepath.Join(configDir, "parties.toml"), []byte(parties), 0o600)
}
