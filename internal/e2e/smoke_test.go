package e2e

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writePartiesFixture(home))

	stdout, stderr, err := runGWPB(t, binaryPath, home, "party", "templates")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Underworld Speed Clear")

	stdout, stderr, err = runGWPB(t, binaryPath, home, "party", "list")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "Underworld Speed Clear (p-1)")
	assert.Contains(t, stdout, "Bob (external)")

	stdout, stderr, err = runGWPB(t, binaryPath, home, "party", "list", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	var parties []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &parties))
	require.Len(t, parties, 1)
	assert.Equal(t, "uwsc", parties[0]["kind"])
}

func TestServeFailsFastWithoutToken(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)
	require.NoError(t, writePartiesFixture(home))

	_, stderr, err := runGWPB(t, binaryPath, home, "serve")
	require.Error(t, err)
	assert.Contains(t, stderr, "no discord bot token")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "gwpb-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/gwpb")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build gwpb binary: %s", string(output))
	return binaryPath
}

func runGWPB(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(os.Environ(), "HOME="+home, "GWPB_DISCORD_TOKEN=")

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}

func writePartiesFixture(home string) error {
	configDir := filepath.Join(home, ".gwpb")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return err
	}

	config := `[secrets]
backend = "file"
`
	if err := os.WriteFile(filepath.Join(configDir, "config.toml"), []byte(config), 0o600); err != nil {
		return err
	}

	parties := `version = 1

[[parties]]
id = "p-1"
kind = "uwsc"
leader = "100"
created_at = "2026-03-14T19:42:07Z"

[[parties.slots]]
role = "T1"
occupant_type = "member"
occupant = "100"

[[parties.slots]]
role = "T2"

[[parties.slots]]
role = "T3"

[[parties.slots]]
role = "T4"

[[parties.slots]]
role = "Spiker"
occupant_type = "external"
occupant = "Bob"

[[parties.slots]]
role = "Emo"

[[parties.slots]]
role = "Pinion"

[[parties.slots]]
role = "LT"
`
	return os.WriteFile(filepath.Join(configDir, "parties.toml"), []byte(parties), 0o600)
}
