package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/kurzickkrozz/GWPB/internal/ports"
)

var ErrUnavailable = errors.New("pass is not installed")

// missingEntry is how pass(1) reports an unknown entry on stderr.
const missingEntry = "is not in the password store"

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

// Store keeps secrets as pass(1) entries. The first line of an entry is the
// secret; anything after it is left for the user's own notes.
type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	_, err := s.exec(ctx, key, strings.TrimSpace(value)+"\n", "insert", "--multiline", "--force", key)
	return err
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	stdout, err := s.exec(ctx, key, "", "show", key)
	if err != nil {
		return "", err
	}

	secret, _, _ := strings.Cut(stdout, "\n")
	if secret = strings.TrimSpace(secret); secret == "" {
		return "", fmt.Errorf("pass entry %s has an empty first line: %w", key, ports.ErrSecretNotFound)
	}
	return secret, nil
}

// Delete removes key. An entry that was never stored is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.exec(ctx, key, "", "rm", "--force", key)
	if errors.Is(err, ports.ErrSecretNotFound) {
		return nil
	}
	return err
}

// exec runs one pass subcommand and classifies its failure.
func (s *Store) exec(ctx context.Context, key, input string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, input, args...)
	switch {
	case err == nil:
		return stdout, nil
	case errors.Is(err, ErrUnavailable):
		return "", err
	case strings.Contains(stderr, missingEntry):
		return "", fmt.Errorf("pass entry %s: %w", key, ports.ErrSecretNotFound)
	case stderr != "":
		return "", fmt.Errorf("pass %s %s: %w (%s)", args[0], key, err, stderr)
	default:
		return "", fmt.Errorf("pass %s %s: %w", args[0], key, err)
	}
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}
