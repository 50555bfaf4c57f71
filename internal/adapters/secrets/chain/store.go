package chain

import (
	"context"
	"errors"
	"fmt"

	filestore "github.com/kurzickkrozz/GWPB/internal/adapters/secrets/file"
	passstore "github.com/kurzickkrozz/GWPB/internal/adapters/secrets/pass"
	"github.com/kurzickkrozz/GWPB/internal/ports"
)

var errNoBackends = errors.New("secret store chain needs at least one backend")

// Backend is one named link in the chain. The name only labels errors.
type Backend struct {
	Name  string
	Store ports.SecretStore
}

// Store tries its backends in order. Reads return the first stored value,
// writes land in the first backend that accepts them, and deletes clear
// every backend so a removed token cannot come back from a later one.
type Store struct {
	backends []Backend
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(backends ...Backend) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend.Store == nil {
			return nil, fmt.Errorf("secret backend %d (%s) is nil", i, backend.Name)
		}
	}
	return &Store{backends: backends}, nil
}

// NewTokenStore keeps the bot token in pass when it is installed and in
// 0600 files under fileRoot otherwise.
func NewTokenStore(fileRoot string) (*Store, error) {
	return NewStore(
		Backend{Name: "pass", Store: passstore.NewStore()},
		Backend{Name: "file", Store: filestore.NewStore(fileRoot)},
	)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	var failures []error
	for _, backend := range s.backends {
		err := backend.Store.Put(ctx, key, value)
		if err == nil {
			return nil
		}
		if isContextError(err) {
			return err
		}
		if !errors.Is(err, passstore.ErrUnavailable) {
			failures = append(failures, labeled(backend, err))
		}
	}

	if len(failures) == 0 {
		return fmt.Errorf("store secret %s: no usable backend", key)
	}
	return fmt.Errorf("store secret %s: %w", key, errors.Join(failures...))
}

// Get reports ErrSecretNotFound only when no backend failed for another
// reason; a real failure is more useful than "not found".
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var failures []error
	for _, backend := range s.backends {
		value, err := backend.Store.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if isContextError(err) {
			return "", err
		}
		if !isAbsent(err) {
			failures = append(failures, labeled(backend, err))
		}
	}

	if len(failures) == 0 {
		return "", fmt.Errorf("secret %s: %w", key, ports.ErrSecretNotFound)
	}
	return "", fmt.Errorf("read secret %s: %w", key, errors.Join(failures...))
}

func (s *Store) Delete(ctx context.Context, key string) error {
	var failures []error
	for _, backend := range s.backends {
		err := backend.Store.Delete(ctx, key)
		if err == nil || isAbsent(err) {
			continue
		}
		if isContextError(err) {
			return err
		}
		failures = append(failures, labeled(backend, err))
	}

	if len(failures) == 0 {
		return nil
	}
	return fmt.Errorf("delete secret %s: %w", key, errors.Join(failures...))
}

func labeled(backend Backend, err error) error {
	return fmt.Errorf("%s backend: %w", backend.Name, err)
}

func isAbsent(err error) bool {
	return errors.Is(err, ports.ErrSecretNotFound) || errors.Is(err, passstore.ErrUnavailable)
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
