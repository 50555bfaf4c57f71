package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/kurzickkrozz/GWPB/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const missingTokenStderr = "Error: gwpb/discord/bot_token is not in the password store."

func fakePass(t *testing.T, wantArgs []string, wantInput string, stdout, stderr string, err error) *Store {
	t.Helper()

	return &Store{
		run: func(_ context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, wantArgs, args)
			assert.Equal(t, wantInput, input)
			return stdout, stderr, err
		},
	}
}

func TestStorePutInsertsTrimmedToken(t *testing.T) {
	t.Parallel()

	store := fakePass(t, []string{"insert", "--multiline", "--force", ports.BotTokenKey}, "bot-token\n", "", "", nil)

	require.NoError(t, store.Put(context.Background(), ports.BotTokenKey, " bot-token\n"))
}

func TestStoreGet(t *testing.T) {
	t.Parallel()

	showArgs := []string{"show", ports.BotTokenKey}
	tests := []struct {
		name     string
		stdout   string
		stderr   string
		err      error
		want     string
		wantIs   error
		contains []string
	}{
		{name: "first line is the token", stdout: "bot-token\nrotated: 2026-03-01\n", want: "bot-token"},
		{name: "missing entry", stderr: missingTokenStderr, err: errors.New("exit status 1"), wantIs: ports.ErrSecretNotFound},
		{name: "blank first line", stdout: "\nnotes only\n", wantIs: ports.ErrSecretNotFound},
		{name: "pass not installed", err: ErrUnavailable, wantIs: ErrUnavailable},
		{
			name:     "gpg failure keeps stderr",
			stderr:   "gpg: decryption failed",
			err:      errors.New("exit status 2"),
			contains: []string{"pass show", ports.BotTokenKey, "decryption failed"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			store := fakePass(t, showArgs, "", tc.stdout, tc.stderr, tc.err)
			got, err := store.Get(context.Background(), ports.BotTokenKey)

			switch {
			case tc.wantIs != nil:
				assert.ErrorIs(t, err, tc.wantIs)
			case len(tc.contains) > 0:
				require.Error(t, err)
				assert.NotErrorIs(t, err, ports.ErrSecretNotFound)
				for _, part := range tc.contains {
					assert.ErrorContains(t, err, part)
				}
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestStoreDeleteRemovesEntry(t *testing.T) {
	t.Parallel()

	store := fakePass(t, []string{"rm", "--force", ports.BotTokenKey}, "", "", "", nil)

	require.NoError(t, store.Delete(context.Background(), ports.BotTokenKey))
}

func TestStoreDeleteMissingEntryIsNoop(t *testing.T) {
	t.Parallel()

	store := fakePass(t, []string{"rm", "--force", ports.BotTokenKey}, "", "", missingTokenStderr, errors.New("exit status 1"))

	require.NoError(t, store.Delete(context.Background(), ports.BotTokenKey))
}

func TestStoreSkipsPassOnCanceledContext(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(context.Context, string, ...string) (string, string, error) {
			t.Fatal("pass must not run after the context ends")
			return "", "", nil
		},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Get(ctx, ports.BotTokenKey)
	assert.ErrorIs(t, err, context.Canceled)
}
