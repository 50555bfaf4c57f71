package ports

import (
	"context"
	"errors"
)

// BotTokenKey is the secret-store entry holding the Discord bot token.
const BotTokenKey = "gwpb/discord/bot_token"

// ErrSecretNotFound is returned by Get when the key has no value.
var ErrSecretNotFound = errors.New("secret not found")

type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
}
