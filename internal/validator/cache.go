package validator

import (
	"context"

	redis "github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"

	"github.com/chatia/deploykit/internal/envfile"
)

// CachePinger sends PING to the cache server and returns its reply.
type CachePinger interface {
	Ping(ctx context.Context, params envfile.CacheParams) (string, error)
}

type redisPinger struct{}

func (redisPinger) Ping(ctx context.Context, params envfile.CacheParams) (string, error) {
	opts := &redis.Options{Addr: params.Addr, Password: params.Password, DB: params.DB}
	if params.URI != "" {
		parsed, err := redis.ParseURL(params.URI)
		if err != nil {
			return "", eris.Wrap(err, "invalid REDIS_URI")
		}
		opts = parsed
	}
	// one attempt per check
	opts.MaxRetries = -1

	client := redis.NewClient(opts)
	defer client.Close()

	reply, err := client.Ping(ctx).Result()
	if err != nil {
		return "", eris.Wrapf(err, "ping %s", opts.Addr)
	}
	return reply, nil
}
