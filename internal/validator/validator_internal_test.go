package validator

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"gotest.tools/v3/assert"

	"github.com/chatia/deploykit/internal/envfile"
)

func TestRealtimeURL(t *testing.T) {
	testCases := []struct {
		name       string
		backendURL string
		want       string
	}{
		{
			name:       "http backend",
			backendURL: "http://localhost:8397",
			want:       "ws://localhost:8397/socket.io/?EIO=4&transport=websocket",
		},
		{
			name:       "https backend",
			backendURL: "https://api.example.com",
			want:       "wss://api.example.com/socket.io/?EIO=4&transport=websocket",
		},
		{
			name:       "path is replaced",
			backendURL: "http://127.0.0.1:9000/api",
			want:       "ws://127.0.0.1:9000/socket.io/?EIO=4&transport=websocket",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := realtimeURL(tc.backendURL)
			assert.NilError(t, err)
			assert.Equal(t, got, tc.want)
		})
	}
}

func TestRealtimeURLInvalid(t *testing.T) {
	_, err := realtimeURL("http://[::1")
	assert.ErrorContains(t, err, "invalid backend url")
}

func TestRedisPinger(t *testing.T) {
	srv := miniredis.RunT(t)

	reply, err := redisPinger{}.Ping(context.Background(), envfile.CacheParams{Addr: srv.Addr()})
	assert.NilError(t, err)
	assert.Equal(t, reply, "PONG")
}

func TestRedisPingerURI(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.RequireAuth("hunter2")

	params := envfile.CacheParams{
		URI:  "redis://:hunter2@" + srv.Addr() + "/0",
		Addr: "127.0.0.1:1",
	}
	reply, err := redisPinger{}.Ping(context.Background(), params)
	assert.NilError(t, err)
	assert.Equal(t, reply, "PONG")
}

func TestRedisPingerWrongPassword(t *testing.T) {
	srv := miniredis.RunT(t)
	srv.RequireAuth("hunter2")

	_, err := redisPinger{}.Ping(context.Background(), envfile.CacheParams{Addr: srv.Addr(), Password: "nope"})
	assert.ErrorContains(t, err, "ping")
}

func TestRedisPingerBadURI(t *testing.T) {
	_, err := redisPinger{}.Ping(context.Background(), envfile.CacheParams{URI: "mysql://nope"})
	assert.ErrorContains(t, err, "invalid REDIS_URI")
}
