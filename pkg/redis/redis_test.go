package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestConfigOptions(t *testing.T) {
	cfg := Config{
		URL:          "redis://:secret@localhost:6380/2",
		ReadTimeout:  1,
		WriteTimeout: 2,
		DialTimeout:  4,
		ClientName:   "feedback-insight-server",
	}

	opts, err := cfg.options()
	require.NoError(t, err)
	require.Equal(t, "localhost:6380", opts.Addr)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, "secret", opts.Password)
	require.Equal(t, time.Second, opts.ReadTimeout)
	require.Equal(t, 2*time.Second, opts.WriteTimeout)
	require.Equal(t, 4*time.Second, opts.DialTimeout)
	require.Equal(t, "feedback-insight-server", opts.ClientName)
}

func TestConfigOptionsBadURL(t *testing.T) {
	cfg := Config{URL: "not-a-redis-url"}
	_, err := cfg.options()
	require.Error(t, err)
}

func TestNewPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := Config{URL: "redis://" + mr.Addr(), ReadTimeout: 1, WriteTimeout: 1, DialTimeout: 1}
	client, err := cfg.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestNewFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := Config{URL: "redis://" + addr, DialTimeout: 1}
	_, err := cfg.New()
	require.Error(t, err)
}
