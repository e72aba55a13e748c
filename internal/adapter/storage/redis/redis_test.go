package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"multichain-settlement/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redisConfigFor(t *testing.T, s *miniredis.Miniredis) config.RedisConfig {
	t.Helper()
	port, err := strconv.Atoi(s.Port())
	require.NoError(t, err)
	return config.RedisConfig{Host: s.Host(), Port: port, Timeout: 200 * time.Millisecond}
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name        string
		timeout     time.Duration
		wantTimeout time.Duration
	}{
		{name: "configured timeout", timeout: 500 * time.Millisecond, wantTimeout: 500 * time.Millisecond},
		{name: "library default", timeout: 0, wantTimeout: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := options(config.RedisConfig{Host: "redis.internal", Port: 6380, Password: "pw", DB: 2, Timeout: tt.timeout})

			assert.Equal(t, "redis.internal:6380", opts.Addr)
			assert.Equal(t, "pw", opts.Password)
			assert.Equal(t, 2, opts.DB)
			assert.Equal(t, tt.wantTimeout, opts.DialTimeout)
			assert.Equal(t, tt.wantTimeout, opts.ReadTimeout)
			assert.Equal(t, tt.wantTimeout, opts.WriteTimeout)
		})
	}
}

func TestNewClient(t *testing.T) {
	s := miniredis.RunT(t)

	client, err := NewClient(context.Background(), redisConfigFor(t, s), zerolog.Nop())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
	assert.True(t, s.Exists("k"))
}

func TestNewClient_Unreachable(t *testing.T) {
	s := miniredis.RunT(t)
	cfg := redisConfigFor(t, s)
	s.Close()

	client, err := NewClient(context.Background(), cfg, zerolog.Nop())
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "pinging redis at "+cfg.Addr())
}
