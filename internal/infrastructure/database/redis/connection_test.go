package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/marketflow-backend/internal/pkg/logger"
)

func TestNewFromClient_Health(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), logger.Discard())
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Health(context.Background()))
	assert.NotNil(t, client.GetClient())

	mr.Close()
	assert.Error(t, client.Health(context.Background()))
}

func TestNewFromClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewFromClient(redis.NewClient(&redis.Options{Addr: addr}), logger.Discard())
	assert.Error(t, err)
}
