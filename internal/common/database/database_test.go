package database

import (
	"context"
	"testing"
	"time"

	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/config"
	"github.com/AI-Web3-Studio/mcp-product-suggester/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	client := &PostgresClient{DB: db}
	mock.ExpectPing()
	require.NoError(t, client.Ping(context.Background(), time.Second))

	mock.ExpectPing().WillReturnError(assert.AnError)
	err = client.Ping(context.Background(), time.Second)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeDatabaseConnectionFailed, errors.CodeOf(err))

	mock.ExpectClose()
	require.NoError(t, client.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNewPostgres_PoolSettings(t *testing.T) {
	client, err := NewPostgres(config.PostgresConfig{
		Host:           "localhost",
		Port:           5432,
		Database:       "product_db",
		User:           "shop",
		MaxConnections: 7,
		MaxIdle:        1,
		SSLMode:        "disable",
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, 7, client.GetDB().Stats().MaxOpenConnections)
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client := NewRedis(config.RedisConfig{Address: mr.Addr()})
	defer client.Close()

	require.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}
