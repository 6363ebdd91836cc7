package database

import (
	"net"
	"path/filepath"
	"testing"

	"payhost-backend/config"
	"payhost-backend/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectSQLiteMigrates(t *testing.T) {
	db, err := Connect("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	assert.Same(t, db, DB)

	assert.True(t, db.Migrator().HasTable(&models.PluginSetting{}))
	assert.True(t, db.Migrator().HasTable(&models.DebugChange{}))
}

func TestConnectRejectsUnknownDriver(t *testing.T) {
	_, err := Connect("postgres", "whatever")
	assert.Error(t, err)
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	require.NoError(t, ConnectRedis(&config.Config{RedisAddr: host, RedisPort: port}))
	require.NotNil(t, RedisClient)
	assert.NoError(t, RedisClient.Set(Ctx, "k", "v", 0).Err())

	require.NoError(t, CloseRedis())
	assert.Nil(t, RedisClient)
	assert.NoError(t, CloseRedis())
}

func TestConnectRedisFailureLeavesClientNil(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	mr.Close()

	err = ConnectRedis(&config.Config{RedisAddr: host, RedisPort: port})
	assert.Error(t, err)
	assert.Nil(t, RedisClient)
}
