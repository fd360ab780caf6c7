/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		App: AppConfig{Env: "development", Name: "docstore-test"},
		Database: DatabaseConfig{
			URI:         "mongodb://localhost:27017",
			Name:        "test",
			Debug:       true,
			MaxPoolSize: 20,
			TimeoutOptions: map[string]int64{
				"connectTimeoutMS":         1000,
				"serverselectiontimeoutms": 2000,
				"socketTimeoutMS":          3000,
				"heartbeatFrequencyMS":     4000,
				"timeoutMS":                5000,
				"bufferCommands":           1,
			},
		},
	}
}

func TestCreateOptions(t *testing.T) {
	t.Cleanup(func() { SetDebug(false) })

	t.Run("maps settings", func(t *testing.T) {
		co := CreateOptions(testConfig())
		require.NoError(t, co.Validate())

		assert.Equal(t, []string{"localhost:27017"}, co.Hosts)
		require.NotNil(t, co.AppName)
		assert.Equal(t, "docstore-test", *co.AppName)
		require.NotNil(t, co.MaxPoolSize)
		assert.Equal(t, uint64(20), *co.MaxPoolSize)
		assert.Equal(t, time.Second, *co.ConnectTimeout)
		assert.Equal(t, 2*time.Second, *co.ServerSelectionTimeout)
		assert.Equal(t, 3*time.Second, *co.SocketTimeout)
		assert.Equal(t, 4*time.Second, *co.HeartbeatInterval)
		assert.Equal(t, 5*time.Second, *co.Timeout)
		assert.NotNil(t, co.Monitor)
	})

	t.Run("debug follows config outside production", func(t *testing.T) {
		SetDebug(false)
		CreateOptions(testConfig())
		assert.True(t, Debug())

		cfg := testConfig()
		cfg.Database.Debug = false
		CreateOptions(cfg)
		assert.False(t, Debug())
	})

	t.Run("production leaves debug alone", func(t *testing.T) {
		SetDebug(false)
		cfg := testConfig()
		cfg.App.Env = Production
		CreateOptions(cfg)
		assert.False(t, Debug())
	})

	t.Run("no timeouts", func(t *testing.T) {
		cfg := testConfig()
		cfg.Database.TimeoutOptions = nil
		cfg.Database.MaxPoolSize = 0
		co := CreateOptions(cfg)
		assert.Nil(t, co.ConnectTimeout)
		assert.Nil(t, co.MaxPoolSize)
	})
}
