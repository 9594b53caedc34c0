package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "LA MEDUSA", cfg.Restaurant.Name)
	assert.Equal(t, "983 591 389 00017", cfg.Restaurant.Siret)
	assert.Equal(t, ".", cfg.Storage.DataDir)

	require.Len(t, cfg.Tables, 22)
	assert.Equal(t, "Table 1", cfg.Tables[0])
	assert.Equal(t, "Table 20", cfg.Tables[19])
	assert.Equal(t, "À emporter", cfg.Tables[20])
	assert.Equal(t, "Comptoir", cfg.Tables[21])

	assert.False(t, cfg.Printers.Receipt.Enabled)
	assert.Equal(t, "192.168.1.100:9100", cfg.Printers.Receipt.Addr())
	assert.Equal(t, 5*time.Second, cfg.Printers.Receipt.Timeout)
}
