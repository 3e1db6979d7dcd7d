package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/commandes/config"
)

func TestFromMap_Defaults(t *testing.T) {
	cfg, err := config.FromMap(nil)
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "commandes.db", cfg.DatabaseDSN)
	assert.Equal(t, "secretkey", cfg.JWTSecret)
	assert.Equal(t, time.Hour, cfg.JWTTTL)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.False(t, cfg.AuthRequired)
	assert.Equal(t, "http://localhost:3000", cfg.FrontendURL)
	assert.Equal(t, "local", cfg.StorageDisk)
	assert.Equal(t, "/uploads", cfg.UploadURL)
	assert.False(t, cfg.IsProduction())
}

func TestFromMap_MySQLFromParts(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{
		"DB_DRIVER":   "MySQL",
		"DB_HOST":     "db",
		"DB_USER":     "app",
		"DB_PASSWORD": "pw",
		"DB_NAME":     "shop",
	})
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DBDriver)
	assert.Equal(t, "app:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=True&loc=UTC", cfg.DatabaseDSN)
}

func TestFromMap_Rejects(t *testing.T) {
	_, err := config.FromMap(map[string]string{"DB_DRIVER": "oracle"})
	assert.Error(t, err)

	_, err = config.FromMap(map[string]string{"JWT_TTL": "soon"})
	assert.Error(t, err)

	_, err = config.FromMap(map[string]string{"APP_TIMEZONE": "Mars/Olympus"})
	assert.Error(t, err)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "app.json")
	envPath := filepath.Join(dir, ".env")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"app_port": "7000", "frontend_url": "http://json", "upload_dir": "from-json", "ignored": 3}`), 0o600))
	require.NoError(t, os.WriteFile(envPath, []byte("FRONTEND_URL=http://dotenv\nAUTH_REQUIRED=true\nADMIN_USERNAME=boss\n"), 0o600))
	t.Setenv("APP_PORT", "9000")

	cfg, err := config.Load(jsonPath, envPath)
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.AppPort)
	assert.Equal(t, "http://dotenv", cfg.FrontendURL)
	assert.Equal(t, "from-json", cfg.UploadDir)
	assert.True(t, cfg.AuthRequired)
	assert.Equal(t, "boss", cfg.Get("admin_username", "admin"))
	assert.Equal(t, "fallback", cfg.Get("ADMIN_PASSWORD", "fallback"))
}

func TestLoad_MissingFilesAreFine(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(filepath.Join(dir, "none.json"), filepath.Join(dir, ".none"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
}
