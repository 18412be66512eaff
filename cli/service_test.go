package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mobile-next/autotype/platform"
	"github.com/mobile-next/autotype/platform/testplatform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withFlags(t *testing.T, platformFlag, configFlag, databaseFlag string) {
	t.Helper()
	oldPlatform, oldConfig, oldDatabase := platformName, configPath, databasePath
	platformName, configPath, databasePath = platformFlag, configFlag, databaseFlag
	t.Cleanup(func() {
		platformName, configPath, databasePath = oldPlatform, oldConfig, oldDatabase
		_ = shutdownHook.Shutdown()
	})
}

func TestPlatformsRegistered(t *testing.T) {
	assert.Contains(t, platform.Names(), "robotgo")
	assert.Contains(t, platform.Names(), testplatform.Name)
}

func TestNewService_TestPlatform(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "db.ini")
	require.NoError(t, os.WriteFile(dbPath, []byte("[entry Web/Bank]\nusername = alice\npassword = hunter2\n"), 0600))

	withFlags(t, testplatform.Name, filepath.Join(dir, "missing.ini"), dbPath)

	service, err := newService()
	require.NoError(t, err)

	assert.True(t, service.Engine().Available())
	assert.Equal(t, testplatform.Name, service.Engine().PlatformName())
	require.NotNil(t, service.Database())
	assert.Len(t, service.Database().AllEntries(), 1)
}

func TestNewService_MissingDatabase(t *testing.T) {
	dir := t.TempDir()
	withFlags(t, testplatform.Name, filepath.Join(dir, "missing.ini"), filepath.Join(dir, "missing-db.ini"))

	service, err := newService()
	require.NoError(t, err)
	assert.Nil(t, service.Database())
}

func TestNewService_UnknownPlatform(t *testing.T) {
	dir := t.TempDir()
	withFlags(t, "nope", filepath.Join(dir, "missing.ini"), filepath.Join(dir, "missing-db.ini"))

	_, err := newService()
	assert.ErrorContains(t, err, "unknown auto-type platform: nope")
}
