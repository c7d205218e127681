package main

import (
	"testing"

	"rentapply/internal/workflow"
	"rentapply/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	_, err := loadConfig()
	require.Error(t, err)
}

func TestLoadConfig_UploadLimitFitsFullBatch(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentapply")
	t.Setenv("MAX_UPLOAD_MB", "")

	c, err := loadConfig()
	require.NoError(t, err)

	batch := int64(len(types.DocumentCategories) * workflow.MaxFilesPerCategory * workflow.MaxFileSizeBytes)
	assert.Greater(t, c.MaxUploadMB<<20, batch)
	assert.Equal(t, uint(8080), c.ServerPort)
}

func TestLoadConfig_UploadLimitOverride(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/rentapply")
	t.Setenv("MAX_UPLOAD_MB", "64")

	c, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(64), c.MaxUploadMB)
}
