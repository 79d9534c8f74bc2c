package app

import (
	"testing"

	"github.com/stretchr/testify/assert"

	_ "github.com/labtrack/labtrack/internal/testing/guard"
)

func TestInTestMode(t *testing.T) {
	// The guard import above sets LABTRACK_TEST_MODE before any test runs.
	RefreshTestMode()
	assert.True(t, InTestMode())
}

func TestRefreshTestMode(t *testing.T) {
	t.Setenv("LABTRACK_TEST_MODE", "0")
	RefreshTestMode()
	assert.False(t, InTestMode())

	t.Setenv("LABTRACK_TEST_MODE", "1")
	RefreshTestMode()
	assert.True(t, InTestMode())
}
