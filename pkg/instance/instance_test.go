package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDPrefersExplicitSetting(t *testing.T) {
	t.Setenv(EnvInstanceID, "api-1")
	t.Setenv("DYNO", "web.1")
	assert.Equal(t, "api-1", ID())
}

func TestIDFallsBackToDyno(t *testing.T) {
	t.Setenv(EnvInstanceID, "")
	t.Setenv("DYNO", "worker.2")
	assert.Equal(t, "worker.2", ID())
}

func TestIDNeverEmpty(t *testing.T) {
	t.Setenv(EnvInstanceID, "")
	t.Setenv("DYNO", "")
	assert.NotEmpty(t, ID())
}
