package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	original := version
	SetVersion("1.2.3")
	defer SetVersion(original)

	out, err := executeCommand("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "kbsync version 1.2.3")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	out, err := executeCommand("version")

	assert.NoError(t, err)
	assert.Contains(t, out, "kbsync version dev")
}
