package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRootCmd(t *testing.T) {
	root := NewRootCmd()
	assert.Equal(t, "compsight", root.Use)

	names := make([]string, 0)
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "analyze")
	assert.Contains(t, names, "guideline")
	assert.Contains(t, names, "serve")
}

func TestAnalyzeCmd_RequiresFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"analyze"})
	err := root.Execute()
	assert.Error(t, err)
}
