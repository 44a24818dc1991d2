package descriptions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetToolDescription(t *testing.T) {
	for _, name := range GetAllToolNames() {
		desc := GetToolDescription(name)
		assert.NotEmpty(t, desc, name)
		assert.NotEqual(t, "Tool description not available", desc, name)
	}

	assert.Equal(t, "Tool description not available", GetToolDescription("pdf_read_file"))
}

func TestGetAllToolNames_Sorted(t *testing.T) {
	names := GetAllToolNames()
	assert.Len(t, names, len(ToolDescriptions))
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i])
	}
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Delete an entity by id.", Summary("delete_entity"))
	assert.False(t, strings.Contains(Summary("save_mapping"), "\n"))
}
