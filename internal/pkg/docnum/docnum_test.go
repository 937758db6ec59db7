package docnum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-EDU-00123", Format(2025, "EDU", 123))
	assert.Equal(t, "2026-FIN-00001", Format(2026, "FIN", 1))
}

func TestFormatUppercasesCode(t *testing.T) {
	assert.Equal(t, "2025-HR-00042", Format(2025, "hr", 42))
}

func TestFormatWidensLargeSequences(t *testing.T) {
	assert.Equal(t, "2025-EDU-123456", Format(2025, "EDU", 123456))
}
