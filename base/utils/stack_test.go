package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStack(t *testing.T) {
	s := string(Stack(1))
	assert.Contains(t, s, "utils.TestStack")
	assert.NotContains(t, s, "utils.Stack\n")
}
