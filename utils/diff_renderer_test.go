package utils

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderDiff(t *testing.T) {
	out := &bytes.Buffer{}
	err := RenderDiff(out, "diff --git a/x b/x\n@@ -1 +1 @@\n-old\n+new", "dracula")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "new")
	assert.Contains(t, out.String(), "\x1b[")
}

func TestRenderMessage(t *testing.T) {
	out := &bytes.Buffer{}
	RenderMessage(out, "Proposed commit message:", "Fix typo in README")

	assert.Contains(t, out.String(), "Proposed commit message:")
	assert.Contains(t, out.String(), "Fix typo in README")
}
