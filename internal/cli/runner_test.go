package cli

import (
	"bufio"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tudu-app/tudu/internal/api"
)

func TestRenderLines_PreservesServerOrder(t *testing.T) {
	items := []api.Todo{
		{ID: "1", Title: "Buy milk", Completed: true},
		{ID: "2", Title: "Walk dog"},
		{ID: "3", Title: "Water plants"},
	}
	lines := renderLines(items, false)
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "Buy milk")
	assert.Contains(t, lines[1], "Walk dog")
}

func TestRenderLines_GroupPutsPendingFirst(t *testing.T) {
	items := []api.Todo{
		{ID: "1", Title: "Buy milk", Completed: true},
		{ID: "2", Title: "Walk dog"},
	}
	lines := renderLines(items, true)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Walk dog")
	assert.Contains(t, lines[1], "Buy milk")
	// Display indexes still refer to the ungrouped server order.
	assert.Contains(t, lines[0], " 2 ")
	assert.Contains(t, lines[1], " 1 ")
}

func TestReadPassword_PipedInputFallsBackToLineRead(t *testing.T) {
	// -1 is never a terminal, so the echo-suppressing path stays off
	// and the line read takes over, as with `tudu auth login < creds`.
	in := bufio.NewReader(strings.NewReader("hunter2\n"))
	got, err := readPassword(in, -1)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got)
}

func TestDecodeB64URL(t *testing.T) {
	payload := `{"username":"alice"}`
	enc := base64.RawURLEncoding.EncodeToString([]byte(payload))
	got, err := decodeB64URL(enc)
	require.NoError(t, err)
	assert.Equal(t, payload, got)

	_, err = decodeB64URL("!!not base64!!")
	assert.Error(t, err)
}
