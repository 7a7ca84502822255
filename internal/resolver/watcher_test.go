package resolver

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capkv/capkv/internal/capkvlog"
)

func TestZoneWatcher_LogsCreateAndRemove(t *testing.T) {
	dir := t.TempDir()

	var buf bytes.Buffer
	log := capkvlog.New("zonewatcher-test")
	log.AddOutput(&buf)

	zw, err := NewZoneWatcher([]string{dir}, log)
	require.NoError(t, err)
	defer zw.Close()

	path := filepath.Join(dir, "new-plugin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Remove(path))

	// fsnotify delivers events asynchronously; poll briefly rather than
	// sleeping a fixed duration.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), "zone entry created") {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	assert.Contains(t, buf.String(), "zone entry created")
}
