package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vigil-robotics/vigil/pkg/log/model"
	"go.uber.org/zap"
)

const tailerTestTimeout = 5 * time.Second

func TestTailer(t *testing.T) {
	t.Run("Emits entries already in the file at startup", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robot.log")
		err := os.WriteFile(path, []byte("[INFO] [/amcl]: Pose updated\n"), 0o644)
		require.NoError(t, err)

		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())
		defer tailer.Stop()

		entry := receiveEntry(t, tailer)
		assert.Equal(t, "INFO", entry.Level)
		assert.Equal(t, "/amcl", entry.Node)
		assert.Equal(t, "Pose updated", entry.Message)
	})

	t.Run("Emits appended lines in file order", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robot.log")
		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())
		defer tailer.Stop()

		appendLines(t, path, "[INFO] [/a]: first\n[ERROR] [/b]: second\n")

		first := receiveEntry(t, tailer)
		second := receiveEntry(t, tailer)
		assert.Equal(t, "first", first.Message)
		assert.Equal(t, "second", second.Message)
	})

	t.Run("Creates the file when it does not exist yet", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "robot.log")
		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())
		defer tailer.Stop()

		_, err := os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("Skips blank lines", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robot.log")
		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())
		defer tailer.Stop()

		appendLines(t, path, "\n\n[WARN] [/power]: Battery level below 30%\n\n")

		entry := receiveEntry(t, tailer)
		assert.Equal(t, "Battery level below 30%", entry.Message)

		select {
		case extra, ok := <-tailer.Entries():
			if ok {
				t.Fatalf("unexpected extra entry: %+v", extra)
			}
		case <-time.After(100 * time.Millisecond):
		}
	})

	t.Run("Resets to the start of the file after truncation", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robot.log")
		err := os.WriteFile(path, []byte("[INFO] [/a]: old line that will be truncated away\n"), 0o644)
		require.NoError(t, err)

		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())
		defer tailer.Stop()

		receiveEntry(t, tailer)

		err = os.WriteFile(path, []byte("[INFO] [/a]: fresh\n"), 0o644)
		require.NoError(t, err)

		entry := receiveEntry(t, tailer)
		assert.Equal(t, "fresh", entry.Message)
	})

	t.Run("Stop closes the entries channel and is idempotent", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "robot.log")
		tailer := NewTailer(path, NewLogParser(), zap.NewNop())
		require.NoError(t, tailer.Start())

		tailer.Stop()
		tailer.Stop()

		_, ok := <-tailer.Entries()
		assert.False(t, ok)
	})

	t.Run("Stop before Start is a no-op", func(t *testing.T) {
		tailer := NewTailer(filepath.Join(t.TempDir(), "robot.log"), NewLogParser(), zap.NewNop())
		assert.NotPanics(t, tailer.Stop)
	})
}

func appendLines(t *testing.T, path string, data string) {
	t.Helper()
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	require.NoError(t, err)
	_, err = file.WriteString(data)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}

func receiveEntry(t *testing.T, tailer *Tailer) model.LogEntry {
	t.Helper()
	select {
	case entry, ok := <-tailer.Entries():
		require.True(t, ok, "entries channel closed unexpectedly")
		return entry
	case <-time.After(tailerTestTimeout):
		t.Fatal("timed out waiting for a log entry")
		return model.LogEntry{}
	}
}
