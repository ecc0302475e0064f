package filelock

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockUnlock(t *testing.T) {
	lock := NewFileLock(filepath.Join(t.TempDir(), "test.lock"))

	require.NoError(t, lock.Lock())
	require.NoError(t, lock.Unlock())
}

func TestTryLockContention(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "test.lock")

	holder := NewFileLock(lockPath)
	require.NoError(t, holder.Lock())

	acquired, err := NewFileLock(lockPath).TryLock()
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, holder.Unlock())

	second := NewFileLock(lockPath)
	acquired, err = second.TryLock()
	require.NoError(t, err)
	assert.True(t, acquired)
	require.NoError(t, second.Unlock())
}

func TestLockAndWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "task-index.json")

	require.NoError(t, LockAndWrite(path, []byte(`{"version": 1}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version": 1}`, string(data))

	// The lock file is deliberately left in place.
	_, err = os.Stat(path + ".lock")
	assert.NoError(t, err)
}

func TestLockAndWriteCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "nested", "task-index.json")

	require.NoError(t, LockAndWrite(path, []byte(`{"version": 1}`)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"version": 1}`, string(data))
}

func TestLockAndWriteConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	payloads := make(map[string]bool)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		payload := fmt.Sprintf(`{"writer": %d, "body": "%d%d%d"}`, i, i, i, i)
		payloads[payload] = true
		wg.Add(1)
		go func(data string) {
			defer wg.Done()
			assert.NoError(t, LockAndWrite(path, []byte(data)))
		}(payload)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, payloads[string(data)], "file holds a torn write: %q", string(data))
}
