package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"deskpet/internal/clickthrough"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	return j, path
}

func TestJournal_RecordsTransitions(t *testing.T) {
	j, _ := openTestJournal(t)
	defer j.Close()

	base := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, base)
	j.StateChanged(clickthrough.Intercept, clickthrough.Passthrough, base.Add(time.Second))
	j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, base.Add(2*time.Second))

	assert.Eventually(t, func() bool {
		n, err := j.CountSince(clickthrough.Intercept, base)
		return err == nil && n == 2
	}, 2*time.Second, 10*time.Millisecond)

	n, err := j.CountSince(clickthrough.Intercept, base.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = j.CountSince(clickthrough.Passthrough, base)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	recent, err := j.Recent(2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, clickthrough.Intercept, recent[0].State)
	assert.True(t, recent[0].At.Equal(base.Add(2*time.Second)))
	assert.Equal(t, clickthrough.Passthrough, recent[1].State)
}

func TestJournal_CloseFlushesAndPersists(t *testing.T) {
	j, path := openTestJournal(t)

	at := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, at)
	}
	require.NoError(t, j.Close())
	require.NoError(t, j.Close())

	_, err := j.CountSince(clickthrough.Intercept, at)
	assert.ErrorIs(t, err, ErrClosed)

	// Late events after close are ignored.
	j.StateChanged(clickthrough.Passthrough, clickthrough.Intercept, at)

	reopened, err := Open(path, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer reopened.Close()

	n, err := reopened.CountSince(clickthrough.Intercept, at)
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Zero(t, reopened.Dropped())
}

func TestJournal_ImplementsObserver(t *testing.T) {
	var _ clickthrough.Observer = (*Journal)(nil)
}
