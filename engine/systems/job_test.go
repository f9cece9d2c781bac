package systems

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobSystemRunsEveryJob(t *testing.T) {
	js, err := NewJobSystem(3, 2)
	require.NoError(t, err)

	var done, failed atomic.Int32
	for i := 0; i < 20; i++ {
		require.NoError(t, js.Submit(Job{
			Name: "count",
			Run: func() error {
				if i%5 == 0 {
					return errors.New("boom")
				}
				done.Add(1)
				return nil
			},
			OnFailure: func(error) { failed.Add(1) },
		}))
	}
	js.Wait()
	assert.Equal(t, int32(16), done.Load())
	assert.Equal(t, int32(4), failed.Load())

	require.NoError(t, js.Shutdown())
	require.NoError(t, js.Shutdown())
	assert.ErrorIs(t, js.Submit(Job{Run: func() error { return nil }}), ErrJobSystemClosed)
}

func TestJobSystemValidation(t *testing.T) {
	_, err := NewJobSystem(0, 1)
	assert.ErrorIs(t, err, ErrNoWorkers)
	_, err = NewJobSystem(1, -1)
	assert.ErrorIs(t, err, ErrNegativeChannelSize)

	js, err := NewJobSystem(1, 0)
	require.NoError(t, err)
	defer js.Shutdown()
	assert.Error(t, js.Submit(Job{Name: "empty"}))
}
