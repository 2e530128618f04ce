package logger

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGetBeforeAndAfterInit(t *testing.T) {
	current.Store(nil)
	t.Cleanup(func() { current.Store(nil) })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NotNil(t, Named("worker"))
		}()
	}
	wg.Wait()

	require.NoError(t, Init("debug", "json"))
	log := Get()
	require.NotNil(t, log)
	assert.Same(t, log, current.Load())
	assert.True(t, log.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, Init("warn", "console"))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
}
