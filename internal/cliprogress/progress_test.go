package cliprogress

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncrementAdvancesCounter(t *testing.T) {
	p := New("inserting", 10)
	assert.Equal(t, 0, p.current)
	p.Increment()
	p.Increment()
	assert.Equal(t, 2, p.current)
}

func TestPrintAndDoneAreNoopsOutsideTTY(t *testing.T) {
	// os.Stderr is not a terminal under `go test`, so these must be
	// harmless regardless of total.
	p := New("inserting", 100)
	p.Increment()
	assert.NotPanics(t, func() { p.Print() })
	assert.NotPanics(t, func() { p.Done() })
}

func TestRunPropagatesFnResult(t *testing.T) {
	err := Run("working", func() error { return nil })
	assert.NoError(t, err)

	boom := errors.New("boom")
	err = Run("working", func() error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestSpinnerLifecycleOutsideTTYIsNoop(t *testing.T) {
	s := NewSpinner("working")
	assert.NotPanics(t, func() {
		s.Start()
		s.Tick()
		s.Stop()
	})
}
