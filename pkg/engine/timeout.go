package engine

import (
	"errors"
	"fmt"
	"time"
)

// EvalTimeout is the hard limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// ErrSuperseded is returned to a caller whose evaluation finished after a
// newer Evaluate call started.
var ErrSuperseded = errors.New("evaluation superseded by newer request")

// evalResult carries one evaluation back from its goroutine.
type evalResult struct {
	program *Program
	errors  []EvalError
	err     error
}

// next starts a new generation and returns it.
func (e *Engine) next() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.generation++
	return e.generation
}

func (e *Engine) isCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation == gen
}

// await blocks until ch delivers or the timeout fires. A result from an
// older generation is dropped. On timeout the evaluation goroutine keeps
// running; its result lands in the buffered channel and is never read.
func (e *Engine) await(ch <-chan evalResult, gen uint64) (*Program, []EvalError, error) {
	timeout := e.timeout
	if timeout <= 0 {
		timeout = EvalTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		if !e.isCurrent(gen) {
			return nil, nil, ErrSuperseded
		}
		return res.program, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", timeout)
	}
}
