// Package parallel runs independent tasks on a bounded set of goroutines.
package parallel

import (
	"runtime"
	"sync"
)

// Workers returns n if positive and the number of usable CPUs otherwise.
func Workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

type job[In any] struct {
	i  int
	in In
}

type result[Out any] struct {
	i   int
	out Out
}

// Ordered reads inputs from next until it returns false, runs fn on them
// using up to workers goroutines and passes the results to emit in the
// order the inputs were read. At most workers inputs are read ahead of
// the last emitted result.
//
// Returning false from emit stops reading inputs. Tasks already running
// are waited for and their results discarded. Ordered reports whether
// it was stopped by emit.
func Ordered[In, Out any](workers int, next func() (In, bool), fn func(In) Out, emit func(Out) bool) (stopped bool) {
	return run(workers, next, fn, emit, true)
}

// Unordered is like Ordered but results are emitted as soon as they
// are ready.
func Unordered[In, Out any](workers int, next func() (In, bool), fn func(In) Out, emit func(Out) bool) (stopped bool) {
	return run(workers, next, fn, emit, false)
}

// Slice returns a next function for Ordered and Unordered iterating over s.
func Slice[T any](s []T) func() (T, bool) {
	i := 0
	return func() (v T, ok bool) {
		if i >= len(s) {
			return v, false
		}
		v = s[i]
		i++
		return v, true
	}
}

func run[In, Out any](workers int, next func() (In, bool), fn func(In) Out, emit func(Out) bool, ordered bool) bool {
	workers = Workers(workers)
	if workers == 1 {
		for {
			in, ok := next()
			if !ok {
				return false
			}
			if !emit(fn(in)) {
				return true
			}
		}
	}
	// In flight tasks never exceed the channel capacities so the
	// dispatching loop below cannot block on a send.
	jobs := make(chan job[In], workers)
	results := make(chan result[Out], workers)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				results <- result[Out]{i: j.i, out: fn(j.in)}
			}
		}()
	}
	defer func() {
		close(jobs)
		wg.Wait()
	}()

	var (
		issued, emitted, inflight int
		done, stopped             bool
		pending                   = make(map[int]Out)
	)
	for {
		for !done && !stopped && inflight < workers && (!ordered || issued-emitted < workers) {
			in, ok := next()
			if !ok {
				done = true
				break
			}
			jobs <- job[In]{i: issued, in: in}
			issued++
			inflight++
		}
		if inflight == 0 {
			return stopped
		}
		r := <-results
		inflight--
		if stopped {
			continue
		}
		if !ordered {
			stopped = !emit(r.out)
			continue
		}
		pending[r.i] = r.out
		for !stopped {
			out, ok := pending[emitted]
			if !ok {
				break
			}
			delete(pending, emitted)
			emitted++
			stopped = !emit(out)
		}
	}
}
