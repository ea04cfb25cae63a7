// Package breaker implements a circuit breaker for calls to a single
// downstream dependency, such as the durable store behind a cache.
//
// The breaker starts closed. After a configured number of consecutive
// failures it opens and Allow reports false, shedding load from the failing
// dependency. Once the cool-down elapses, the breaker moves to half-open and
// admits exactly one trial call; if the trial succeeds the breaker closes,
// if it fails the breaker reopens for another cool-down.
//
// # Usage
//
//	cb := breaker.New(5, 30*time.Second)
//
//	if cb.Allow() {
//	    err := callDependency(ctx)
//	    if err != nil {
//	        cb.RecordFailure()
//	    } else {
//	        cb.RecordSuccess()
//	    }
//	}
//
// The breaker only sheds load; it never decides what to do instead of the
// call. Callers are expected to fall back to cached or degraded data when
// Allow reports false.
package breaker
