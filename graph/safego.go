package graph

import "sync"

// SafeGo runs fn in a goroutine tracked by wg. A panic inside fn is recovered
// and handed to onPanic instead of crashing the process.
func SafeGo(wg *sync.WaitGroup, fn func(), onPanic func(v any)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if v := recover(); v != nil && onPanic != nil {
				onPanic(v)
			}
		}()
		fn()
	}()
}
