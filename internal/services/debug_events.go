package services

import "sync"

const watcherBuffer = 16

var (
	watchersMu sync.Mutex
	watchers   = make(map[chan DebugEvent]struct{})
)

// WatchDebugChanges returns a channel receiving every debug change seen by
// this instance, local or remote. Call cancel to stop watching; the channel
// is closed afterwards. Slow watchers miss events rather than block writers.
func WatchDebugChanges() (<-chan DebugEvent, func()) {
	ch := make(chan DebugEvent, watcherBuffer)

	watchersMu.Lock()
	watchers[ch] = struct{}{}
	watchersMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			watchersMu.Lock()
			delete(watchers, ch)
			watchersMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func notifyWatchers(event DebugEvent) {
	watchersMu.Lock()
	defer watchersMu.Unlock()

	for ch := range watchers {
		select {
		case ch <- event:
		default:
		}
	}
}
