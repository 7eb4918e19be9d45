package throttle

import (
	"fmt"
	"sync"
	"time"
)

// Scheduler runs fn every interval until the returned stop function is called.
// Stop must not block on fn.
type Scheduler interface {
	Every(interval time.Duration, fn func()) (stop func())
}

// TickerScheduler runs recurring tasks on a time.Ticker in their own goroutine.
type TickerScheduler struct{}

// Every starts a goroutine that calls fn on each tick. The goroutine exits
// once stop is called; stop is safe to call more than once.
func (TickerScheduler) Every(interval time.Duration, fn func()) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(done) })
	}
}

// FormatRemaining renders a duration as M:SS, truncating partial seconds.
// Negative durations render as 0:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

func waitMessage(remaining time.Duration) string {
	return fmt.Sprintf("Please wait %s before trying again.", FormatRemaining(remaining))
}

func lockoutMessage(duration time.Duration) string {
	return fmt.Sprintf("Too many failed attempts. Please wait for %s before trying again.", durationWords(duration))
}

func durationWords(d time.Duration) string {
	if d <= 0 || d%time.Minute != 0 {
		return FormatRemaining(d)
	}
	minutes := int64(d / time.Minute)
	if minutes == 1 {
		return "1 minute"
	}
	return fmt.Sprintf("%d minutes", minutes)
}
