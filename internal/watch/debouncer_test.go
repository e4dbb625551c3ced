package watch

import (
	"sort"
	"sync"
	"testing"
	"time"
)

func TestDebouncer_CoalescesBurst(t *testing.T) {
	var mutex sync.Mutex
	var calls [][]string
	done := make(chan struct{}, 1)

	debouncer := NewDebouncer(20 * time.Millisecond)
	debouncer.SetCallback(func(files []string) {
		mutex.Lock()
		calls = append(calls, files)
		mutex.Unlock()
		done <- struct{}{}
	})

	debouncer.Add("a.arc")
	debouncer.Add("b.arc")
	debouncer.Add("a.arc")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Debouncer never flushed")
	}

	mutex.Lock()
	defer mutex.Unlock()

	if len(calls) != 1 {
		t.Fatalf("Expected one flush, got %d", len(calls))
	}

	files := append([]string(nil), calls[0]...)
	sort.Strings(files)
	if len(files) != 2 || files[0] != "a.arc" || files[1] != "b.arc" {
		t.Errorf("Expected deduplicated [a.arc b.arc], got %v", files)
	}
}

func TestDebouncer_StopCancelsPendingFlush(t *testing.T) {
	fired := make(chan struct{}, 1)

	debouncer := NewDebouncer(20 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		fired <- struct{}{}
	})

	debouncer.Add("a.arc")
	debouncer.Stop()

	select {
	case <-fired:
		t.Fatal("Flush fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncer_FlushesNeverOverlap(t *testing.T) {
	var mutex sync.Mutex
	active, peak, flushes := 0, 0, 0

	started := make(chan struct{}, 2)
	release := make(chan struct{})
	done := make(chan struct{}, 2)

	debouncer := NewDebouncer(10 * time.Millisecond)
	debouncer.SetCallback(func([]string) {
		mutex.Lock()
		active++
		if active > peak {
			peak = active
		}
		flushes++
		mutex.Unlock()

		started <- struct{}{}
		<-release

		mutex.Lock()
		active--
		mutex.Unlock()
		done <- struct{}{}
	})

	debouncer.Add("first.arc")

	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("First flush never started")
	}

	// A second burst that settles while the first callback is still
	// running must wait for it rather than run concurrently.
	go debouncer.Add("second.arc")
	time.Sleep(50 * time.Millisecond)
	close(release)

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("Flush never completed")
		}
	}

	mutex.Lock()
	defer mutex.Unlock()

	if flushes != 2 {
		t.Fatalf("Expected two flushes, got %d", flushes)
	}
	if peak != 1 {
		t.Errorf("Expected flushes to run one at a time, observed %d concurrent", peak)
	}
}

func TestDebouncer_SeparateBurstsFlushSeparately(t *testing.T) {
	flushes := make(chan []string, 2)

	debouncer := NewDebouncer(10 * time.Millisecond)
	debouncer.SetCallback(func(files []string) {
		flushes <- files
	})

	debouncer.Add("first.arc")
	select {
	case <-flushes:
	case <-time.After(time.Second):
		t.Fatal("First burst never flushed")
	}

	debouncer.Add("second.arc")
	select {
	case files := <-flushes:
		if len(files) != 1 || files[0] != "second.arc" {
			t.Errorf("Expected [second.arc], got %v", files)
		}
	case <-time.After(time.Second):
		t.Fatal("Second burst never flushed")
	}
}
