package cachedresults

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MKuranowski/go-extra-lib/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/busboard/pkg/ctdf"
)

// fakeClock stands in for clock.Interface; only Now is ever called
type fakeClock struct {
	clock.Interface

	mutex sync.Mutex
	now   time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.now = f.now.Add(d)
}

type recordingNotifier struct {
	mutex         sync.Mutex
	notifications []ctdf.Notification
}

func (r *recordingNotifier) Notify(notification ctdf.Notification) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.notifications = append(r.notifications, notification)
}

func (r *recordingNotifier) Count() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return len(r.notifications)
}

func newTestCache(clock *fakeClock, fetch func(ctx context.Context, key string) ([]string, error)) *Cache[[]string] {
	return &Cache[[]string]{
		Name:            "バス情報",
		RefreshInterval: 10 * time.Second,
		Fetch:           fetch,
		Clock:           clock,
	}
}

func TestGetRefreshesOnlyWhenStale(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	var calls int32
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{key}, nil
	})

	entry := cache.Get(context.Background(), "route")
	assert.Equal(t, []string{"route"}, entry.Data)
	assert.True(t, entry.DataValid)
	assert.NoError(t, entry.Error)
	assert.Equal(t, clock.Now(), entry.Timestamp)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	clock.Advance(9 * time.Second)
	cache.Get(context.Background(), "route")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))

	clock.Advance(time.Second)
	cache.Get(context.Background(), "route")
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))

	cache.Get(context.Background(), "other")
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestGetKeepsStaleDataOnError(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	fail := false
	var calls int
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		calls++
		if fail {
			return nil, errors.New("connection reset")
		}
		return []string{"14:05発予定"}, nil
	})
	notifier := &recordingNotifier{}
	cache.Notifier = notifier

	cache.Get(context.Background(), "route")

	fail = true
	clock.Advance(time.Minute)
	entry := cache.Get(context.Background(), "route")

	assert.Equal(t, []string{"14:05発予定"}, entry.Data)
	assert.False(t, entry.DataValid)
	assert.EqualError(t, entry.Error, "connection reset")
	assert.Equal(t, clock.Now(), entry.Timestamp)
	assert.Equal(t, 1, notifier.Count())

	// an invalid entry is retried on the next read even inside the interval
	entry = cache.Get(context.Background(), "route")
	assert.Equal(t, 3, calls)
	assert.False(t, entry.DataValid)
	assert.Equal(t, 1, notifier.Count())

	fail = false
	entry = cache.Get(context.Background(), "route")
	assert.True(t, entry.DataValid)
	assert.NoError(t, entry.Error)

	fail = true
	clock.Advance(time.Minute)
	cache.Get(context.Background(), "route")
	assert.Equal(t, 2, notifier.Count())
}

func TestGetFirstFetchFailure(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		return nil, ctdf.ErrUpstreamShape
	})

	entry := cache.Get(context.Background(), "route")
	assert.Empty(t, entry.Data)
	assert.False(t, entry.DataValid)
	assert.ErrorIs(t, entry.Error, ctdf.ErrUpstreamShape)
}

func TestGetOutsideServiceHours(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 3, 0, 0, 0, time.UTC)}
	var calls int
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		calls++
		return []string{"fresh"}, nil
	})
	open := true
	cache.RefreshAllowed = func(now time.Time) bool {
		return open
	}

	cache.Get(context.Background(), "route")
	assert.Equal(t, 1, calls)

	open = false
	clock.Advance(time.Hour)
	entry := cache.Get(context.Background(), "route")
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"fresh"}, entry.Data)

	entry = cache.Get(context.Background(), "never-fetched")
	assert.Equal(t, 1, calls)
	assert.Nil(t, entry.Data)
	assert.True(t, entry.DataValid)
	assert.True(t, entry.Timestamp.IsZero())
}

func TestGetSharesConcurrentRefresh(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	release := make(chan struct{})
	var calls int32
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"ok"}, nil
	})

	var wg sync.WaitGroup
	results := make([]Entry[[]string], 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = cache.Get(context.Background(), "route")
		}(i)
	}

	// let every goroutine reach the single flight before the fetch finishes
	require.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
	for _, result := range results {
		assert.Equal(t, []string{"ok"}, result.Data)
	}
}

func TestGetIgnoresCallerCancellation(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return []string{"ok"}, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	entry := cache.Get(ctx, "route")
	assert.True(t, entry.DataValid)
	assert.Equal(t, []string{"ok"}, entry.Data)
}

func TestGetWaitsOutHeldErrors(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	errRejected := errors.New("key rejected")
	var calls int
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		calls++
		return nil, errRejected
	})
	cache.WaitOnError = func(err error) bool {
		return errors.Is(err, errRejected)
	}

	entry := cache.Get(context.Background(), "Isehara,JP")
	assert.False(t, entry.DataValid)
	assert.Equal(t, 1, calls)

	clock.Advance(9 * time.Second)
	entry = cache.Get(context.Background(), "Isehara,JP")
	assert.Equal(t, 1, calls)
	assert.ErrorIs(t, entry.Error, errRejected)

	clock.Advance(time.Second)
	cache.Get(context.Background(), "Isehara,JP")
	assert.Equal(t, 2, calls)
}

func TestGetQuietErrorsAreNotNotified(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, time.May, 1, 14, 0, 0, 0, time.UTC)}
	errMissingKey := errors.New("no key")
	var fetchErr error
	cache := newTestCache(clock, func(ctx context.Context, key string) ([]string, error) {
		return nil, fetchErr
	})
	notifier := &recordingNotifier{}
	cache.Notifier = notifier
	cache.Quiet = func(err error) bool {
		return errors.Is(err, errMissingKey)
	}

	fetchErr = errMissingKey
	cache.Get(context.Background(), "Isehara,JP")
	assert.Zero(t, notifier.Count())

	fetchErr = nil
	cache.Get(context.Background(), "Isehara,JP")

	fetchErr = errors.New("503 Service Unavailable")
	clock.Advance(time.Minute)
	cache.Get(context.Background(), "Isehara,JP")
	assert.Equal(t, 1, notifier.Count())
}
