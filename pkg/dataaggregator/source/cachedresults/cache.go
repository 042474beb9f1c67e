package cachedresults

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MKuranowski/go-extra-lib/clock"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/travigo/busboard/pkg/ctdf"
	"golang.org/x/sync/singleflight"
)

type Notifier interface {
	Notify(ctdf.Notification)
}

// Entry is the last known result for one key. Data survives failed refreshes.
type Entry[T any] struct {
	Data      T
	Timestamp time.Time
	Error     error
	DataValid bool
}

// Cache holds one entry per key and refreshes it lazily on read.
type Cache[T any] struct {
	Name            string
	RefreshInterval time.Duration
	Fetch           func(ctx context.Context, key string) (T, error)

	// RefreshAllowed gates upstream calls, e.g. to service hours. Nil allows every refresh.
	RefreshAllowed func(now time.Time) bool

	// WaitOnError reports failures that must not be retried before RefreshInterval has
	// passed, e.g. a rejected API key. Nil retries every failure on the next read.
	WaitOnError func(err error) bool

	Notifier Notifier
	// Quiet reports failures that are logged but never notified
	Quiet func(err error) bool

	// If nil, clock.System is used
	Clock clock.Interface

	mutex        sync.Mutex
	entries      map[string]*Entry[T]
	refreshGroup singleflight.Group
}

func (c *Cache[T]) now() time.Time {
	if c.Clock == nil {
		return clock.System.Now()
	}
	return c.Clock.Now()
}

// Peek returns the current entry for key without refreshing it.
func (c *Cache[T]) Peek(key string) Entry[T] {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return *c.entry(key)
}

// Get returns the entry for key, refreshing it first when it is stale or invalid and
// refreshing is currently allowed. Concurrent callers for the same key share one fetch.
func (c *Cache[T]) Get(ctx context.Context, key string) Entry[T] {
	now := c.now()
	current := c.Peek(key)

	if c.RefreshAllowed != nil && !c.RefreshAllowed(now) {
		log.Debug().Str("cache", c.Name).Str("key", key).Msg("Refresh skipped outside service hours")
		return current
	}

	if !c.needsRefresh(current, now) {
		return current
	}

	c.refreshGroup.Do(key, func() (interface{}, error) {
		c.refresh(context.WithoutCancel(ctx), key)
		return nil, nil
	})

	return c.Peek(key)
}

func (c *Cache[T]) needsRefresh(entry Entry[T], now time.Time) bool {
	if !entry.DataValid && (c.WaitOnError == nil || !c.WaitOnError(entry.Error)) {
		return true
	}
	return now.Sub(entry.Timestamp) >= c.RefreshInterval
}

func (c *Cache[T]) refresh(ctx context.Context, key string) {
	data, err := c.Fetch(ctx, key)
	fetchedAt := c.now()

	c.mutex.Lock()
	entry := c.entry(key)
	wasValid := entry.DataValid

	entry.Timestamp = fetchedAt
	if err == nil {
		entry.Data = data
		entry.Error = nil
		entry.DataValid = true
	} else {
		entry.Error = err
		entry.DataValid = false
	}
	c.mutex.Unlock()

	if err == nil {
		log.Debug().Str("cache", c.Name).Str("key", key).Msg("Refreshed cache entry")
		return
	}

	level := zerolog.WarnLevel
	if errors.Is(err, ctdf.ErrUpstreamShape) {
		level = zerolog.ErrorLevel
	}
	log.WithLevel(level).Err(err).Str("cache", c.Name).Str("key", key).Msg("Failed to refresh cache entry")

	if wasValid && c.Notifier != nil && (c.Quiet == nil || !c.Quiet(err)) {
		c.Notifier.Notify(ctdf.Notification{
			Type:    ctdf.NotificationTypeUpstreamError,
			Title:   fmt.Sprintf("%s 取得エラー", c.Name),
			Message: fmt.Sprintf("%s: %s", key, err),
		})
	}
}

// entry must be called with the mutex held
func (c *Cache[T]) entry(key string) *Entry[T] {
	if c.entries == nil {
		c.entries = map[string]*Entry[T]{}
	}

	entry, exists := c.entries[key]
	if !exists {
		entry = &Entry[T]{DataValid: true}
		c.entries[key] = entry
	}
	return entry
}
