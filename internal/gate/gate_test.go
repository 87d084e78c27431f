package gate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errSentinel = errors.New("sentinel")

func TestWithPermitBoundsConcurrency(t *testing.T) {
	g := New(2, nil)

	var inFlight, maxObserved int32
	done := make(chan struct{})

	for i := 0; i < 6; i++ {
		go func() {
			_ = g.WithPermit(context.Background(), func(ctx context.Context) error {
				cur := atomic.AddInt32(&inFlight, 1)
				for {
					observed := atomic.LoadInt32(&maxObserved)
					if cur <= observed || atomic.CompareAndSwapInt32(&maxObserved, observed, cur) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&inFlight, -1)
				return nil
			})
			done <- struct{}{}
		}()
	}

	for i := 0; i < 6; i++ {
		<-done
	}
	require.LessOrEqual(t, atomic.LoadInt32(&maxObserved), int32(2))
}

func TestWithPermitRespectsContextCancellation(t *testing.T) {
	g := New(1, nil)

	blocking := make(chan struct{})
	go func() {
		_ = g.WithPermit(context.Background(), func(ctx context.Context) error {
			<-blocking
			return nil
		})
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := g.WithPermit(ctx, func(ctx context.Context) error { return nil })
	require.Error(t, err)
	close(blocking)
}

func TestWithPermitPropagatesFnError(t *testing.T) {
	g := New(1, nil)
	sentinel := require.New(t)

	err := g.WithPermit(context.Background(), func(ctx context.Context) error {
		return errSentinel
	})
	sentinel.ErrorIs(err, errSentinel)
}
