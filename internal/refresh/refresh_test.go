package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeRefresher struct {
	mu       sync.Mutex
	seen     map[string]int
	inflight int32
	peak     int32
	fail     string
}

func (f *fakeRefresher) Refresh(_ context.Context, key string) (int, error) {
	n := atomic.AddInt32(&f.inflight, 1)
	defer atomic.AddInt32(&f.inflight, -1)
	for {
		p := atomic.LoadInt32(&f.peak)
		if n <= p || atomic.CompareAndSwapInt32(&f.peak, p, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seen == nil {
		f.seen = map[string]int{}
	}
	f.seen[key]++
	if key == f.fail {
		return 0, errors.New("boom")
	}
	return 3, nil
}

func (f *fakeRefresher) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[key]
}

func TestWarmupBoundedAndTolerant(t *testing.T) {
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	r := &fakeRefresher{fail: "c"}

	ok := Warmup(context.Background(), r, keys, nil)
	assert.Equal(t, 7, ok)
	assert.LessOrEqual(t, atomic.LoadInt32(&r.peak), int32(warmupConcurrency))
	for _, k := range keys {
		assert.Equal(t, 1, r.count(k))
	}
}

func TestRunTicksUntilCancelled(t *testing.T) {
	r := &fakeRefresher{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		Run(ctx, r, []string{"gdp"}, 10*time.Millisecond, nil)
		close(done)
	}()

	assert.Eventually(t, func() bool { return r.count("gdp") >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done
}

func TestRunDisabled(t *testing.T) {
	Run(context.Background(), &fakeRefresher{}, []string{"gdp"}, 0, nil)
}
