package season

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/f1-results-pipeline/pkg/ratelimit"
	"github.com/rs/zerolog"
)

func testOrchestrator(opts ...Option) *Orchestrator {
	base := []Option{
		WithLimiterFactory(ratelimit.UnlimitedFactory()),
		WithLogger(zerolog.Nop()),
		WithResource("test"),
	}
	return New(append(base, opts...)...)
}

// oneRowPerYear returns the year itself as the only record, failing for the given years.
func oneRowPerYear(failing ...int) YearFunc[int] {
	fail := make(map[int]bool, len(failing))
	for _, y := range failing {
		fail[y] = true
	}
	return func(ctx context.Context, year int) ([]int, error) {
		if fail[year] {
			return nil, errors.New("connection reset")
		}
		return []int{year}, nil
	}
}

func TestCollect_SkipsFailedYears(t *testing.T) {
	res, err := Collect(context.Background(), testOrchestrator(), YearRange{1950, 2023}, oneRowPerYear(1955, 1967))
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(res.Records) != 72 {
		t.Errorf("records = %d, want 72", len(res.Records))
	}
	failed := res.FailedYears()
	if len(failed) != 2 || failed[0] != 1955 || failed[1] != 1967 {
		t.Errorf("failed years = %v, want [1955 1967]", failed)
	}
	if res.Cancelled {
		t.Error("Cancelled = true")
	}
	for i := 1; i < len(res.Records); i++ {
		if res.Records[i] <= res.Records[i-1] {
			t.Fatalf("records not in year order at %d: %d after %d", i, res.Records[i], res.Records[i-1])
		}
	}
}

func TestCollect_RecoversPanic(t *testing.T) {
	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		if year == 2001 {
			var m map[string]int
			m["boom"] = 1
		}
		return []int{year}, nil
	})

	res, err := Collect(context.Background(), testOrchestrator(), YearRange{2000, 2002}, f)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(res.Records) != 2 {
		t.Errorf("records = %v, want 2000 and 2002", res.Records)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0].Err, ErrPanic) {
		t.Errorf("failures = %v, want one ErrPanic", res.Failures)
	}
}

func TestCollect_InvalidRange(t *testing.T) {
	_, err := Collect(context.Background(), testOrchestrator(), YearRange{2024, 2023}, oneRowPerYear())
	if !errors.Is(err, ErrInvalidRange) {
		t.Errorf("err = %v, want ErrInvalidRange", err)
	}
}

func TestCollect_MissingSeasonContributesNothing(t *testing.T) {
	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		if year == 2020 {
			return nil, nil
		}
		return []int{year, year}, nil
	})

	res, _ := Collect(context.Background(), testOrchestrator(), YearRange{2019, 2021}, f)

	if len(res.Records) != 4 {
		t.Errorf("records = %v", res.Records)
	}
	if len(res.Succeeded) != 3 {
		t.Errorf("succeeded = %v, want all three years", res.Succeeded)
	}
}

func TestCollect_Empty(t *testing.T) {
	res, _ := Collect(context.Background(), testOrchestrator(), YearRange{1900, 1902}, oneRowPerYear(1900, 1901, 1902))

	if !res.Empty() {
		t.Error("Empty() = false for a run where every year failed")
	}
}

func TestCollect_CancelledBetweenYears(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		if year == 2002 {
			cancel()
		}
		return []int{year}, nil
	})

	res, err := Collect(ctx, testOrchestrator(), YearRange{2000, 2010}, f)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if !res.Cancelled {
		t.Error("Cancelled = false")
	}
	if len(res.Records) != 3 {
		t.Errorf("records = %v, want years 2000..2002", res.Records)
	}
}

func TestCollect_DelayBetweenYears(t *testing.T) {
	o := New(WithDelay(30*time.Millisecond), WithLogger(zerolog.Nop()))

	var mu sync.Mutex
	var calls []time.Time
	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		return nil, nil
	})

	if _, err := Collect(context.Background(), o, YearRange{2000, 2002}, f); err != nil {
		t.Fatal(err)
	}

	if len(calls) != 3 {
		t.Fatalf("calls = %d, want 3", len(calls))
	}
	for i := 1; i < len(calls); i++ {
		if gap := calls[i].Sub(calls[i-1]); gap < 20*time.Millisecond {
			t.Errorf("gap %d = %v, want roughly 30ms", i, gap)
		}
	}
}

func TestCollect_ConcurrentKeepsYearOrder(t *testing.T) {
	var inFlight, peak int32
	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		// later years finish first
		time.Sleep(time.Duration(2030-year) * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		if year == 2005 {
			return nil, errors.New("timeout")
		}
		return []int{year}, nil
	})

	o := testOrchestrator(WithConcurrency(4))
	res, err := Collect(context.Background(), o, YearRange{2000, 2019}, f)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	if len(res.Records) != 19 {
		t.Errorf("records = %d, want 19", len(res.Records))
	}
	for i := 1; i < len(res.Records); i++ {
		if res.Records[i] <= res.Records[i-1] {
			t.Fatalf("records out of year order: %v", res.Records)
		}
	}
	if p := atomic.LoadInt32(&peak); p > 4 {
		t.Errorf("peak concurrency = %d, want <= 4", p)
	}
	if len(res.Failures) != 1 || res.Failures[0].Year != 2005 {
		t.Errorf("failures = %v", res.Failures)
	}
}

func TestCollect_LimiterPerWorker(t *testing.T) {
	var built int32
	factory := func() ratelimit.Limiter {
		atomic.AddInt32(&built, 1)
		return ratelimit.Unlimited()
	}

	o := New(WithLimiterFactory(factory), WithConcurrency(3), WithLogger(zerolog.Nop()))
	if _, err := Collect(context.Background(), o, YearRange{2000, 2009}, oneRowPerYear()); err != nil {
		t.Fatal(err)
	}

	if n := atomic.LoadInt32(&built); n != 3 {
		t.Errorf("limiters built = %d, want one per worker (3)", n)
	}
}

func TestNew_Defaults(t *testing.T) {
	o := New(WithConcurrency(0))
	if o.concurrency != 1 {
		t.Errorf("concurrency = %d, want 1", o.concurrency)
	}
	if o.resource != "unknown" {
		t.Errorf("resource = %q", o.resource)
	}
	if o.delay != DefaultDelay {
		t.Errorf("delay = %v, want %v", o.delay, DefaultDelay)
	}
}

func TestCollect_LimiterOnFetchContext(t *testing.T) {
	const delay = 40 * time.Millisecond
	o := New(WithDelay(delay), WithLogger(zerolog.Nop()))

	var stamps []time.Time
	f := YearFunc[int](func(ctx context.Context, year int) ([]int, error) {
		lim, ok := ratelimit.FromContext(ctx)
		if !ok {
			return nil, errors.New("no limiter on context")
		}
		for i := 0; i < 3; i++ {
			if err := lim.Wait(ctx); err != nil {
				return nil, err
			}
			stamps = append(stamps, time.Now())
		}
		return []int{year}, nil
	})

	start := time.Now()
	res, err := Collect(context.Background(), o, YearRange{2021, 2021}, f)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Failures) != 0 {
		t.Fatalf("failures = %v", res.Failures)
	}

	if gap := stamps[0].Sub(start); gap > delay/2 {
		t.Errorf("first request waited %v, want immediate", gap)
	}
	for i := 1; i < len(stamps); i++ {
		if gap := stamps[i].Sub(stamps[i-1]); gap < delay-10*time.Millisecond {
			t.Errorf("gap before request %d = %v, want at least ~%v", i, gap, delay)
		}
	}
}
