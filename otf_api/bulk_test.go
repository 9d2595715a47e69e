package otf_api

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestFetchAll(t *testing.T) {
	ids := []string{"a", "b", "c"}
	got, err := fetchAll(context.Background(), ids, func(ctx context.Context, id string) (string, error) {
		return "v:" + id, nil
	})
	if err != nil {
		t.Fatalf("fetchAll returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, id := range ids {
		if got[id] != "v:"+id {
			t.Fatalf("got[%s] = %q", id, got[id])
		}
	}
}

func TestFetchAllFailsWholeBatch(t *testing.T) {
	boom := errors.New("boom")
	got, err := fetchAll(context.Background(), []int{1, 2, 3, 4}, func(ctx context.Context, id int) (int, error) {
		if id == 3 {
			return 0, boom
		}
		return id * 10, nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want the fetch error", err)
	}
	if got != nil {
		t.Fatalf("partial results = %v, want nil", got)
	}
}

func TestFetchAllBoundsParallelism(t *testing.T) {
	var inFlight, peak atomic.Int32

	ids := make([]int, 50)
	for i := range ids {
		ids[i] = i
	}

	_, err := fetchAll(context.Background(), ids, func(ctx context.Context, id int) (int, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer inFlight.Add(-1)
		return id, nil
	})
	if err != nil {
		t.Fatalf("fetchAll returned error: %v", err)
	}
	if p := peak.Load(); p > bulkWorkers {
		t.Fatalf("peak parallelism = %d, want at most %d", p, bulkWorkers)
	}
}
