package parallel

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
)

func TestMapOrder(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 64} {
		results, err := Map(context.Background(), 100, workers, func(_ context.Context, i int) (int, error) {
			return i * i, nil
		})
		if err != nil {
			t.Fatal(err)
		}
		for i, r := range results {
			if r != i*i {
				t.Fatalf("workers=%v: results[%v] = %v", workers, i, r)
			}
		}
	}
}

func TestMapError(t *testing.T) {
	failure := errors.New("boom")
	results, err := Map(context.Background(), 50, 4, func(_ context.Context, i int) (string, error) {
		if i == 17 {
			return "", failure
		}
		return "ok", nil
	})
	if !errors.Is(err, failure) {
		t.Errorf("Map() error = %v, want %v", err, failure)
	}
	if results != nil {
		t.Errorf("Map() returned partial results on error")
	}
}

func TestMapCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	results, err := Map(ctx, 1000, 2, func(_ context.Context, i int) (int, error) {
		if calls.Add(1) == 10 {
			cancel()
		}
		return i, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Map() error = %v, want context.Canceled", err)
	}
	if results != nil {
		t.Errorf("Map() returned results after cancellation")
	}
	if calls.Load() >= 1000 {
		t.Errorf("cancellation did not stop work")
	}
}

func TestMapEmpty(t *testing.T) {
	results, err := Map(context.Background(), 0, 4, func(_ context.Context, i int) (int, error) {
		return 0, errors.New("never called")
	})
	if err != nil || len(results) != 0 {
		t.Errorf("Map(0) = %v, %v", results, err)
	}
}

func TestChunks(t *testing.T) {
	tests := []struct {
		n, parts int
		want     [][2]int
	}{
		{10, 3, [][2]int{{0, 3}, {3, 6}, {6, 10}}},
		{2, 5, [][2]int{{0, 1}, {1, 2}}},
		{0, 4, nil},
		{5, 1, [][2]int{{0, 5}}},
	}
	for _, tt := range tests {
		if got := Chunks(tt.n, tt.parts); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Chunks(%v, %v) = %v, want %v", tt.n, tt.parts, got, tt.want)
		}
	}
}
