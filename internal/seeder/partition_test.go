package seeder

import "testing"

func TestPartitionTruncateDropsRemainder(t *testing.T) {
	shares := Partition(1_000_000, 6, Truncate)
	if len(shares) != 6 {
		t.Fatalf("expected 6 shares, got %d", len(shares))
	}
	for _, s := range shares {
		if s.Count != 166_666 {
			t.Errorf("worker %d: expected 166666 rows, got %d", s.Worker, s.Count)
		}
	}
	if got := Planned(shares); got != 999_996 {
		t.Errorf("expected 999996 planned rows, got %d", got)
	}
}

func TestPartitionStrictKeepsEveryRow(t *testing.T) {
	tests := []struct {
		total, workers int
	}{
		{1_000_000, 6},
		{500_000, 6},
		{5_000, 6},
		{12, 2},
		{5, 6},
		{0, 6},
		{7, 1},
	}

	for _, tt := range tests {
		shares := Partition(tt.total, tt.workers, Strict)
		if got := Planned(shares); got != tt.total {
			t.Errorf("Partition(%d, %d): planned %d rows", tt.total, tt.workers, got)
		}

		smallest, largest := shares[0].Count, shares[0].Count
		offset := 0
		for _, s := range shares {
			if s.Offset != offset {
				t.Errorf("Partition(%d, %d): worker %d offset %d, want %d", tt.total, tt.workers, s.Worker, s.Offset, offset)
			}
			offset += s.Count
			if s.Count < smallest {
				smallest = s.Count
			}
			if s.Count > largest {
				largest = s.Count
			}
		}
		if largest-smallest > 1 {
			t.Errorf("Partition(%d, %d): uneven shares %d..%d", tt.total, tt.workers, smallest, largest)
		}
	}
}

func TestPartitionStrictRemainderGoesFirst(t *testing.T) {
	shares := Partition(1_000_000, 6, Strict)
	want := []int{166_667, 166_667, 166_667, 166_667, 166_666, 166_666}
	for i, s := range shares {
		if s.Count != want[i] {
			t.Errorf("worker %d: expected %d rows, got %d", i, want[i], s.Count)
		}
	}
}

func TestPartitionClampsWorkers(t *testing.T) {
	shares := Partition(10, 0, Strict)
	if len(shares) != 1 || shares[0].Count != 10 {
		t.Errorf("expected a single share of 10, got %+v", shares)
	}
}
