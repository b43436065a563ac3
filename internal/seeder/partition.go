package seeder

import "github.com/samber/lo"

// Share is the contiguous slice of a table's rows assigned to one worker.
// Offset is the index of the worker's first row.
type Share struct {
	Worker int
	Offset int
	Count  int
}

// Partition splits total rows across workers. With Strict the first
// total%workers workers take one extra row, so the counts always sum to
// total. With Truncate every worker takes total/workers and the remainder
// is dropped.
func Partition(total, workers int, mode Distribution) []Share {
	if workers < 1 {
		workers = 1
	}
	if total < 0 {
		total = 0
	}

	base := total / workers
	extra := 0
	if mode != Truncate {
		extra = total % workers
	}

	shares := make([]Share, workers)
	offset := 0
	for i := range shares {
		count := base
		if i < extra {
			count++
		}
		shares[i] = Share{Worker: i, Offset: offset, Count: count}
		offset += count
	}
	return shares
}

// Planned is the number of rows a partition will generate.
func Planned(shares []Share) int {
	return lo.SumBy(shares, func(s Share) int { return s.Count })
}
