package mapping

import (
	"fmt"
	"sort"
	"strings"
)

// MonthLabel formats the BULAN value, e.g. "Januari 2025".
func MonthLabel(month string, year int) string {
	return fmt.Sprintf("%s %d", strings.TrimSpace(month), year)
}

// Batch is one month's standardized records as added to a Stack.
type Batch struct {
	Month   string   `json:"month"`
	Records []Record `json:"records"`
}

// MonthCount is the number of stacked rows carrying a month label.
type MonthCount struct {
	Month string `json:"month"`
	Rows  int    `json:"rows"`
}

// Stack accumulates standardized batches across uploads. It is a value:
// Append and Clear return a new Stack and never modify the receiver.
type Stack struct {
	batches []Batch
}

// Append returns a stack with records added after the existing rows.
func (s Stack) Append(month string, records []Record) Stack {
	recs := make([]Record, len(records))
	copy(recs, records)

	batches := make([]Batch, len(s.batches), len(s.batches)+1)
	copy(batches, s.batches)
	batches = append(batches, Batch{Month: month, Records: recs})
	return Stack{batches: batches}
}

// Clear returns an empty stack.
func (Stack) Clear() Stack {
	return Stack{}
}

// Len returns the total number of stacked rows.
func (s Stack) Len() int {
	n := 0
	for _, b := range s.batches {
		n += len(b.Records)
	}
	return n
}

// Batches returns the batches in insertion order.
func (s Stack) Batches() []Batch {
	out := make([]Batch, len(s.batches))
	copy(out, s.batches)
	return out
}

// Months returns per-label row counts ordered by label.
func (s Stack) Months() []MonthCount {
	counts := make(map[string]int)
	for _, b := range s.batches {
		counts[b.Month] += len(b.Records)
	}
	out := make([]MonthCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, MonthCount{Month: m, Rows: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Table returns every stacked row, in insertion order, under BULAN followed
// by the canonical headers. Each batch is rendered through DisplayView.
func (s Stack) Table() Table {
	t := Table{Columns: append([]string{MonthColumn}, Headers()...)}
	for _, b := range s.batches {
		for _, r := range DisplayView(b.Records) {
			t.Rows = append(t.Rows, append([]string{b.Month}, r.Values()...))
		}
	}
	return t
}
