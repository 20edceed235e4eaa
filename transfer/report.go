package transfer

import (
	"fmt"
	"io"

	"github.com/aybabtme/uniplot/histogram"
)

// Report accumulates transfer statistics across attempts.
type Report struct {
	Attempts       int
	Failures       int
	HandshakeTicks int
	TransmitTicks  int
	// Bytes delivered by the most recent attempt.
	Bytes int
	// ChunkTicks is the ticks spent on each chunk of the successful attempt.
	ChunkTicks []int
}

func (r *Report) Fprint(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"attempts: %d (failed %d)\nhandshake ticks: %d\ntransmit ticks: %d\nbytes: %d in %d chunks\n",
		r.Attempts, r.Failures, r.HandshakeTicks, r.TransmitTicks, r.Bytes, len(r.ChunkTicks))
	if err != nil {
		return err
	}
	if len(r.ChunkTicks) == 0 {
		return nil
	}

	data := make([]float64, len(r.ChunkTicks))
	for i, t := range r.ChunkTicks {
		data[i] = float64(t)
	}

	bins := 8
	if len(data) < bins {
		bins = len(data)
	}
	fmt.Fprintln(w, "ticks per chunk:")
	return histogram.Fprint(w, histogram.Hist(bins, data), histogram.Linear(40))
}
