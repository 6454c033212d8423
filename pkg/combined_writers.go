package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter writes every message to all of its writers. A failing
// writer does not stop the others, its error is combined into the result.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{
		Writers: append([]io.Writer(nil), writers...),
	}
}

// Write reports len(p) written when at least one writer took the whole message.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var errs error
	n := 0
	for _, w := range cw.Writers {
		written, err := w.Write(p)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		n = max(n, written)
	}
	return n, errs
}
