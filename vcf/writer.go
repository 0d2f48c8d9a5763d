package vcf

import (
	"bufio"
	"io"

	"github.com/carbocation/pfx"
)

// Writer serializes records back into the tab-separated table format.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, BufferSize)}
}

// WriteHeader writes the meta lines and the column header line. It is called
// once, before the first chromosome's records.
func (w *Writer) WriteHeader(h *Header) error {
	for _, line := range h.MetaLines {
		if _, err := w.w.WriteString(line + "\n"); err != nil {
			return pfx.Err(err)
		}
	}
	if _, err := w.w.WriteString(h.ColumnLine + "\n"); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func (w *Writer) WriteRecord(r *Record) error {
	if _, err := w.w.WriteString(r.String()); err != nil {
		return pfx.Err(err)
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return pfx.Err(err)
	}
	return nil
}

func (w *Writer) Flush() error {
	return pfx.Err(w.w.Flush())
}
