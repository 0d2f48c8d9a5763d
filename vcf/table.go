package vcf

import (
	"io"
)

// Table is one chromosome's worth of records, materialized. The table owns
// its records until the driver has written them out.
type Table struct {
	Header  *Header
	Records []*Record
}

// Chrom returns the chromosome identifier of the table, or "" when empty.
func (t *Table) Chrom() string {
	if len(t.Records) == 0 {
		return ""
	}
	return t.Records[0].Chrom
}

// Size returns the number of records.
func (t *Table) Size() int { return len(t.Records) }

// ChromDivisor materializes one chromosome at a time from a streaming reader,
// preserving stream order. The input is grouped by chromosome, so a single
// lookahead record is enough.
type ChromDivisor struct {
	reader *Reader
	ahead  *Record
	done   bool
}

func NewChromDivisor(r *Reader) *ChromDivisor {
	return &ChromDivisor{reader: r}
}

// Next returns the next chromosome's table, or io.EOF after the last one.
func (d *ChromDivisor) Next() (*Table, error) {
	if d.done {
		return nil, io.EOF
	}

	var records []*Record
	if d.ahead != nil {
		records = append(records, d.ahead)
		d.ahead = nil
	}

	for {
		rec, err := d.reader.Read()
		if err == io.EOF {
			d.done = true
			break
		}
		if err != nil {
			return nil, err
		}
		if len(records) > 0 && rec.Chrom != records[0].Chrom {
			d.ahead = rec
			break
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, io.EOF
	}
	return &Table{Header: d.reader.Header(), Records: records}, nil
}
