package vcf

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/klauspost/compress/gzip"
)

// BufferSize is shared by the buffered reader and writer.
const BufferSize = 4096 * 8

const columnHeaderPrefix = "#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\tFORMAT"

// Header is the verbatim meta section of a VCF: the "##" lines, the "#CHROM"
// column-header line, and the sample names parsed from it.
type Header struct {
	MetaLines  []string
	ColumnLine string
	Samples    []string
}

// SampleIndex returns the column index of the named sample, or -1.
func (h *Header) SampleIndex(name string) int {
	for i, s := range h.Samples {
		if s == name {
			return i
		}
	}
	return -1
}

// Reader streams records from a genotype table. Records are yielded one at a
// time in file order; the reader owns nothing about a record once returned.
type Reader struct {
	path    string
	scanner *bufio.Scanner
	header  *Header
	line    int

	prevChrom string
	prevPos   int
	seenChrom map[string]bool
}

// NewReader parses the header section of r and positions the stream at the
// first data line. The path is used only for error messages.
func NewReader(r io.Reader, path string) (*Reader, error) {
	sc := bufio.NewScanner(bufio.NewReaderSize(r, BufferSize))
	sc.Buffer(make([]byte, BufferSize), 1024*1024*16)

	rdr := &Reader{path: path, scanner: sc, seenChrom: map[string]bool{}}
	h := &Header{}
	for sc.Scan() {
		rdr.line++
		line := sc.Text()
		if strings.HasPrefix(line, "##") {
			h.MetaLines = append(h.MetaLines, line)
			continue
		}
		if strings.HasPrefix(line, "#") {
			if !strings.HasPrefix(line, columnHeaderPrefix) {
				return nil, pfx.Err(fmt.Errorf("%s:%d: malformed column header line", path, rdr.line))
			}
			h.ColumnLine = line
			fields := strings.Split(line, "\t")
			if len(fields) > 9 {
				h.Samples = fields[9:]
			}
			rdr.header = h
			return rdr, nil
		}
		return nil, pfx.Err(fmt.Errorf("%s:%d: data line before column header", path, rdr.line))
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}
	return nil, pfx.Err(fmt.Errorf("%s: no column header line found", path))
}

// Header returns the parsed header.
func (r *Reader) Header() *Header {
	return r.header
}

// Read returns the next record, or io.EOF once the stream is exhausted.
// Malformed lines and non-monotone positions within a chromosome are format
// errors carrying the file path and line number.
func (r *Reader) Read() (*Record, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return nil, pfx.Err(err)
		}
		return nil, io.EOF
	}
	r.line++
	rec, err := r.parseLine(r.scanner.Text())
	if err != nil {
		return nil, err
	}

	if rec.Chrom != r.prevChrom {
		if r.seenChrom[rec.Chrom] {
			return nil, pfx.Err(fmt.Errorf("%s:%d: chromosome %s seen in two separate blocks", r.path, r.line, rec.Chrom))
		}
		r.seenChrom[rec.Chrom] = true
		r.prevChrom = rec.Chrom
		r.prevPos = 0
	}
	if rec.Pos < r.prevPos {
		return nil, pfx.Err(fmt.Errorf("%s:%d: position %d out of order on %s", r.path, r.line, rec.Pos, rec.Chrom))
	}
	r.prevPos = rec.Pos

	return rec, nil
}

func (r *Reader) parseLine(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) != 9+len(r.header.Samples) {
		return nil, pfx.Err(fmt.Errorf("%s:%d: %d columns, want %d", r.path, r.line, len(fields), 9+len(r.header.Samples)))
	}
	pos, err := strconv.Atoi(fields[1])
	if err != nil || pos <= 0 {
		return nil, pfx.Err(fmt.Errorf("%s:%d: bad POS %q", r.path, r.line, fields[1]))
	}
	return &Record{
		Chrom:     fields[0],
		Pos:       pos,
		ID:        fields[2],
		Ref:       fields[3],
		Alt:       fields[4],
		Qual:      fields[5],
		Filter:    fields[6],
		Info:      fields[7],
		Format:    fields[8],
		Genotypes: fields[9:],
	}, nil
}

// Open opens a plain or gzip-compressed genotype table for streaming.
func Open(path string) (*Reader, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, pfx.Err(err)
	}

	var src io.Reader = f
	if gz, err := gzip.NewReader(f); err == nil {
		src = gz
	} else {
		// Not gzip; rewind and read as plain text.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return nil, nil, pfx.Err(err)
		}
	}

	rdr, err := NewReader(src, path)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return rdr, f, nil
}
