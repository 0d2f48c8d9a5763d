// Package genmap holds per-chromosome genetic maps: piecewise-linear
// conversions from physical position (base pairs) to genetic distance
// (centimorgans).
package genmap

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/carbocation/pfx"
	"github.com/csimplestring/go-csv/detector"
)

// Point is one row of a genetic map: a physical position and its genetic
// distance from the start of the chromosome.
type Point struct {
	Chrom string
	Bp    int
	CM    float64
}

// ChromMap is one chromosome's slice of the map. An empty ChromMap falls back
// to the default conversion of 1 Mbp = 1 cM.
type ChromMap struct {
	Chrom  string
	Points []Point
}

// BpToCM converts a physical position to centimorgans by linear interpolation
// between the two surrounding map points, extrapolating from the outermost
// segment beyond the ends.
func (c *ChromMap) BpToCM(bp int) float64 {
	if len(c.Points) == 0 {
		return float64(bp) / 1e6
	}
	if len(c.Points) == 1 {
		return c.Points[0].CM
	}

	// Find the first point at or beyond bp.
	i := 0
	for i < len(c.Points) && c.Points[i].Bp < bp {
		i++
	}
	switch i {
	case 0:
		i = 1
	case len(c.Points):
		i = len(c.Points) - 1
	}
	p0, p1 := c.Points[i-1], c.Points[i]
	if p1.Bp == p0.Bp {
		return p0.CM
	}
	slope := (p1.CM - p0.CM) / float64(p1.Bp-p0.Bp)
	return p0.CM + slope*float64(bp-p0.Bp)
}

// TotalCM returns the genetic length of the chromosome.
func (c *ChromMap) TotalCM() float64 {
	if len(c.Points) == 0 {
		return 0
	}
	return c.Points[len(c.Points)-1].CM
}

// Empty reports whether the chromosome has no map points.
func (c *ChromMap) Empty() bool { return len(c.Points) == 0 }

// Map is a whole-genome genetic map, grouped by chromosome in file order.
type Map struct {
	chroms []*ChromMap
	index  map[string]*ChromMap
}

// Empty reports whether the map has no points at all, in which case every
// chromosome uses the default 1 Mbp = 1 cM conversion.
func (m *Map) Empty() bool { return m == nil || len(m.chroms) == 0 }

// Chrom returns the named chromosome's map slice. Chromosomes absent from the
// map file get an empty slice, i.e. the default conversion.
func (m *Map) Chrom(name string) *ChromMap {
	if m != nil {
		if c, ok := m.index[name]; ok {
			return c
		}
	}
	return &ChromMap{Chrom: name}
}

// DivideIntoChromosomes returns the per-chromosome slices in file order.
func (m *Map) DivideIntoChromosomes() []*ChromMap {
	if m == nil {
		return nil
	}
	return m.chroms
}

// TotalCM sums the genetic length over all chromosomes.
func (m *Map) TotalCM() float64 {
	var total float64
	if m == nil {
		return total
	}
	for _, c := range m.chroms {
		total += c.TotalCM()
	}
	return total
}

// NumChroms returns the number of chromosomes in the map.
func (m *Map) NumChroms() int {
	if m == nil {
		return 0
	}
	return len(m.chroms)
}

// New assembles a map from points already grouped by chromosome, validating
// that positions are monotone and chromosomes are not interleaved.
func New(points []Point) (*Map, error) {
	m := &Map{index: map[string]*ChromMap{}}
	var cur *ChromMap
	for i, p := range points {
		if cur == nil || p.Chrom != cur.Chrom {
			if _, seen := m.index[p.Chrom]; seen {
				return nil, pfx.Err(fmt.Errorf("genetic map: chromosome %s appears in two separate blocks (row %d)", p.Chrom, i+1))
			}
			cur = &ChromMap{Chrom: p.Chrom}
			m.chroms = append(m.chroms, cur)
			m.index[p.Chrom] = cur
		}
		if n := len(cur.Points); n > 0 && p.Bp <= cur.Points[n-1].Bp {
			return nil, pfx.Err(fmt.Errorf("genetic map: position %d not increasing on %s (row %d)", p.Bp, p.Chrom, i+1))
		}
		cur.Points = append(cur.Points, p)
	}
	return m, nil
}

// Read loads a genetic map file of (chrom, bp, cM) rows. The delimiter is
// sniffed from the file contents; '#' lines are comments. An empty path
// yields an empty map.
func Read(path string) (*Map, error) {
	if path == "" {
		return &Map{index: map[string]*ChromMap{}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, pfx.Err(err)
	}

	r := csv.NewReader(bytes.NewReader(raw))
	r.Comma = determineDelimiter(bytes.NewReader(raw))
	r.Comment = '#'
	lines, err := r.ReadAll()
	if err != nil {
		return nil, pfx.Err(err)
	}

	points := make([]Point, 0, len(lines))
	for i, v := range lines {
		if len(v) < 3 {
			return nil, pfx.Err(fmt.Errorf("%s:%d: %d columns, want 3", path, i+1, len(v)))
		}
		bp, err := strconv.Atoi(v[1])
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s:%d: bad basepair %q", path, i+1, v[1]))
		}
		cm, err := strconv.ParseFloat(v[2], 64)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("%s:%d: bad centimorgan %q", path, i+1, v[2]))
		}
		points = append(points, Point{Chrom: v[0], Bp: bp, CM: cm})
	}

	m, err := New(points)
	if err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return m, nil
}

// determineDelimiter returns the single most likely delimiter rune for a
// CSV-like file, defaulting to tab.
func determineDelimiter(r io.Reader) rune {
	d := detector.New()
	delimiters := d.DetectDelimiter(r, '"')
	if len(delimiters) > 0 {
		return rune(delimiters[0][0])
	}
	return '\t'
}
