// Package pedigree loads parent-offspring tables and derives the nuclear
// families used by the imputation engine.
package pedigree

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/carbocation/pfx"
	"github.com/montanaflynn/stats"
)

// NoParent marks a missing parent in a pedigree file.
const NoParent = "0"

// Entry is one pedigree row: a sample and its two parents. A root sample has
// NoParent for one or both of them.
type Entry struct {
	Sample string
	Mat    string
	Pat    string
}

// Table maps each sample to its pedigree entry, preserving file order.
type Table struct {
	entries []Entry
	index   map[string]Entry
}

// Family is a nuclear family: two parents and their progeny, in pedigree
// file order.
type Family struct {
	Mat     string
	Pat     string
	Progeny []string
}

// NumProgeny returns the number of progeny in the family.
func (f *Family) NumProgeny() int { return len(f.Progeny) }

// Key identifies the family by its parent pair.
func (f *Family) Key() string { return f.Mat + "\x00" + f.Pat }

// Load reads a pedigree file. Each row is whitespace-delimited with at least
// three columns (sample, maternal sample, paternal sample); further columns
// are ignored. Rows naming samples absent from the genotype table are dropped
// with a warning. Duplicate sample rows and parent cycles are errors.
func Load(path string, samples []string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	defer f.Close()

	known := make(map[string]bool, len(samples))
	for _, s := range samples {
		known[s] = true
	}

	t := &Table{index: map[string]Entry{}}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		// Tab-delimited rows may leave a parent column empty; otherwise any
		// whitespace run separates columns.
		var fields []string
		if strings.ContainsRune(text, '\t') {
			fields = strings.Split(text, "\t")
		} else {
			fields = strings.Fields(text)
		}
		if len(fields) < 3 {
			return nil, pfx.Err(fmt.Errorf("%s:%d: %d columns, want at least 3", path, line, len(fields)))
		}
		e := Entry{Sample: fields[0], Mat: normalize(fields[1]), Pat: normalize(fields[2])}
		if !known[e.Sample] {
			log.Printf("pedigree: dropping %s (%s:%d): not in the genotype table\n", e.Sample, path, line)
			continue
		}
		if _, dup := t.index[e.Sample]; dup {
			return nil, pfx.Err(fmt.Errorf("%s:%d: sample %s listed twice", path, line, e.Sample))
		}
		t.entries = append(t.entries, e)
		t.index[e.Sample] = e
	}
	if err := sc.Err(); err != nil {
		return nil, pfx.Err(err)
	}

	if err := t.checkCycles(); err != nil {
		return nil, pfx.Err(fmt.Errorf("%s: %w", path, err))
	}
	return t, nil
}

func normalize(parent string) string {
	if parent == "" {
		return NoParent
	}
	return parent
}

// checkCycles walks each sample's ancestry over both parent lines; the
// pedigree must be acyclic. A cycle makes some sample its own ancestor, so
// finding the start sample again is the only condition to look for.
func (t *Table) checkCycles() error {
	for _, e := range t.entries {
		stack := []string{e.Mat, e.Pat}
		seen := map[string]bool{}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if cur == NoParent || seen[cur] {
				continue
			}
			if cur == e.Sample {
				return fmt.Errorf("pedigree cycle involving %s", e.Sample)
			}
			seen[cur] = true
			if p, ok := t.index[cur]; ok {
				stack = append(stack, p.Mat, p.Pat)
			}
		}
	}
	return nil
}

// Parents returns the recorded parents of a sample and whether the sample is
// present in the table.
func (t *Table) Parents(sample string) (mat, pat string, ok bool) {
	e, ok := t.index[sample]
	return e.Mat, e.Pat, ok
}

// Size returns the number of retained pedigree rows.
func (t *Table) Size() int { return len(t.entries) }

// Families groups samples into nuclear families whose two parents are both
// genotyped. restrict, when non-empty, keeps only families whose maternal or
// paternal sample is named in it.
func (t *Table) Families(restrict []string) []*Family {
	keep := map[string]bool{}
	for _, r := range restrict {
		keep[r] = true
	}

	byParents := map[string]*Family{}
	var order []*Family
	for _, e := range t.entries {
		if e.Mat == NoParent || e.Pat == NoParent {
			continue
		}
		if _, ok := t.index[e.Mat]; !ok {
			continue
		}
		if _, ok := t.index[e.Pat]; !ok {
			continue
		}
		key := e.Mat + "\x00" + e.Pat
		fam, ok := byParents[key]
		if !ok {
			fam = &Family{Mat: e.Mat, Pat: e.Pat}
			byParents[key] = fam
			order = append(order, fam)
		}
		fam.Progeny = append(fam.Progeny, e.Sample)
	}

	if len(keep) == 0 {
		return order
	}
	var selected []*Family
	for _, fam := range order {
		if keep[fam.Mat] || keep[fam.Pat] {
			selected = append(selected, fam)
		}
	}
	return selected
}

// DisplayInfo logs a summary of the pedigree: how many families were found
// and the spread of their progeny counts.
func DisplayInfo(families []*Family, lowerProgs int) {
	if len(families) == 0 {
		log.Println("pedigree: no nuclear families with both parents genotyped")
		return
	}
	sizes := make([]float64, len(families))
	large := 0
	for i, fam := range families {
		sizes[i] = float64(fam.NumProgeny())
		if fam.NumProgeny() >= lowerProgs {
			large++
		}
	}
	mean, _ := stats.Mean(sizes)
	median, _ := stats.Median(sizes)
	log.Printf("pedigree: %d families (%d with >= %d progeny), progeny per family mean %.1f median %.0f\n",
		len(families), large, lowerProgs, mean, median)
}
