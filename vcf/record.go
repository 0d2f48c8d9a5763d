package vcf

import (
	"fmt"
	"strconv"
	"strings"
)

// Missing is the VCF missing-allele marker.
const Missing = "."

// MissingGT is the integer genotype of a cell with an uncalled allele.
const MissingGT = -1

// Record is one row of a genotype table: the fixed VCF columns plus one
// genotype cell per sample. Records are built by the Reader and are not
// modified by consumers; the imputation driver writes phased genotype cells
// back through SetGT while it processes the record's chromosome, once for
// each family bucket the record belongs to.
type Record struct {
	Chrom  string
	Pos    int
	ID     string
	Ref    string
	Alt    string
	Qual   string
	Filter string
	Info   string
	Format string

	// Genotypes holds the raw per-sample cells in header sample order.
	Genotypes []string
}

// GT returns the raw genotype cell for sample column i.
func (r *Record) GT(i int) string {
	return r.Genotypes[i]
}

// SetGT overwrites the genotype cell for sample column i.
func (r *Record) SetGT(i int, gt string) {
	r.Genotypes[i] = gt
}

// IntGT returns the integer genotype of sample column i: the sum of the two
// allele dosages of a diploid call, or MissingGT if either allele is missing
// or unparseable. Trailing FORMAT fields after the first ':' are ignored.
func (r *Record) IntGT(i int) int {
	return ParseIntGT(r.Genotypes[i])
}

// IntGTs returns the integer genotypes of every sample column.
func (r *Record) IntGTs() []int {
	gts := make([]int, len(r.Genotypes))
	for i := range r.Genotypes {
		gts[i] = r.IntGT(i)
	}
	return gts
}

// ParseIntGT parses a genotype cell of the form "A|B" or "A/B", possibly
// followed by ":"-separated FORMAT fields, into an integer genotype.
func ParseIntGT(cell string) int {
	if colon := strings.IndexByte(cell, ':'); colon >= 0 {
		cell = cell[:colon]
	}
	sep := strings.IndexAny(cell, "|/")
	if sep < 0 {
		return MissingGT
	}
	a, err := strconv.Atoi(cell[:sep])
	if err != nil || a < 0 {
		return MissingGT
	}
	b, err := strconv.Atoi(cell[sep+1:])
	if err != nil || b < 0 {
		return MissingGT
	}
	return a + b
}

// String re-serializes the record as a tab-separated VCF data line. A record
// that was read and never modified round-trips byte-identically.
func (r *Record) String() string {
	fields := make([]string, 0, 9+len(r.Genotypes))
	fields = append(fields, r.Chrom, strconv.Itoa(r.Pos), r.ID, r.Ref, r.Alt,
		r.Qual, r.Filter, r.Info, r.Format)
	fields = append(fields, r.Genotypes...)
	return strings.Join(fields, "\t")
}

// PhasedGT renders two allele dosages as a phased genotype cell.
func PhasedGT(a, b int) string {
	return fmt.Sprintf("%d|%d", a, b)
}

// ReplaceGT swaps the genotype subfield of a cell, keeping any FORMAT fields
// after the first ':'.
func ReplaceGT(cell, gt string) string {
	if colon := strings.IndexByte(cell, ':'); colon >= 0 {
		return gt + cell[colon:]
	}
	return gt
}
