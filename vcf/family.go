package vcf

// FamilyRecord is a record re-presented against one nuclear family. Sample
// slot 0 is the maternal sample, slot 1 the paternal sample, and the rest are
// progeny. The genotype cells are private copies: writing to a family record
// never touches the record it was projected from.
type FamilyRecord struct {
	Chrom   string
	Pos     int
	Samples []string

	gts []string
	// cols maps each family slot to its sample column in the source table.
	cols []int
	// Row is the index of the source record within its chromosome's table.
	Row int
}

// Project builds a family view of rec. samples lists the family members in
// [mat, pat, progeny...] order; cols gives each member's sample column in the
// source table. The genotype cells are copied.
func Project(rec *Record, row int, samples []string, cols []int) *FamilyRecord {
	gts := make([]string, len(cols))
	for i, c := range cols {
		gts[i] = rec.Genotypes[c]
	}
	return &FamilyRecord{
		Chrom:   rec.Chrom,
		Pos:     rec.Pos,
		Samples: samples,
		gts:     gts,
		cols:    cols,
		Row:     row,
	}
}

// Copy returns an independent copy of the family record.
func (f *FamilyRecord) Copy() *FamilyRecord {
	gts := make([]string, len(f.gts))
	copy(gts, f.gts)
	return &FamilyRecord{
		Chrom:   f.Chrom,
		Pos:     f.Pos,
		Samples: f.Samples,
		gts:     gts,
		cols:    f.cols,
		Row:     f.Row,
	}
}

func (f *FamilyRecord) GT(i int) string        { return f.gts[i] }
func (f *FamilyRecord) SetGT(i int, gt string) { f.gts[i] = gt }

// SetGTs replaces every genotype slot. len(gts) must equal the family size.
func (f *FamilyRecord) SetGTs(gts []string) {
	copy(f.gts, gts)
}

// GTs returns the genotype slots. The slice is the record's own storage;
// callers that need to keep it must copy.
func (f *FamilyRecord) GTs() []string { return f.gts }

// Col returns the source-table sample column of family slot i.
func (f *FamilyRecord) Col(i int) int { return f.cols[i] }

func (f *FamilyRecord) IntGT(i int) int { return ParseIntGT(f.gts[i]) }

func (f *FamilyRecord) MatIntGT() int { return f.IntGT(0) }
func (f *FamilyRecord) PatIntGT() int { return f.IntGT(1) }

// NumProgeny returns the number of progeny slots.
func (f *FamilyRecord) NumProgeny() int { return len(f.gts) - 2 }

// ProgenyIntGTs returns the integer genotypes of the progeny slots.
func (f *FamilyRecord) ProgenyIntGTs() []int {
	gts := make([]int, f.NumProgeny())
	for i := range gts {
		gts[i] = f.IntGT(i + 2)
	}
	return gts
}
