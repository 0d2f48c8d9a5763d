// Package impute reconstructs the haplotypes transmitted by heterozygous
// parents across nuclear families and fills in missing progeny genotypes,
// chromosome by chromosome.
package impute

import (
	"github.com/maltegrosse/Graphite/genmap"
	"github.com/maltegrosse/Graphite/pedigree"
	"github.com/maltegrosse/Graphite/segregation"
	"github.com/maltegrosse/Graphite/vcf"
)

// Parents identifies a nuclear family by its parent pair.
type Parents struct {
	Mat string
	Pat string
}

// Key addresses one hetero-homo bucket: a family plus which parent plays the
// heterozygous role.
type Key struct {
	Parents   Parents
	MatHetero bool
}

// HeteroHomo is an ordered sequence of family views sharing one family and
// one heterozygous-parent role, together with the genetic map. Records are
// sorted by (chromosome, position) because they are appended in stream order.
// The set exclusively owns its family records.
type HeteroHomo struct {
	Key     Key
	Samples []string
	Records []*vcf.FamilyRecord

	genome *genmap.Map
	// Chrom is the single chromosome's map slice once the set has been
	// divided; nil while the set may still span chromosomes.
	Chrom *genmap.ChromMap
}

// Size returns the number of records in the set.
func (hh *HeteroHomo) Size() int { return len(hh.Records) }

// CM returns the genetic-map position of record i.
func (hh *HeteroHomo) CM(i int) float64 {
	rec := hh.Records[i]
	if hh.Chrom != nil {
		return hh.Chrom.BpToCM(rec.Pos)
	}
	return hh.genome.Chrom(rec.Chrom).BpToCM(rec.Pos)
}

// DivideByChromosomes splits the set into per-chromosome sets, each paired
// with its chromosome's map slice. Records are copied, not moved: the
// receiver remains usable. The concatenation of the outputs equals the input.
func (hh *HeteroHomo) DivideByChromosomes() []*HeteroHomo {
	var out []*HeteroHomo
	var cur *HeteroHomo
	prevChrom := ""
	for _, rec := range hh.Records {
		if rec.Chrom != prevChrom {
			cur = &HeteroHomo{
				Key:     hh.Key,
				Samples: hh.Samples,
				genome:  hh.genome,
				Chrom:   hh.genome.Chrom(rec.Chrom),
			}
			out = append(out, cur)
			prevChrom = rec.Chrom
		}
		cur.Records = append(cur.Records, rec.Copy())
	}
	return out
}

// UpdateGenotypes overwrites each record's genotype slots in record order.
// gts[i] lists the phased cells for record i in [mat, pat, progeny...] order.
func (hh *HeteroHomo) UpdateGenotypes(gts [][]string) {
	for i, rec := range hh.Records {
		rec.SetGTs(gts[i])
	}
}

// Apply copies the set's genotypes back into the owning chromosome table,
// preserving any non-GT FORMAT fields of the original cells.
func (hh *HeteroHomo) Apply(table *vcf.Table) {
	for _, rec := range hh.Records {
		target := table.Records[rec.Row]
		for slot := range hh.Samples {
			col := rec.Col(slot)
			target.SetGT(col, vcf.ReplaceGT(target.GT(col), rec.GT(slot)))
		}
	}
}

// Collect reads the table's records in order and projects each onto every
// eligible family, bucketing the projections by (family, hetero-parent role).
// A variant may land in both buckets of one family; the two projections are
// independent copies. When filterBiased is set, projections failing the bias
// validity test for their map position are dropped. The returned keys
// preserve first-seen order.
func Collect(table *vcf.Table, families []*pedigree.Family, gm *genmap.Map, filterBiased bool) (map[Key]*HeteroHomo, []Key) {
	type famCols struct {
		fam     *pedigree.Family
		samples []string
		cols    []int
	}

	var eligible []famCols
	for _, fam := range families {
		if fam.NumProgeny() == 0 {
			continue
		}
		members := append([]string{fam.Mat, fam.Pat}, fam.Progeny...)
		cols := make([]int, len(members))
		ok := true
		for i, name := range members {
			cols[i] = table.Header.SampleIndex(name)
			if cols[i] < 0 {
				ok = false
				break
			}
		}
		if ok {
			eligible = append(eligible, famCols{fam: fam, samples: members, cols: cols})
		}
	}

	buckets := map[Key]*HeteroHomo{}
	var keys []Key
	for row, rec := range table.Records {
		for _, fc := range eligible {
			proj := vcf.Project(rec, row, fc.samples, fc.cols)
			for _, isMat := range []bool{true, false} {
				if !segregation.IsHeteroHomo(proj, isMat) {
					continue
				}
				if filterBiased {
					cm := gm.Chrom(rec.Chrom).BpToCM(rec.Pos)
					if !segregation.IsValid(proj, isMat, cm) {
						continue
					}
				}
				key := Key{Parents: Parents{Mat: fc.fam.Mat, Pat: fc.fam.Pat}, MatHetero: isMat}
				hh, ok := buckets[key]
				if !ok {
					hh = &HeteroHomo{Key: key, Samples: fc.samples, genome: gm}
					buckets[key] = hh
					keys = append(keys, key)
				}
				hh.Records = append(hh.Records, proj.Copy())
			}
		}
	}
	return buckets, keys
}
