// Package segregation classifies variants by the Mendelian pattern that best
// explains the progeny genotypes of a nuclear family, and tests whether a
// variant's allele split is plausible for transmission from a single
// heterozygous parent.
package segregation

import (
	"math"

	"github.com/maltegrosse/Graphite/vcf"
)

// Type is the Mendelian segregation pattern of a variant within one family.
type Type int

const (
	// HomoHet: one parent hom-ref, the other het. Progeny are 0 or 1.
	HomoHet Type = iota
	// HetHet: both parents het. Progeny are 0, 1 or 2.
	HetHet
	// HetHomo: one parent het, the other hom-alt. Progeny are 1 or 2.
	HetHomo
	// None: all progeny mass sits in a single genotype class, so the
	// pattern is indeterminate.
	None
)

func (t Type) String() string {
	switch t {
	case HomoHet:
		return "homo x het"
	case HetHet:
		return "het x het"
	case HetHomo:
		return "het x homo"
	}
	return "none"
}

// epsilon smooths the emission matrix so no entry is log-zero. Matches the
// per-genotype miscall rate assumed throughout.
const epsilon = 0.01

// emissions[s][g] is the smoothed probability of observing progeny genotype g
// under segregation hypothesis s.
var emissions = func() [3][3]float64 {
	raw := [3][3]float64{
		{0.5, 0.5, 0.0},
		{0.25, 0.5, 0.25},
		{0.0, 0.5, 0.5},
	}
	var pss [3][3]float64
	for s := range raw {
		for g := range raw[s] {
			pss[s][g] = (raw[s][g] + epsilon) / (1.0 + 3*epsilon)
		}
	}
	return pss
}()

// CountGenotypes tallies the progeny of rec into genotype classes 0, 1 and 2.
// Missing calls are excluded.
func CountGenotypes(rec *vcf.FamilyRecord) [3]int {
	var ns [3]int
	for _, gt := range rec.ProgenyIntGTs() {
		if gt >= 0 && gt <= 2 {
			ns[gt]++
		}
	}
	return ns
}

// Classify returns the segregation hypothesis with the highest log-likelihood
// for the given progeny counts. Ties resolve to the earliest hypothesis in
// scan order (HomoHet, HetHet, HetHomo). When any two of the three counts sum
// to zero the type is None.
func Classify(ns [3]int) Type {
	if ns[0]+ns[1] == 0 || ns[0]+ns[2] == 0 || ns[1]+ns[2] == 0 {
		return None
	}

	best := HomoHet
	bestLL := math.Inf(-1)
	for s := 0; s < 3; s++ {
		var ll float64
		for g := 0; g < 3; g++ {
			ll += float64(ns[g]) * math.Log(emissions[s][g])
		}
		if ll > bestLL {
			best = Type(s)
			bestLL = ll
		}
	}
	return best
}

// TypeOf classifies one family view.
func TypeOf(rec *vcf.FamilyRecord) Type {
	return Classify(CountGenotypes(rec))
}

// IsMendelian reports whether the parental genotypes are called and agree
// with the segregation type inferred from the progeny.
func IsMendelian(rec *vcf.FamilyRecord) bool {
	segType := TypeOf(rec)
	if segType == None {
		return false
	}

	gtM := rec.MatIntGT()
	gtP := rec.PatIntGT()
	if gtM == vcf.MissingGT || gtP == vcf.MissingGT {
		return false
	}

	switch segType {
	case HomoHet:
		return gtM+gtP == 1
	case HetHet:
		return gtM == 1 && gtP == 1
	default:
		return gtM+gtP == 3
	}
}

// IsHeteroHomo reports whether the variant segregates with the maternal
// (isMat) or paternal (!isMat) parent heterozygous and the other homozygous.
func IsHeteroHomo(rec *vcf.FamilyRecord, isMat bool) bool {
	if !IsMendelian(rec) {
		return false
	}

	gtM := rec.MatIntGT()
	gtP := rec.PatIntGT()
	if isMat {
		return gtM == 1 && (gtP == 0 || gtP == 2)
	}
	return (gtM == 0 || gtM == 2) && gtP == 1
}

// FromHeteroParent extracts, for each progeny, the allele inherited from the
// heterozygous parent: subtracting the homozygous parent's contribution
// leaves 0 or 1; anything else is missing.
func FromHeteroParent(rec *vcf.FamilyRecord, isMatHetero bool) []int {
	homoGT := rec.MatIntGT()
	if isMatHetero {
		homoGT = rec.PatIntGT()
	}

	gts := make([]int, rec.NumProgeny())
	for i := range gts {
		gt := rec.IntGT(i+2) - homoGT/2
		if gt == 0 || gt == 1 {
			gts[i] = gt
		} else {
			gts[i] = vcf.MissingGT
		}
	}
	return gts
}

// IsValid rejects variants whose progeny allele split is too skewed to come
// from a single heterozygous parent, given the variant's map position. A
// valid split is near 1:1; the bias probability table decides how much
// imbalance the position tolerates.
func IsValid(rec *vcf.FamilyRecord, isMat bool, cM float64) bool {
	gts := FromHeteroParent(rec, isMat)
	n := 0
	n0 := 0
	for _, gt := range gts {
		if gt != vcf.MissingGT {
			n++
		}
		if gt == 0 {
			n0++
		}
	}
	bias := n0
	if n-n0 < bias {
		bias = n - n0
	}
	return bias >= MaxBias(n, cM)
}
