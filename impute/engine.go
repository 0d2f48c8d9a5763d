package impute

import (
	"math"

	"github.com/maltegrosse/Graphite/mst"
	"github.com/maltegrosse/Graphite/segregation"
	"github.com/maltegrosse/Graphite/vcf"
)

// markerWindow caps how far apart, in marker count, two records may be and
// still share an edge in the linkage graph.
const markerWindow = 20

// maxMismatches returns how many genotype disagreements two markers separated
// by dcm centimorgans may show among n progeny before they are considered
// unlinked: the expected recombinant count under the Haldane map function
// plus three standard deviations, with one extra for genotyping error.
func maxMismatches(n int, dcm float64) int {
	r := 0.5 * (1 - math.Exp(-dcm/50))
	mu := float64(n) * r
	return int(mu+3*math.Sqrt(mu*(1-r))) + 1
}

type edgeKey struct {
	v1, v2 int
}

// Impute reconstructs the heterozygous parent's haplotype across the set's
// records and returns, for each record, the phased genotype cells in
// [mat, pat, progeny...] order. Every progeny cell in the result is phased
// and non-missing.
//
// Markers form a graph whose edge weights are inherited-allele distances
// modulo inversion; the minimum spanning tree orients each marker's allele
// labeling consistently with its neighbors, which fixes the parent's phase.
// Missing progeny alleles are then filled from the nearest oriented marker.
func (hh *HeteroHomo) Impute() [][]string {
	n := len(hh.Records)
	if n == 0 {
		return nil
	}
	numProgeny := hh.Records[0].NumProgeny()

	alleles := make([][]int, n)
	cms := make([]float64, n)
	for i, rec := range hh.Records {
		alleles[i] = segregation.FromHeteroParent(rec, hh.Key.MatHetero)
		cms[i] = hh.CM(i)
	}

	orient := hh.orientMarkers(alleles, cms, numProgeny)

	// Work in homolog space: 1 means the progeny inherited the homolog that
	// carries the alt allele at an unflipped marker. Observed alleles are
	// untouched by the round trip through orientation.
	homologs := make([][]int, n)
	for i := range alleles {
		homologs[i] = make([]int, numProgeny)
		for p, a := range alleles[i] {
			if a == vcf.MissingGT {
				homologs[i][p] = vcf.MissingGT
			} else if orient[i] {
				homologs[i][p] = 1 - a
			} else {
				homologs[i][p] = a
			}
		}
	}
	fillMissing(homologs, cms)

	gts := make([][]string, n)
	for i, rec := range hh.Records {
		homoParent := rec.MatIntGT()
		if hh.Key.MatHetero {
			homoParent = rec.PatIntGT()
		}
		h := homoParent / 2

		hetGT := "0|1"
		if orient[i] {
			hetGT = "1|0"
		}
		homGT := vcf.PhasedGT(h, h)

		row := make([]string, 2+numProgeny)
		if hh.Key.MatHetero {
			row[0], row[1] = hetGT, homGT
		} else {
			row[0], row[1] = homGT, hetGT
		}
		for p := 0; p < numProgeny; p++ {
			a := homologs[i][p]
			if orient[i] {
				a = 1 - a
			}
			if hh.Key.MatHetero {
				row[p+2] = vcf.PhasedGT(a, h)
			} else {
				row[p+2] = vcf.PhasedGT(h, a)
			}
		}
		gts[i] = row
	}
	return gts
}

// orientMarkers decides, per marker, whether its allele labeling must be
// flipped to agree with its neighbors. Nearby markers are joined by edges
// weighted with the inherited-allele distance; a walk over the minimum
// spanning tree propagates the inversion flags from each component root.
func (hh *HeteroHomo) orientMarkers(alleles [][]int, cms []float64, numProgeny int) []bool {
	n := len(alleles)
	graph := mst.Graph{}
	inverted := map[edgeKey]bool{}
	for i := 0; i < n; i++ {
		if _, ok := graph[i]; !ok {
			graph[i] = nil
		}
		for j := i + 1; j < n && j <= i+markerWindow; j++ {
			md := maxMismatches(numProgeny, cms[j]-cms[i])
			d, inv := Distance(alleles[i], alleles[j], md)
			graph[i] = append(graph[i], mst.Edge{To: j, Weight: d})
			graph[j] = append(graph[j], mst.Edge{To: i, Weight: d})
			inverted[edgeKey{i, j}] = inv
		}
	}

	tree := mst.Kruskal(graph)

	orient := make([]bool, n)
	visited := make([]bool, n)
	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		queue := []int{start}
		for len(queue) > 0 {
			v := queue[0]
			queue = queue[1:]
			for _, e := range tree[v] {
				if visited[e.To] {
					continue
				}
				visited[e.To] = true
				key := edgeKey{v, e.To}
				if e.To < v {
					key = edgeKey{e.To, v}
				}
				orient[e.To] = orient[v] != inverted[key]
				queue = append(queue, e.To)
			}
		}
	}
	return orient
}

// fillMissing replaces every missing homolog value with the value of the
// nearest marker (by map distance) where the same progeny is called,
// preferring the earlier marker on ties. A progeny with no calls at all
// defaults to the first homolog.
func fillMissing(homologs [][]int, cms []float64) {
	n := len(homologs)
	if n == 0 {
		return
	}
	numProgeny := len(homologs[0])

	for p := 0; p < numProgeny; p++ {
		prev := make([]int, n) // index of the nearest earlier call, or -1
		last := -1
		for i := 0; i < n; i++ {
			if homologs[i][p] != vcf.MissingGT {
				last = i
			}
			prev[i] = last
		}
		next := make([]int, n)
		last = -1
		for i := n - 1; i >= 0; i-- {
			if homologs[i][p] != vcf.MissingGT {
				last = i
			}
			next[i] = last
		}

		for i := 0; i < n; i++ {
			if homologs[i][p] != vcf.MissingGT {
				continue
			}
			pi, ni := prev[i], next[i]
			switch {
			case pi < 0 && ni < 0:
				homologs[i][p] = 0
			case pi < 0:
				homologs[i][p] = homologs[ni][p]
			case ni < 0:
				homologs[i][p] = homologs[pi][p]
			case cms[i]-cms[pi] <= cms[ni]-cms[i]:
				homologs[i][p] = homologs[pi][p]
			default:
				homologs[i][p] = homologs[ni][p]
			}
		}
	}
}
