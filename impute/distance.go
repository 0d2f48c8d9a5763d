package impute

// Distance compares two inherited-allele vectors of equal length and returns
// the smaller of the plain Hamming distance and the Hamming distance after
// inverting one side's 0/1 encoding, plus whether the plain distance exceeds
// maxDist (so that only the inverted alignment can be within it). Once both counters exceed maxDist the scan short-circuits and returns
// (maxDist+1, false).
func Distance(gts1, gts2 []int, maxDist int) (int, bool) {
	counter1 := 0 // different genotype
	counter2 := 0 // same genotype after inversion
	for i := range gts1 {
		if gts1[i] != gts2[i] {
			counter1++
		}
		if gts1[i]+gts2[i] != 1 {
			counter2++
		}
		if counter1 > maxDist && counter2 > maxDist {
			return maxDist + 1, false
		}
	}
	d := counter1
	if counter2 < d {
		d = counter2
	}
	return d, counter1 > maxDist
}
