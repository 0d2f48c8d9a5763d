package genmap

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestBpToCMInterpolation(t *testing.T) {
	c := &ChromMap{Chrom: "1", Points: []Point{
		{Chrom: "1", Bp: 1000000, CM: 1},
		{Chrom: "1", Bp: 3000000, CM: 5},
	}}
	for _, v := range []struct {
		bp   int
		want float64
	}{
		{1000000, 1},
		{2000000, 3},
		{3000000, 5},
		// Extrapolation from the outermost segment.
		{4000000, 7},
		{500000, 0},
	} {
		if got := c.BpToCM(v.bp); math.Abs(got-v.want) > 1e-9 {
			t.Fatalf("BpToCM(%d) = %f, want %f", v.bp, got, v.want)
		}
	}
}

func TestDefaultMap(t *testing.T) {
	c := &ChromMap{Chrom: "1"}
	if got := c.BpToCM(2500000); math.Abs(got-2.5) > 1e-9 {
		t.Fatalf("default BpToCM(2500000) = %f, want 2.5", got)
	}

	m, err := Read("")
	if err != nil {
		t.Fatal(err)
	}
	if !m.Empty() {
		t.Fatal("map from empty path is not empty")
	}
	if got := m.Chrom("7").BpToCM(1000000); math.Abs(got-1) > 1e-9 {
		t.Fatalf("empty map BpToCM(1e6) = %f, want 1", got)
	}
}

func TestReadAndDivide(t *testing.T) {
	path := filepath.Join(t.TempDir(), "genetic.map")
	content := "1\t1000000\t1.0\n1\t2000000\t2.5\n2\t1000000\t0.9\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	chroms := m.DivideIntoChromosomes()
	if len(chroms) != 2 {
		t.Fatalf("%d chromosomes, want 2", len(chroms))
	}
	if chroms[0].Chrom != "1" || chroms[1].Chrom != "2" {
		t.Fatalf("chromosome order %s, %s", chroms[0].Chrom, chroms[1].Chrom)
	}
	if got := m.TotalCM(); math.Abs(got-3.4) > 1e-9 {
		t.Fatalf("TotalCM = %f, want 3.4", got)
	}
}

func TestReadRejectsNonMonotone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.map")
	content := "1\t2000000\t2.0\n1\t1000000\t1.0\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Read(path); err == nil {
		t.Fatal("non-monotone map accepted")
	}
}

func TestNewRejectsInterleavedChromosomes(t *testing.T) {
	_, err := New([]Point{
		{Chrom: "1", Bp: 1, CM: 0},
		{Chrom: "2", Bp: 1, CM: 0},
		{Chrom: "1", Bp: 2, CM: 1},
	})
	if err == nil {
		t.Fatal("interleaved chromosomes accepted")
	}
}
