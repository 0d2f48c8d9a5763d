package vcf

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

const testVCF = `##fileformat=VCFv4.2
##source=unit
#CHROM	POS	ID	REF	ALT	QUAL	FILTER	INFO	FORMAT	mat	pat	prog1
1	100	.	A	T	.	PASS	.	GT	0/1	0/0	0/1
1	200	rs1	G	C	30	PASS	DP=10	GT:DP	0/0:9	0/1:12	./.:3
2	50	.	C	A	.	.	.	GT	1/1	0/1	1/1
`

func TestParseIntGT(t *testing.T) {
	for _, v := range []struct {
		cell string
		want int
	}{
		{"0/0", 0},
		{"0|1", 1},
		{"1/1", 2},
		{"1|2", 3},
		{"./.", MissingGT},
		{".", MissingGT},
		{"0/.", MissingGT},
		{"0/1:12:99", 1},
		{"", MissingGT},
		{"garbage", MissingGT},
	} {
		if got := ParseIntGT(v.cell); got != v.want {
			t.Fatalf("ParseIntGT(%q) = %d, want %d", v.cell, got, v.want)
		}
	}
}

func TestReaderParsesRecords(t *testing.T) {
	rdr, err := NewReader(strings.NewReader(testVCF), "test.vcf")
	if err != nil {
		t.Fatal(err)
	}
	h := rdr.Header()
	if len(h.Samples) != 3 || h.Samples[0] != "mat" || h.Samples[2] != "prog1" {
		t.Fatalf("samples = %v", h.Samples)
	}

	rec, err := rdr.Read()
	if err != nil {
		t.Fatal(err)
	}
	if rec.Chrom != "1" || rec.Pos != 100 || rec.Ref != "A" || rec.Alt != "T" {
		t.Fatalf("record = %+v", rec)
	}
	if got := rec.IntGTs(); got[0] != 1 || got[1] != 0 || got[2] != 1 {
		t.Fatalf("IntGTs = %v", got)
	}

	rec, err = rdr.Read()
	if err != nil {
		t.Fatal(err)
	}
	if rec.IntGT(2) != MissingGT {
		t.Fatalf("IntGT(2) = %d, want missing", rec.IntGT(2))
	}
}

func TestRoundTrip(t *testing.T) {
	rdr, err := NewReader(strings.NewReader(testVCF), "test.vcf")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteHeader(rdr.Header()); err != nil {
		t.Fatal(err)
	}
	for {
		rec, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		if err := w.WriteRecord(rec); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if buf.String() != testVCF {
		t.Fatalf("round trip differs:\n%q\nvs\n%q", buf.String(), testVCF)
	}
}

func TestReaderRejectsOutOfOrderPositions(t *testing.T) {
	bad := strings.Replace(testVCF, "1\t200", "1\t50", 1)
	rdr, err := NewReader(strings.NewReader(bad), "test.vcf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := rdr.Read(); err != nil {
		t.Fatal(err)
	}
	if _, err := rdr.Read(); err == nil {
		t.Fatal("out-of-order position accepted")
	}
}

func TestReaderRejectsColumnMismatch(t *testing.T) {
	bad := testVCF + "2	60	.	C	A	.	.	.	GT	1/1	0/1\n"
	rdr, err := NewReader(strings.NewReader(bad), "test.vcf")
	if err != nil {
		t.Fatal(err)
	}
	var last error
	for i := 0; i < 4; i++ {
		if _, last = rdr.Read(); last != nil {
			break
		}
	}
	if last == nil || last == io.EOF {
		t.Fatalf("short record accepted: %v", last)
	}
}

func TestChromDivisor(t *testing.T) {
	rdr, err := NewReader(strings.NewReader(testVCF), "test.vcf")
	if err != nil {
		t.Fatal(err)
	}
	div := NewChromDivisor(rdr)

	t1, err := div.Next()
	if err != nil {
		t.Fatal(err)
	}
	if t1.Chrom() != "1" || t1.Size() != 2 {
		t.Fatalf("first table: chrom %s, %d records", t1.Chrom(), t1.Size())
	}

	t2, err := div.Next()
	if err != nil {
		t.Fatal(err)
	}
	if t2.Chrom() != "2" || t2.Size() != 1 {
		t.Fatalf("second table: chrom %s, %d records", t2.Chrom(), t2.Size())
	}

	if _, err := div.Next(); err != io.EOF {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestFamilyViewIsPrivate(t *testing.T) {
	rec := &Record{Chrom: "1", Pos: 10, Genotypes: []string{"0/1", "0/0", "1/1"}}
	fam := Project(rec, 0, []string{"mat", "pat", "prog1"}, []int{0, 1, 2})

	fam.SetGT(2, "0|1")
	if rec.Genotypes[2] != "1/1" {
		t.Fatalf("projection write leaked into the record: %v", rec.Genotypes)
	}
	if fam.GT(2) != "0|1" {
		t.Fatalf("projection write lost: %v", fam.GTs())
	}
	if fam.Chrom != rec.Chrom || fam.Pos != rec.Pos {
		t.Fatal("projection does not share variant identity")
	}
}

func TestReplaceGT(t *testing.T) {
	for _, v := range []struct {
		cell, gt, want string
	}{
		{"0/1:12:99", "0|1", "0|1:12:99"},
		{"0/1", "1|0", "1|0"},
	} {
		if got := ReplaceGT(v.cell, v.gt); got != v.want {
			t.Fatalf("ReplaceGT(%q, %q) = %q, want %q", v.cell, v.gt, got, v.want)
		}
	}
}
