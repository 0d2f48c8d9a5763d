package pedigree

import (
	"os"
	"path/filepath"
	"testing"
)

func writePed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ped")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

var genotyped = []string{"mat", "pat", "c1", "c2", "c3", "mat2", "c4"}

func TestLoadAndFamilies(t *testing.T) {
	path := writePed(t, `mat 0 0
pat 0 0
c1 mat pat
c2 mat pat extra column
c3 mat pat
mat2 0 0
c4 mat2 pat
`)
	tbl, err := Load(path, genotyped)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Size() != 7 {
		t.Fatalf("Size = %d, want 7", tbl.Size())
	}

	mat, pat, ok := tbl.Parents("c1")
	if !ok || mat != "mat" || pat != "pat" {
		t.Fatalf("Parents(c1) = %s, %s, %v", mat, pat, ok)
	}

	fams := tbl.Families(nil)
	if len(fams) != 2 {
		t.Fatalf("%d families, want 2", len(fams))
	}
	if fams[0].Mat != "mat" || fams[0].Pat != "pat" || fams[0].NumProgeny() != 3 {
		t.Fatalf("first family = %+v", fams[0])
	}
	if fams[1].Mat != "mat2" || fams[1].NumProgeny() != 1 {
		t.Fatalf("second family = %+v", fams[1])
	}

	restricted := tbl.Families([]string{"mat2"})
	if len(restricted) != 1 || restricted[0].Mat != "mat2" {
		t.Fatalf("restricted families = %+v", restricted)
	}
}

func TestLoadDropsUnknownSamples(t *testing.T) {
	path := writePed(t, `mat 0 0
pat 0 0
c1 mat pat
ghost mat pat
`)
	tbl, err := Load(path, genotyped)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Size() != 3 {
		t.Fatalf("Size = %d, want 3 (ghost dropped)", tbl.Size())
	}
	if _, _, ok := tbl.Parents("ghost"); ok {
		t.Fatal("ghost retained")
	}
}

func TestLoadRejectsDuplicates(t *testing.T) {
	path := writePed(t, `c1 0 0
c1 mat pat
`)
	if _, err := Load(path, genotyped); err == nil {
		t.Fatal("duplicate sample accepted")
	}
}

func TestLoadRejectsCycles(t *testing.T) {
	path := writePed(t, `mat c1 0
c1 mat pat
pat 0 0
`)
	if _, err := Load(path, genotyped); err == nil {
		t.Fatal("pedigree cycle accepted")
	}
}

func TestMissingParentForms(t *testing.T) {
	path := writePed(t, "c1\t\t0\n")
	tbl, err := Load(path, genotyped)
	if err != nil {
		t.Fatal(err)
	}
	if tbl.Size() != 1 {
		t.Fatalf("Size = %d, want 1", tbl.Size())
	}
	mat, pat, _ := tbl.Parents("c1")
	if mat != NoParent || pat != NoParent {
		t.Fatalf("Parents(c1) = %q, %q, want both missing", mat, pat)
	}
}
