package impute

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/carbocation/pfx"

	"github.com/maltegrosse/Graphite/genmap"
	"github.com/maltegrosse/Graphite/pedigree"
	"github.com/maltegrosse/Graphite/vcf"
)

// Options configures a whole imputation run.
type Options struct {
	VCFPath string
	PedPath string
	MapPath string
	OutPath string

	// LowerProgs is the minimum progeny count for a family to be treated as
	// large, i.e. eligible for the hetero-homo engine.
	LowerProgs int
	// Families, when non-empty, restricts the run to families whose parents
	// are named in it.
	Families []string
	// Threads bounds how many chromosomes are imputed concurrently.
	Threads int
	// OnlyLargeFamilies skips the small-family and isolated-sample stages.
	// Those stages are delegated to downstream tooling either way; the flag
	// exists so pipelines can state the intent explicitly.
	OnlyLargeFamilies bool
	// Chroms, when non-empty, restricts processing to the named chromosomes.
	Chroms []string
	// KeepBiased disables the bias-based validity post-filter.
	KeepBiased bool
}

// Run streams the input table chromosome by chromosome, imputes each
// chromosome's large families on a worker pool, and writes the phased records
// in input order. Within a chromosome all work is sequential, so record order
// is deterministic; across chromosomes a reorder buffer restores input order
// regardless of task completion order.
func Run(opts Options) error {
	rdr, closer, err := vcf.Open(opts.VCFPath)
	if err != nil {
		return err
	}
	defer closer.Close()
	header := rdr.Header()

	ped, err := pedigree.Load(opts.PedPath, header.Samples)
	if err != nil {
		return err
	}
	families := ped.Families(opts.Families)
	pedigree.DisplayInfo(families, opts.LowerProgs)

	var large []*pedigree.Family
	for _, fam := range families {
		if fam.NumProgeny() >= opts.LowerProgs {
			large = append(large, fam)
		}
	}
	if !opts.OnlyLargeFamilies {
		log.Println("small-family and isolated-sample imputation is delegated to downstream tooling")
	}

	gm, err := genmap.Read(opts.MapPath)
	if err != nil {
		return err
	}
	displayMapInfo(gm, opts.MapPath)

	out, err := os.Create(opts.OutPath)
	if err != nil {
		return pfx.Err(err)
	}
	defer out.Close()
	w := vcf.NewWriter(out)
	if err := w.WriteHeader(header); err != nil {
		return err
	}

	wanted := map[string]bool{}
	for _, c := range opts.Chroms {
		wanted[c] = true
	}

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	type result struct {
		idx   int
		table *vcf.Table
		err   error
	}
	sem := make(chan struct{}, threads)
	results := make(chan result, threads)
	writerDone := make(chan error, 1)

	// Reorder buffer: tables finish in any order but are written in
	// submission order.
	go func() {
		next := 0
		pending := map[int]*vcf.Table{}
		var firstErr error
		for r := range results {
			if r.err != nil && firstErr == nil {
				firstErr = r.err
			}
			pending[r.idx] = r.table
			for {
				t, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)
				next++
				if firstErr != nil || t == nil {
					continue
				}
				for _, rec := range t.Records {
					if err := w.WriteRecord(rec); err != nil && firstErr == nil {
						firstErr = err
					}
				}
			}
		}
		if firstErr == nil {
			firstErr = w.Flush()
		}
		writerDone <- firstErr
	}()

	divisor := vcf.NewChromDivisor(rdr)
	var wg sync.WaitGroup
	var readErr error
	idx := 0
	for {
		table, err := divisor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			readErr = err
			break
		}
		if len(wanted) > 0 && !wanted[table.Chrom()] {
			continue
		}

		sem <- struct{}{}
		wg.Add(1)
		go func(i int, t *vcf.Table) {
			defer wg.Done()
			err := processChrom(t, large, gm, opts)
			results <- result{idx: i, table: t, err: err}
			<-sem
		}(idx, table)
		idx++
	}

	wg.Wait()
	close(results)
	writeErr := <-writerDone

	if readErr != nil {
		return readErr
	}
	return writeErr
}

// processChrom imputes one chromosome's large families in place. It runs
// single-threaded so that bucket construction and genotype write-back follow
// stream order.
func processChrom(table *vcf.Table, families []*pedigree.Family, gm *genmap.Map, opts Options) error {
	if table.Size() == 1 {
		log.Printf("chr %s : 1 record\n", table.Chrom())
	} else {
		log.Printf("chr %s : %d records\n", table.Chrom(), table.Size())
	}

	buckets, keys := Collect(table, families, gm, !opts.KeepBiased)
	for _, key := range keys {
		hh := buckets[key]
		for _, chrHH := range hh.DivideByChromosomes() {
			if chrHH.Size() == 0 {
				continue
			}
			gts := chrHH.Impute()
			if len(gts) != chrHH.Size() {
				return internalErr("engine returned %d genotype rows for %d records", len(gts), chrHH.Size())
			}
			chrHH.UpdateGenotypes(gts)
			chrHH.Apply(table)
		}
	}
	return nil
}

func displayMapInfo(gm *genmap.Map, path string) {
	if gm.Empty() {
		log.Println("genetic map : default map(1Mbp=1cM)")
		return
	}
	log.Printf("genetic map : %s\n", path)
	log.Printf("%d chromosomes %.1f cM\n", gm.NumChroms(), gm.TotalCM())
}

// Internal invariant violations surface as errors rather than panics so the
// CLI can map them to its own exit code.
func internalErr(format string, args ...interface{}) error {
	return pfx.Err(fmt.Errorf("internal: "+format, args...))
}

// IsInternal reports whether err is an invariant violation rather than a
// problem with the input files.
func IsInternal(err error) bool {
	return err != nil && strings.Contains(err.Error(), "internal: ")
}
