// Graphite phases and imputes genotypes in a variant-call table, using a
// pedigree of nuclear families and a genetic map. Families in which one
// parent is heterozygous and the other homozygous drive the haplotype
// reconstruction; small families and isolated samples are left to downstream
// stages.
package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/maltegrosse/Graphite/compileinfo"
	"github.com/maltegrosse/Graphite/impute"
	"github.com/maltegrosse/Graphite/segregation"
)

const (
	exitUsage    = 1
	exitInput    = 2
	exitInternal = 3
)

// config mirrors the command-line options for TOML config files. Flags given
// explicitly on the command line win over config-file values.
type config struct {
	VCF               string   `toml:"vcf"`
	Ped               string   `toml:"ped"`
	Map               string   `toml:"map"`
	Out               string   `toml:"out"`
	LowerProgs        int      `toml:"lower_progs"`
	Families          []string `toml:"families"`
	Threads           int      `toml:"threads"`
	OnlyLargeFamilies bool     `toml:"only_large_families"`
	Chroms            []string `toml:"chroms"`
	Significance      float64  `toml:"significance"`
	KeepBiased        bool     `toml:"keep_biased"`
}

func main() {
	compileinfo.PrintToStdErr()

	var (
		configPath   string
		familiesCSV  string
		chromsCSV    string
		significance float64
	)
	var opts impute.Options

	flag.StringVar(&opts.VCFPath, "vcf", "", "Input variant table (VCF, plain or gzipped). Required.")
	flag.StringVar(&opts.PedPath, "ped", "", "Pedigree file: sample, maternal sample, paternal sample per row. Required.")
	flag.StringVar(&opts.MapPath, "map", "", "Genetic map file of (chrom, bp, cM) rows. Empty means 1Mbp=1cM.")
	flag.StringVar(&opts.OutPath, "out", "", "Output variant table. Required.")
	flag.IntVar(&opts.LowerProgs, "lower-progs", 10, "Families with fewer progeny than this are not treated as large.")
	flag.StringVar(&familiesCSV, "families", "", "Comma-separated parent samples; restricts the run to their families.")
	flag.IntVar(&opts.Threads, "threads", 1, "Number of chromosomes to impute concurrently.")
	flag.BoolVar(&opts.OnlyLargeFamilies, "only-large-families", false, "Skip the small-family and isolated-sample stages.")
	flag.StringVar(&chromsCSV, "chroms", "", "Comma-separated chromosomes; restricts processing to them.")
	flag.Float64Var(&significance, "significance", segregation.DefaultSignificance, "Significance level for the segregation bias filter.")
	flag.BoolVar(&opts.KeepBiased, "keep-biased", false, "Keep variants that fail the segregation bias filter.")
	flag.StringVar(&configPath, "config", "", "TOML config file; command-line flags override it.")
	flag.Parse()

	if flag.NArg() > 0 {
		log.Printf("unexpected arguments: %s\n", strings.Join(flag.Args(), " "))
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}

	opts.Families = splitCSV(familiesCSV)
	opts.Chroms = splitCSV(chromsCSV)

	if configPath != "" {
		if err := applyConfig(configPath, &opts, &significance); err != nil {
			log.Println(err)
			os.Exit(exitInput)
		}
	}

	if opts.VCFPath == "" || opts.PedPath == "" || opts.OutPath == "" {
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}
	if opts.LowerProgs < 1 || opts.Threads < 1 || significance <= 0 || significance >= 1 {
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}

	segregation.SetSignificance(significance)

	log.Println("input VCF :", opts.VCFPath)
	log.Println("pedigree :", opts.PedPath)
	log.Println("output VCF :", opts.OutPath)

	if err := impute.Run(opts); err != nil {
		log.Println(err)
		if impute.IsInternal(err) {
			os.Exit(exitInternal)
		}
		os.Exit(exitInput)
	}
}

// applyConfig fills in every option the user did not set explicitly on the
// command line from the TOML config file.
func applyConfig(path string, opts *impute.Options, significance *float64) error {
	var cfg config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return err
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["vcf"] && cfg.VCF != "" {
		opts.VCFPath = cfg.VCF
	}
	if !set["ped"] && cfg.Ped != "" {
		opts.PedPath = cfg.Ped
	}
	if !set["map"] && cfg.Map != "" {
		opts.MapPath = cfg.Map
	}
	if !set["out"] && cfg.Out != "" {
		opts.OutPath = cfg.Out
	}
	if !set["lower-progs"] && cfg.LowerProgs > 0 {
		opts.LowerProgs = cfg.LowerProgs
	}
	if !set["families"] && len(cfg.Families) > 0 {
		opts.Families = cfg.Families
	}
	if !set["threads"] && cfg.Threads > 0 {
		opts.Threads = cfg.Threads
	}
	if !set["only-large-families"] && cfg.OnlyLargeFamilies {
		opts.OnlyLargeFamilies = true
	}
	if !set["chroms"] && len(cfg.Chroms) > 0 {
		opts.Chroms = cfg.Chroms
	}
	if !set["significance"] && cfg.Significance > 0 {
		*significance = cfg.Significance
	}
	if !set["keep-biased"] && cfg.KeepBiased {
		opts.KeepBiased = true
	}
	return nil
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
