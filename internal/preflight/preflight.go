package preflight

import (
	"fmt"

	"tagres/internal/checksum"
	"tagres/internal/config"
	"tagres/internal/index"
	"tagres/internal/tagging"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes every check that applies to cfg, in display order.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	results = append(results, CheckWritableDir("Output directory", cfg.Paths.OutputDir))
	results = append(results, CheckWritableDir("State directory", cfg.Paths.StateDir))
	for i, res := range cfg.Resources {
		results = append(results, CheckReadableDir(fmt.Sprintf("Resource group %d", i+1), res.Directory))
	}
	results = append(results, CheckTagging(cfg))
	results = append(results, CheckIndexEncoding(cfg.Tagging.IndexEncoding))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// CheckTagging resolves the checksum algorithm and compiles the pattern pair.
func CheckTagging(cfg *config.Config) Result {
	const name = "Tagging"
	alg, err := checksum.Lookup(cfg.Tagging.Checksum)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	if _, err := tagging.New(cfg.Tagging.UntaggedSearchPattern, cfg.Tagging.TaggedReplacementPattern, alg, nil); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s, %s -> %s", alg.Name(),
		cfg.Tagging.UntaggedSearchPattern, cfg.Tagging.TaggedReplacementPattern)}
}

// CheckIndexEncoding verifies the index charset is available.
func CheckIndexEncoding(name string) Result {
	const label = "Index encoding"
	if _, err := index.LookupEncoding(name); err != nil {
		return Result{Name: label, Detail: err.Error()}
	}
	return Result{Name: label, Passed: true, Detail: name}
}
