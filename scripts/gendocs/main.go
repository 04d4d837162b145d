// Package main provides a generator that extracts CLI, configuration and
// lint metadata from leapuast and writes markdown documentation.
//
// Usage:
//
//	go run ./scripts/gendocs -gen=cli -outdir=docs/cli
//	go run ./scripts/gendocs -gen=config -outdir=docs/concepts
//	go run ./scripts/gendocs -gen=lint -outdir=docs/linting
//	go run ./scripts/gendocs -gen=all
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
)

var (
	genFlag    = flag.String("gen", "all", "what to generate: cli, config, lint, all")
	outDirFlag = flag.String("outdir", "", "output directory (defaults based on gen type)")
)

// generators maps a -gen value to its generator and default output directory.
var generators = map[string]struct {
	dir string
	run func(outDir string) error
}{
	"cli":    {filepath.Join("docs", "cli"), generateCLIDocs},
	"config": {filepath.Join("docs", "concepts"), generateConfigDocs},
	"lint":   {filepath.Join("docs", "linting"), generateLintDocs},
}

func main() {
	flag.Parse()

	if _, ok := generators[*genFlag]; !ok && *genFlag != "all" {
		log.Fatalf("unknown -gen value: %s (use: cli, config, lint, all)", *genFlag)
	}

	projectRoot, err := findProjectRoot()
	if err != nil {
		log.Fatalf("failed to find project root: %v", err)
	}
	log.Printf("Project root: %s", projectRoot)

	if err := generate(projectRoot, *genFlag, *outDirFlag); err != nil {
		log.Fatal(err)
	}
	log.Println("Done!")
}

// generate runs the generator named gen, or all of them. outDir overrides
// the default directory of a single generator.
func generate(projectRoot, gen, outDir string) error {
	names := []string{gen}
	if gen == "all" {
		names = []string{"cli", "config", "lint"}
		outDir = ""
	}
	for _, name := range names {
		g := generators[name]
		dir := outDir
		if dir == "" {
			dir = filepath.Join(projectRoot, g.dir)
		}
		if err := g.run(dir); err != nil {
			return err
		}
	}
	return nil
}

// findProjectRoot walks up from current directory to find go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}
