// Package main provides the CLI entrypoint for funcmap-generator.
//
// funcmap scans Go packages for annotated generic types and emits a
// total and a fallible map function for each:
//
//	funcmap -dir ./types
//	funcmap -dir ./... -registry containers.yaml
//
// Intended to run under go:generate.
package main

import (
	"flag"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"

	"funcmap-generator/internal/analyze"
	"funcmap-generator/internal/diagnostic"
	"funcmap-generator/internal/gen"
	"funcmap-generator/internal/shape"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("funcmap: ")

	var (
		dir      = flag.String("dir", ".", "package directory or pattern to scan")
		only     = flag.String("type", "", "comma-separated type names to restrict generation to")
		registry = flag.String("registry", "", "YAML file with extra container entries")
		output   = flag.String("output", "", "output directory (default: next to the scanned package)")
		dump     = flag.Bool("dump", false, "dump analyzed subjects instead of generating")
		verbose  = flag.Bool("v", false, "print per-file progress and info diagnostics")
	)

	flag.Parse()

	if err := run(*dir, *only, *registry, *output, *dump, *verbose); err != nil {
		log.Fatal(err)
	}
}

func run(pattern, only, registryPath, output string, dump, verbose bool) error {
	reg := shape.NewRegistry()

	if registryPath != "" {
		if err := reg.LoadFile(registryPath); err != nil {
			return err
		}
	}

	pkgs, err := analyze.Load(pattern)
	if err != nil {
		return err
	}

	total := 0
	runDiags := &diagnostic.Diagnostics{}

	for _, pkg := range pkgs {
		diags := &diagnostic.Diagnostics{}
		subjects := filterSubjects(analyze.Subjects(pkg, diags), only)

		if dump {
			spew.Dump(subjects)
			report(diags, verbose)
			runDiags.Merge(*diags)

			continue
		}

		if len(subjects) == 0 {
			report(diags, verbose)
			runDiags.Merge(*diags)

			if diags.HasErrors() {
				return fmt.Errorf("package %s: %w", pkg.Name, diags.Error())
			}

			continue
		}

		outDir := output
		if outDir == "" {
			outDir = pkg.Dir
		}

		g := gen.NewGenerator(gen.Config{Registry: reg, OutputDir: outDir})

		files, err := g.Generate(pkg, subjects, diags)
		if err != nil {
			return err
		}

		report(diags, verbose)
		runDiags.Merge(*diags)

		if diags.HasErrors() {
			return fmt.Errorf("package %s: %w", pkg.Name, diags.Error())
		}

		if err := gen.WriteFiles(files, outDir); err != nil {
			return err
		}

		for _, f := range files {
			total++

			if verbose {
				log.Printf("wrote %s", filepath.Join(outDir, f.Filename))
			}
		}
	}

	if verbose {
		log.Printf("generated %d file(s), %d warning(s)", total, len(runDiags.Warnings))
	}

	return nil
}

// filterSubjects restricts generation to the named subjects. An empty
// filter keeps everything.
func filterSubjects(subjects []analyze.Subject, only string) []analyze.Subject {
	if only == "" {
		return subjects
	}

	wanted := make(map[string]bool)
	for _, name := range strings.Split(only, ",") {
		if name = strings.TrimSpace(name); name != "" {
			wanted[name] = true
		}
	}

	var out []analyze.Subject

	for _, s := range subjects {
		if wanted[s.Def.Name] {
			out = append(out, s)
		}
	}

	return out
}

// report prints warnings (and, when verbose, infos) to the log.
// Errors are rendered by the caller through the returned error.
func report(diags *diagnostic.Diagnostics, verbose bool) {
	for _, w := range diags.Warnings {
		log.Printf("warning: %s", w.String())
	}

	if verbose {
		for _, i := range diags.Infos {
			log.Printf("info: %s", i.String())
		}
	}
}
