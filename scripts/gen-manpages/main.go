// Command gen-manpages writes one troff page per shellprobe command for
// release archives.
//
//	go run ./scripts/gen-manpages [output-dir]   # default man/man1
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra/doc"

	"github.com/AbdelazizMoustafa10m/shellprobe/internal/cli"
)

func main() {
	outDir := filepath.Join("man", "man1")
	if len(os.Args) > 1 {
		outDir = os.Args[1]
	}
	n, err := run(outDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gen-manpages:", err)
		os.Exit(1)
	}
	fmt.Printf("%d man page(s) written to %s\n", n, outDir)
}

func run(outDir string) (int, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return 0, err
	}
	header := &doc.GenManHeader{Title: "SHELLPROBE", Section: "1", Source: "shellprobe", Manual: "shellprobe Manual"}
	if err := doc.GenManTree(cli.NewRootCmd(), header, outDir); err != nil {
		return 0, fmt.Errorf("rendering pages: %w", err)
	}
	pages, err := filepath.Glob(filepath.Join(outDir, "*.1"))
	return len(pages), err
}
