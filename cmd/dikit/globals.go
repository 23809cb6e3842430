package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/internal/manifest"
)

// Globals holds the flags shared by every command.
type Globals struct {
	Manifest string `help:"Manifest file." short:"m" env:"DIKIT_MANIFEST" type:"existingfile"`
	Verbose  bool   `help:"Log store activity to stderr." short:"v"`
	Color    string `help:"Colorize output (${enum})." enum:"auto,always,never" default:"auto"`

	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

func (g *Globals) stderr() io.Writer {
	if g.Stderr != nil {
		return g.Stderr
	}
	return os.Stderr
}

func (g *Globals) logger() *slog.Logger {
	level := slog.LevelInfo
	if g.Verbose {
		level = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(g.stderr(), &slog.HandlerOptions{Level: level}))
}

// load reads and builds the manifest.
func (g *Globals) load() (*manifest.Registry, error) {
	if g.Manifest == "" {
		return nil, errors.New("no manifest: set --manifest or DIKIT_MANIFEST")
	}

	m, err := manifest.LoadFile(g.Manifest)
	if err != nil {
		return nil, err
	}

	return m.Build(di.WithLogger(g.logger()))
}

func (g *Globals) colorize() bool {
	switch g.Color {
	case "always":
		return true
	case "never":
		return false
	}

	f, ok := g.stdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiDim   = "\x1b[2m"
)

type printer struct {
	w     io.Writer
	color bool
}

func (g *Globals) printer() *printer {
	return &printer{w: g.stdout(), color: g.colorize()}
}

func (p *printer) paint(code, s string) string {
	if !p.color {
		return s
	}
	return code + s + ansiReset
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *printer) ok(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiGreen, "✓"), fmt.Sprintf(format, args...))
}

func (p *printer) fail(format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", p.paint(ansiRed, "✗"), fmt.Sprintf(format, args...))
}
