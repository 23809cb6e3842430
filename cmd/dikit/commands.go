package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/sectrean/di-registry"
	"github.com/sectrean/di-registry/dihttp"
	"github.com/sectrean/di-registry/internal/errors"
	"github.com/sectrean/di-registry/internal/manifest"
)

type CandidatesCmd struct {
	Type        string `arg:"" help:"Requested type, for example 'IHandler[OrderCreated]'."`
	VariantOnly bool   `help:"Only print variant matches."`
}

func (c *CandidatesCmd) Run(g *Globals) error {
	r, err := g.load()
	if err != nil {
		return err
	}

	t, err := r.Universe.Parse(c.Type)
	if err != nil {
		return err
	}

	p := g.printer()
	for _, e := range r.Store.Candidates(t) {
		if c.VariantOnly && !e.IsVariantMatch {
			continue
		}

		if e.IsVariantMatch {
			p.line("%s %s", e.Descriptor, p.paint(ansiDim, "(variant)"))
		} else {
			p.line("%s", e.Descriptor)
		}
	}
	return nil
}

type FetchCmd struct {
	Type string `arg:"" help:"Requested type, for example 'IHandler[OrderCreated]'."`
	All  bool   `help:"Print every producer instead of the first." short:"a"`
}

func (c *FetchCmd) Run(g *Globals) error {
	r, err := g.load()
	if err != nil {
		return err
	}

	t, err := r.Universe.Parse(c.Type)
	if err != nil {
		return err
	}

	var producers []di.Producer
	if c.All {
		producers = r.Store.FetchAll(t)
	} else if p, ok := r.Store.Fetch(t); ok {
		producers = append(producers, p)
	}

	if len(producers) == 0 {
		return errors.Wrapf(di.ErrNotFound, "fetch %s", t)
	}

	p := g.printer()
	for _, prod := range producers {
		name := manifest.ProducerName(prod)
		if prod.UseFallback() {
			name += " " + p.paint(ansiDim, "(fallback)")
		}
		p.line("%s\t%s", name, prod.DeclaredType())
	}
	return nil
}

type CheckCmd struct{}

func (c *CheckCmd) Run(g *Globals) error {
	r, err := g.load()
	if err != nil {
		return err
	}

	results := r.Check()

	p := g.printer()
	failed := 0
	for _, res := range results {
		if res.OK() {
			p.ok("%s", res.Check.Fetch)
			continue
		}

		failed++
		p.fail("%v", res.Err)
	}

	if failed > 0 {
		return errors.Errorf("%d of %d checks failed", failed, len(results))
	}

	p.ok("%d checks passed", len(results))
	return nil
}

type ServeCmd struct {
	Addr string `help:"Address to listen on." default:":8080"`
}

func (c *ServeCmd) Run(g *Globals) error {
	r, err := g.load()
	if err != nil {
		return err
	}

	logger := g.logger()
	h, err := dihttp.NewDiagnosticsHandler(r.Store, r.Universe,
		dihttp.WithDiagnosticsLogger(logger),
	)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              c.Addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving diagnostics", "addr", c.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err = <-errCh:
		return errors.Wrap(err, "serve")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	version := "(devel)"
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		version = info.Main.Version
	}

	fmt.Fprintln(g.stdout(), version)
	return nil
}
