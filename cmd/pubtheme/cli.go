package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/labstack/gommon/log"

	"github.com/eringen/pubtheme"
	"github.com/eringen/pubtheme/links"
)

// Dependencies holds the I/O and shared services commands run with.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *log.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve    ServeCmd    `cmd:"" help:"Run the themed site"`
	Rewrite  RewriteCmd  `cmd:"" help:"Rewrite link targets of an HTML fragment read from stdin"`
	Classify ClassifyCmd `cmd:"" help:"Classify URLs as internal or external"`
	Audit    AuditCmd    `cmd:"" help:"Report how each link of an HTML page would open"`
	Version  VersionCmd  `cmd:"" help:"Print the pubtheme version"`
}

// LinkFlags configure the link classifier.
type LinkFlags struct {
	Host            string `required:"" env:"PUBTHEME_PUBLICATION_HOST" help:"Publication host, e.g. blog.hashnode.dev"`
	Domain          string `env:"PUBTHEME_CUSTOM_DOMAIN" help:"Custom domain whose subdomains are internal"`
	ForeignExternal bool   `name:"foreign-external" help:"Treat mailto:, tel: and similar schemes as external"`
}

func (f LinkFlags) classifier() *links.Classifier {
	var opts []links.ClassifierOption
	if f.ForeignExternal {
		opts = append(opts, links.WithForeignSchemesExternal())
	}
	return links.NewClassifier(f.Host, f.Domain, opts...)
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Config string `short:"c" type:"path" env:"PUBTHEME_CONFIG" help:"YAML config file"`
	Static string `default:"public" help:"Static asset directory served under /public"`
	Debug  bool   `help:"Log every request"`
}

// Run starts the server and shuts it down when ctx is done.
func (cmd *ServeCmd) Run(deps *Dependencies) error {
	cfg, err := pubtheme.LoadConfig(cmd.Config)
	if err != nil {
		return err
	}
	app := pubtheme.New(cfg, pubtheme.WithStaticDir(cmd.Static))
	defer app.Close()

	app.Echo.HideBanner = true
	if cmd.Debug {
		app.Echo.Logger.SetLevel(log.DEBUG)
	} else {
		app.Echo.Logger.SetLevel(log.INFO)
	}

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()
	deps.Logger.Infof("serving %s on %s", cfg.PublicationHost, cfg.Addr)

	select {
	case err := <-errc:
		return err
	case <-deps.Ctx.Done():
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// RewriteCmd is the "rewrite" subcommand.
type RewriteCmd struct {
	LinkFlags `embed:""`
	Strategy  string `default:"tree" enum:"tree,pattern" help:"Rewrite strategy (tree, pattern)"`
}

// Run rewrites stdin to stdout.
func (cmd *RewriteCmd) Run(deps *Dependencies) error {
	in, err := io.ReadAll(deps.Stdin)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	c := cmd.classifier()
	var rw links.Rewriter = links.NewPatternRewriter(c)
	if cmd.Strategy == "tree" {
		rw = links.NewRewriter(c, links.HTMLParser{})
	}
	_, err = io.WriteString(deps.Stdout, rw.Rewrite(string(in)))
	return err
}

// ClassifyCmd is the "classify" subcommand.
type ClassifyCmd struct {
	LinkFlags `embed:""`
	URLs      []string `arg:"" name:"url" help:"URLs to classify"`
}

// Run prints one line per URL: classification, target, rel and the URL.
func (cmd *ClassifyCmd) Run(deps *Dependencies) error {
	c := cmd.classifier()
	for _, u := range cmd.URLs {
		attrs := c.Attributes(u)
		fmt.Fprintf(deps.Stdout, "%s\t%s\t%s\t%s\n", c.Classify(u), dash(attrs.Target), dash(attrs.Rel), u)
	}
	return nil
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	LinkFlags `embed:""`
	File      string `arg:"" optional:"" default:"-" help:"HTML file to audit, - for stdin"`
	Write     bool   `short:"w" help:"Print the swept document instead of the report"`
}

// Link outcomes reported by audit.
const (
	outcomeClient  = "client"  // handled by the site router
	outcomeNative  = "native"  // target=_blank already present
	outcomeOpened  = "opened"  // intercepted and opened in a new context
	outcomeSameTab = "same-tab"
)

// Run clicks every anchor with the interceptor attached, then sweeps the
// document and reports what happened.
func (cmd *AuditCmd) Run(deps *Dependencies) error {
	r := deps.Stdin
	if cmd.File != "-" {
		f, err := os.Open(cmd.File)
		if err != nil {
			return fmt.Errorf("open %s: %w", cmd.File, err)
		}
		defer f.Close()
		r = f
	}
	doc, err := links.NewDocument(r)
	if err != nil {
		return fmt.Errorf("parse %s: %w", cmd.File, err)
	}

	c := cmd.classifier()
	var opened []string
	release := links.NewInterceptor(c, links.OpenerFunc(func(u, _ string) {
		opened = append(opened, u)
	})).Attach(doc)
	defer release()

	type row struct{ href, class, outcome string }
	var rows []row
	anchors := doc.Find("a[href]")
	for i := range anchors.Length() {
		a := anchors.Eq(i)
		href, _ := a.Attr("href")
		before := len(opened)
		ev := doc.Click(a)
		_, routed := a.Attr(links.ClientLinkAttr)
		outcome := outcomeSameTab
		switch {
		case routed:
			outcome = outcomeClient
		case a.AttrOr("target", "") == links.TargetBlank:
			outcome = outcomeNative
		case ev.DefaultPrevented() && len(opened) > before:
			outcome = outcomeOpened
		}
		rows = append(rows, row{href: href, class: c.Classify(href).String(), outcome: outcome})
	}
	swept := links.Sweep(doc, c)

	if cmd.Write {
		out, err := doc.HTML()
		if err != nil {
			return err
		}
		_, err = io.WriteString(deps.Stdout, out)
		return err
	}
	for _, ln := range rows {
		fmt.Fprintf(deps.Stdout, "%-8s\t%-8s\t%s\n", ln.class, ln.outcome, ln.href)
	}
	fmt.Fprintf(deps.Stdout, "%d links, %d opened in a new context, %d swept\n", len(rows), len(opened), swept)
	return nil
}

// VersionCmd is the "version" subcommand.
type VersionCmd struct{}

// Run prints the version.
func (VersionCmd) Run(deps *Dependencies) error {
	fmt.Fprintf(deps.Stdout, "pubtheme %s\n", strings.TrimSpace(version))
	return nil
}
