// Command typestate generates type-state builders for record schemas.
//
//	typestate [flags] paths...
//
// Paths are YAML or JSON schema files, directories, or Go package
// patterns. Without paths, the schema paths of the project file
// (typestate.yml in the working directory, or -config) are used.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/syssam/typestate/compiler"
	"github.com/syssam/typestate/compiler/gen"
	"github.com/syssam/typestate/compiler/load"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			report(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// report prints err. Schema errors are printed one per line, each with
// the position of its record.
func report(w io.Writer, err error) {
	errs := gen.SchemaErrors(err)
	if len(errs) == 0 {
		fmt.Fprintln(w, "typestate:", err)
		return
	}
	for _, e := range errs {
		fmt.Fprintln(w, e)
	}
}

type options struct {
	config   string
	target   string
	pkg      string
	name     string
	features string
	tags     string
	workers  int
	watch    bool
	verbose  bool
	dump     bool
	paths    []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("typestate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.config, "config", "", "project file (default "+gen.DefaultConfigFile+" if present)")
	fs.StringVar(&opts.target, "target", "", "output directory (default .)")
	fs.StringVar(&opts.pkg, "package", "", "import path of the output package")
	fs.StringVar(&opts.name, "name", "", "name of the output package")
	fs.StringVar(&opts.features, "features", "", "comma separated features to enable")
	fs.StringVar(&opts.tags, "tags", "", "comma separated build tags used to load Go packages")
	fs.IntVar(&opts.workers, "workers", 0, "number of files generated in parallel")
	fs.BoolVar(&opts.watch, "watch", false, "regenerate when a schema changes")
	fs.BoolVar(&opts.verbose, "v", false, "log every generated file")
	fs.BoolVar(&opts.dump, "dump", false, "print the loaded schema as JSON instead of generating")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: typestate [flags] paths...\n\nflags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nfeatures:\n")
		for _, f := range gen.AllFeatures {
			fmt.Fprintf(fs.Output(), "  %-16s %s (%s)\n", f.Name, f.Description, f.Stage)
		}
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	opts.paths = fs.Args()
	return opts, nil
}

// project resolves the schema paths and generation options. Flags
// override the project file.
func (o *options) project() (paths []string, genOpts []gen.Option, err error) {
	config := o.config
	if config == "" {
		if _, err := os.Stat(gen.DefaultConfigFile); err == nil {
			config = gen.DefaultConfigFile
		}
	}
	target := "."
	if config != "" {
		fc, err := gen.LoadConfigFile(config)
		if err != nil {
			return nil, nil, err
		}
		paths = fc.SchemaPaths()
		genOpts = fc.Options()
		if fc.Target != "" {
			target = ""
		}
	}
	if len(o.paths) > 0 {
		paths = o.paths
	}
	if len(paths) == 0 {
		return nil, nil, errors.New("no schema paths given")
	}
	if o.target != "" {
		target = o.target
	}
	if target != "" {
		genOpts = append(genOpts, gen.WithTarget(target))
	}
	if o.pkg != "" {
		genOpts = append(genOpts, gen.WithPackage(o.pkg))
	}
	if o.name != "" {
		genOpts = append(genOpts, gen.WithPackageName(o.name))
	}
	if o.features != "" {
		genOpts = append(genOpts, gen.WithFeatureNames(o.features))
	}
	if o.workers != 0 {
		genOpts = append(genOpts, gen.WithWorkers(o.workers))
	}
	return paths, genOpts, nil
}

func (o *options) buildFlags() []string {
	if o.tags == "" {
		return nil
	}
	return []string{"-tags=" + o.tags}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	paths, genOpts, err := opts.project()
	if err != nil {
		return err
	}
	cfg, err := gen.NewConfig(append(genOpts, gen.WithLogger(logger))...)
	if err != nil {
		return err
	}
	loader := &load.Config{Paths: paths, BuildFlags: opts.buildFlags()}
	generate := func(ctx context.Context) error {
		recs, err := loader.Load()
		if err != nil {
			return err
		}
		if opts.dump {
			data, err := load.MarshalRecords(recs...)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, string(data))
			return err
		}
		return compiler.GenerateRecords(ctx, cfg, recs...)
	}
	if !opts.watch {
		return generate(ctx)
	}
	if err := generate(ctx); err != nil {
		logger.Error("typestate: generation failed", slog.String("error", err.Error()))
	}
	w := &watcher{
		paths:  paths,
		target: cfg.Target,
		logger: logger,
		run:    generate,
	}
	logger.Info("typestate: watching for changes", slog.String("paths", strings.Join(w.paths, ",")))
	return w.watch(ctx)
}
