package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tetra/internal/diag"
	"tetra/internal/interp"
	"tetra/internal/jit"
	"tetra/internal/jitcache"
	"tetra/internal/lang"
	"tetra/internal/metrics"
	"tetra/internal/parse"
	"tetra/internal/typecheck"
)

// compile reads the source file, runs the front end (parse +
// type-check), and prints any type errors found to stderr.
func compile(path string, noColor bool) (string, lang.Funcs, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("reading %s: %w", path, err)
	}
	source := string(src)

	program, err := parse.Parse(source)
	if err != nil {
		return source, nil, err
	}

	funcs, errs, err := typecheck.Check(program)
	if err != nil {
		return source, nil, err
	}
	if errs.Len() > 0 {
		for _, e := range errs.List() {
			ce := diag.FromCheckError(e, source)
			fmt.Fprint(os.Stderr, ce.FormatError(!noColor))
		}
		return source, nil, fmt.Errorf("%d type error(s) found", errs.Len())
	}
	return source, funcs, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")
	_, _, err := compile(args[0], noColor)
	if err != nil {
		return err
	}
	printSuccess(fmt.Sprintf("%s: no type errors", args[0]))
	return nil
}

func runRun(cmd *cobra.Command, args []string) error {
	noColor, _ := cmd.Flags().GetBool("no-color")
	useJIT, _ := cmd.Flags().GetBool("jit")
	cacheEnabled, _ := cmd.Flags().GetBool("cache")
	metricsAddr, _ := cmd.Flags().GetString("metrics-addr")

	var pipeline *metrics.Pipeline
	if metricsAddr != "" {
		p, registry := metrics.NewPipeline()
		pipeline = p
		go func() {
			if err := metrics.Serve(metricsAddr, registry); err != nil {
				printWarning(fmt.Sprintf("metrics server stopped: %v", err))
			}
		}()
	}

	source, funcs, err := compile(args[0], noColor)
	if err != nil {
		return err
	}

	if useJIT && cacheEnabled {
		cache, cerr := jitcache.Open("tetra_jit_cache.db")
		if cerr == nil {
			defer cache.Close()
			hash := jitcache.HashSource(source)
			hit, _ := cache.Lookup(context.Background(), hash)
			if hit {
				printInfo("JIT cache hit, skipping re-lowering metadata update")
			} else {
				cache.Record(context.Background(), hash)
			}
		}
	}

	backend := "interp"
	if useJIT {
		backend = "jit"
	}
	start := time.Now()

	var result lang.Value
	if useJIT {
		result, err = jit.Run(funcs)
	} else {
		result, err = interp.New(funcs).Run(func(s string) { fmt.Println(s) })
	}

	if pipeline != nil {
		pipeline.RunsTotal.WithLabelValues(backend).Inc()
		pipeline.RunDuration.WithLabelValues(backend).Observe(time.Since(start).Seconds())
	}
	if err != nil {
		if pipeline != nil {
			pipeline.RuntimePanics.Inc()
		}
		rerr := diag.NewRuntimeError(err.Error())
		fmt.Fprint(os.Stderr, rerr.FormatError(!noColor))
		return err
	}

	if result.Kind != lang.KindNone {
		printSuccess(fmt.Sprintf("main returned %s", result.String()))
	}
	return nil
}
