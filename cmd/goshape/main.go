package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	json "github.com/goccy/go-json"

	goshape "github.com/reoring/goshape"
	"github.com/reoring/goshape/i18n"
	"github.com/reoring/goshape/jsonschema"
	"github.com/reoring/goshape/schemadoc"
)

// Exit codes.
const (
	exitOK      = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		usage(stderr)
		return exitUsage
	}
	switch args[0] {
	case "validate":
		return validateCmd(args[1:], stdin, stdout, stderr)
	case "jsonschema":
		return jsonschemaCmd(args[1:], stdout, stderr)
	default:
		usage(stderr)
		return exitUsage
	}
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "goshape CLI\n\nUsage:\n  goshape validate -schema schema.yaml [-input doc.json|-] [-format json|yaml] [-mode passthrough|strip|strict]\n  goshape jsonschema -schema schema.yaml [-mode strict]\n\nExit status is 1 when the input is rejected and 2 on usage or load errors.")
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func validateCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		schemaPath = fs.String("schema", "", "schema document (YAML or JSON)")
		inputPath  = fs.String("input", "-", "input document; - reads stdin")
		format     = fs.String("format", "", "input format: json or yaml (default: by extension, else json)")
		mode       = fs.String("mode", "passthrough", "unknown key policy: passthrough, strip or strict")
		lang       = fs.String("lang", "", "message language (BCP 47 / Accept-Language), e.g. ja")
		maxDepth   = fs.Int("max-depth", 0, "maximum nesting depth; 0 uses the default, negative disables")
		dup        = fs.String("dup", "error", "duplicate key handling: ignore, warn or error")
		verbose    = fs.Bool("v", false, "debug logging")
		dump       = fs.Bool("dump", false, "dump the parsed value with go-spew instead of JSON")
	)
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	log := newLogger(stderr, *verbose)
	if *schemaPath == "" {
		fs.Usage()
		return exitUsage
	}
	if *lang != "" {
		i18n.SetLanguage(*lang)
	}
	policy, ok := goshape.ParseUnknownPolicy(*mode)
	if !ok {
		fmt.Fprintf(stderr, "goshape: unknown -mode %q\n", *mode)
		return exitUsage
	}
	sev, ok := parseSeverity(*dup)
	if !ok {
		fmt.Fprintf(stderr, "goshape: unknown -dup %q\n", *dup)
		return exitUsage
	}

	node, err := schemadoc.LoadFile(*schemaPath, schemadoc.WithLogger(log))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	var in io.Reader = stdin
	if *inputPath != "-" {
		f, err := os.Open(*inputPath)
		if err != nil {
			fmt.Fprintf(stderr, "goshape: %v\n", err)
			return exitUsage
		}
		defer f.Close()
		in = f
	}
	var src goshape.Source
	switch detectFormat(*format, *inputPath) {
	case "yaml":
		src = goshape.YAMLReader(in)
	default:
		src = goshape.JSONReader(in)
	}

	opt := goshape.ParseOpt{
		Mode:       policy,
		MaxDepth:   *maxDepth,
		Strictness: goshape.Strictness{OnDuplicateKey: sev},
		OnWarning: func(de *goshape.DecodeError) {
			log.Warn("input warning", slog.String("code", de.Code), slog.String("path", de.Path), slog.String("message", de.Message))
		},
	}
	log.Debug("validating", slog.String("schema", *schemaPath), slog.String("input", *inputPath), slog.String("mode", policy.String()), slog.String("node", node.String()))

	v, err := goshape.ParseFrom(context.Background(), node, src, opt)
	if err != nil {
		if issues, ok := goshape.AsIssues(err); ok {
			writeJSON(stdout, map[string]any{"valid": false, "issues": issues})
			return exitInvalid
		}
		var de *goshape.DecodeError
		if errors.As(err, &de) {
			fmt.Fprintln(stderr, de)
			return exitInvalid
		}
		fmt.Fprintf(stderr, "goshape: %v\n", err)
		return exitInvalid
	}
	if *dump {
		spew.Fdump(stdout, v)
		return exitOK
	}
	if goshape.TagOf(v) == goshape.TagUndefined {
		v = nil
	}
	writeJSON(stdout, map[string]any{"valid": true, "value": v})
	return exitOK
}

func jsonschemaCmd(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("jsonschema", flag.ContinueOnError)
	fs.SetOutput(stderr)
	schemaPath := fs.String("schema", "", "schema document (YAML or JSON)")
	mode := fs.String("mode", "passthrough", "unknown key policy the schema is used with")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *schemaPath == "" {
		fs.Usage()
		return exitUsage
	}
	policy, ok := goshape.ParseUnknownPolicy(*mode)
	if !ok {
		fmt.Fprintf(stderr, "goshape: unknown -mode %q\n", *mode)
		return exitUsage
	}
	node, err := schemadoc.LoadFile(*schemaPath, schemadoc.WithLogger(newLogger(stderr, *verbose)))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitUsage
	}
	b, err := jsonschema.Marshal(node, jsonschema.Options{Mode: policy})
	if err != nil {
		fmt.Fprintf(stderr, "goshape: %v\n", err)
		return exitUsage
	}
	_, _ = stdout.Write(append(b, '\n'))
	return exitOK
}

func parseSeverity(s string) (goshape.Severity, bool) {
	switch s {
	case "ignore":
		return goshape.Ignore, true
	case "warn":
		return goshape.Warn, true
	case "error":
		return goshape.Error, true
	}
	return goshape.Ignore, false
}

func detectFormat(flagValue, path string) string {
	if flagValue != "" {
		return strings.ToLower(flagValue)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	}
	return "json"
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
