// Copyright 2016 The OPA Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Command regolite-validate is a thin CLI wrapper around the rego
// package: it loads a policy file and an input/config document, runs a
// query against it, and maps the result onto an exit code. Per spec.md
// §1 the CLI is an external collaborator specified only at its
// interface - this is that interface stub, not a fully-featured tool.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/r6e/regolite/ast"
	"github.com/r6e/regolite/rego"
	"github.com/r6e/regolite/topdown"
)

const (
	exitAllow = 0
	exitDeny  = 1
	exitOp    = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr *os.File) int {
	fs := flag.NewFlagSet("regolite-validate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	policyFile := fs.String("policy", "", "path to a Rego policy file")
	configFile := fs.String("config", "", "path to a JSON or YAML input document")
	query := fs.String("query", "", "query reference, e.g. data.example.allow (default: module root document)")
	format := fs.String("format", "text", "output format: text or json")
	profile := fs.Bool("profile", false, "emit compile/evaluate timing to stderr")

	if err := fs.Parse(args); err != nil {
		return exitOp
	}
	if *policyFile == "" {
		fmt.Fprintln(stderr, "regolite-validate: --policy is required")
		return exitOp
	}

	policySrc, err := os.ReadFile(*policyFile)
	if err != nil {
		fmt.Fprintf(stderr, "regolite-validate: reading policy: %v\n", err)
		return exitOp
	}

	var input interface{}
	if *configFile != "" {
		configSrc, err := os.ReadFile(*configFile)
		if err != nil {
			fmt.Fprintf(stderr, "regolite-validate: reading config: %v\n", err)
			return exitOp
		}
		if err := yaml.Unmarshal(configSrc, &input); err != nil {
			fmt.Fprintf(stderr, "regolite-validate: parsing config: %v\n", err)
			return exitOp
		}
		input = normalizeYAML(input)
	}

	compileStart := time.Now()
	policy, err := rego.NewPolicy(string(policySrc))
	compileElapsed := time.Since(compileStart)
	if err != nil {
		return reportError(stdout, stderr, *format, err)
	}

	var tracer *topdown.BufferTracer
	opts := []rego.EvalOption{rego.WithQuery(*query)}
	if input != nil {
		opts = append(opts, rego.WithInput(input))
	}
	if *profile {
		tracer = &topdown.BufferTracer{}
		opts = append(opts, rego.WithEvalTracer(tracer))
	}

	evalStart := time.Now()
	result := policy.Evaluate(opts...)
	evalElapsed := time.Since(evalStart)

	if *profile {
		fmt.Fprintf(stderr, "compile: %s, evaluate: %s, events: %d\n",
			compileElapsed, evalElapsed, len(tracer.Events))
	}

	return reportResult(stdout, stderr, *format, result)
}

// normalizeYAML walks yaml.v3's decoding (string-keyed maps and slices)
// recursively and converts every int to float64, since
// ast.InterfaceToValue's type switch accepts float64 and json.Number
// numbers but not int.
func normalizeYAML(x interface{}) interface{} {
	switch v := x.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, val := range v {
			out[k] = normalizeYAML(val)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, val := range v {
			out[i] = normalizeYAML(val)
		}
		return out
	case int:
		return float64(v)
	default:
		return v
	}
}

func reportError(stdout, stderr *os.File, format string, err error) int {
	if format == "json" {
		enc := json.NewEncoder(stdout)
		enc.Encode(map[string]interface{}{
			"success": false,
			"result":  nil,
			"error":   err.Error(),
		})
	} else {
		fmt.Fprintf(stderr, "regolite-validate: %v\n", err)
	}
	return exitOp
}

func reportResult(stdout, stderr *os.File, format string, result *rego.Result) int {
	switch result.Status {
	case rego.StatusError:
		return reportError(stdout, stderr, format, result.Error)
	case rego.StatusUndefined:
		if format == "json" {
			json.NewEncoder(stdout).Encode(map[string]interface{}{
				"success": false,
				"result":  nil,
			})
		} else {
			fmt.Fprintln(stdout, "undefined")
		}
		return exitDeny
	default:
		value, err := ast.TermJSON(result.Value)
		if err != nil {
			return reportError(stdout, stderr, format, err)
		}
		success := isAllow(result.Value)
		if format == "json" {
			json.NewEncoder(stdout).Encode(map[string]interface{}{
				"success": success,
				"result":  value,
			})
		} else {
			bs, _ := json.MarshalIndent(value, "", "  ")
			fmt.Fprintln(stdout, string(bs))
		}
		if success {
			return exitAllow
		}
		return exitDeny
	}
}

// isAllow reports whether v is Rego's boolean true, the CLI's notion of
// an "allow" decision for exit-code purposes. Any other value (false, or
// a non-boolean document) is treated as a deny.
func isAllow(v *ast.Term) bool {
	b, ok := v.Value.(ast.Boolean)
	return ok && bool(b)
}
