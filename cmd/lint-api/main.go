// Command lint-api checks an OpenAPI 3.x document against the exodash API
// conventions.
//
// Usage:
//
//	go run ./cmd/lint-api [flags] internal/api/openapi.yaml
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"exodash/pkg/apilint"
)

func main() {
	severity := flag.String("severity", "", "minimum severity to report: error, warning, info (default: all)")
	configPath := flag.String("config", "", "path to an .apilint.yaml with per-rule overrides")
	listRules := flag.Bool("list-rules", false, "print the registered rules and exit")
	flag.Parse()

	if *listRules {
		for _, r := range apilint.RegisteredRules() {
			fmt.Printf("%s  %-7s  %s\n", r.ID(), r.DefaultSeverity(), r.Description())
		}
		return
	}

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "usage: lint-api [flags] <openapi.yaml>\n")
		os.Exit(2)
	}
	path := flag.Arg(0)

	var cfg *apilint.Config
	if *configPath != "" {
		c, err := apilint.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		cfg = c
	}

	linter, err := apilint.New(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	violations := linter.RunWithConfig(cfg)

	if *severity != "" {
		sev, err := apilint.ParseSeverity(*severity)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(2)
		}
		violations = apilint.Filter(violations, sev)
	}

	for _, v := range violations {
		fmt.Println(v)
	}
	if len(violations) == 0 {
		fmt.Printf("%s: ok (0 violations)\n", path)
	} else {
		fmt.Printf("\n%d violation(s) found\n", len(violations))
	}

	if apilint.HasErrors(violations) {
		os.Exit(1)
	}
}
