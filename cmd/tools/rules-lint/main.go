// cmd/tools/rules-lint/main.go
//
// rules-lint validates the intent rule registry and the response template
// registry before deployment. Exit code is non-zero on any failure so it
// can gate CI.
package main

import (
	"flag"
	"fmt"
	"os"

	"listing-assistant/internal/assistant/respond"
	"listing-assistant/pkg/rules"
)

func main() {
	rulesPath := flag.String("rules", "", "Path to intent rules JSON (skipped when empty)")
	templatesPath := flag.String("templates", "", "Path to response template registry JSON (skipped when empty)")
	flag.Parse()

	if *rulesPath == "" && *templatesPath == "" {
		fmt.Println("Usage: rules-lint -rules configs/intent_rules.json -templates configs/templates.json")
		os.Exit(1)
	}

	failed := false

	if *rulesPath != "" {
		if err := lintRules(*rulesPath); err != nil {
			fmt.Printf("✗ %s: %v\n", *rulesPath, err)
			failed = true
		} else {
			fmt.Printf("✓ %s: intent rules valid\n", *rulesPath)
		}
	}

	if *templatesPath != "" {
		if err := lintTemplates(*templatesPath); err != nil {
			fmt.Printf("✗ %s: %v\n", *templatesPath, err)
			failed = true
		} else {
			fmt.Printf("✓ %s: templates valid\n", *templatesPath)
		}
	}

	if failed {
		os.Exit(1)
	}
}

func lintRules(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := rules.ValidateDocument(data); err != nil {
		return err
	}

	// Loading performs the semantic checks on top of schema validation.
	reg, err := rules.LoadRegistry(path)
	if err != nil {
		return err
	}
	fmt.Printf("  %d rules (version %s)\n", len(reg.Rules), reg.Version)
	return nil
}

func lintTemplates(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := respond.ValidateDocument(data); err != nil {
		return err
	}

	reg, err := respond.LoadRegistry(path)
	if err != nil {
		return err
	}
	fmt.Printf("  %d templates (version %s)\n", len(reg.Templates), reg.Version)
	return nil
}
