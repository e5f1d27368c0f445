package main

import (
	"fmt"

	"github.com/alnah/go-md2book/internal/yamlutil"
)

// runConfigCmd prints the resolved configuration as YAML: book.yaml over the
// defaults, with environment overrides applied.
func runConfigCmd(args []string, env *Environment) error {
	f, err := parseCheckFlags("config", args, env.Stderr)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(f.common, env)
	if err != nil {
		return err
	}
	out, err := yamlutil.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	_, err = env.Stdout.Write(out)
	return err
}
