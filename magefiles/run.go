//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed scene from config.toml.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	if _, err := executeCmd("go", withArgs("run", "main.go", "-config", "config.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the testbed against the packed assets.
func (Run) Packed() error {
	mg.Deps(Build.Pack)
	if _, err := executeCmd("go", withArgs("run", "main.go", "-config", "config.packed.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
