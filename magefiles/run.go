//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the demo with anima.toml, watching it for log level changes.
func (Run) Engine() error {
	mg.Deps(Test.Vet)
	fmt.Println("Run engine...")
	if _, err := executeCmd("go", withArgs("run", ".", "anima.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
