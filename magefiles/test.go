//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every package test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "-count=1", "./..."), withEnv("CGO_ENABLED=1"), withStream())
	return err
}

// Runs go vet on every package.
func (Test) Vet() error {
	_, err := executeCmd("go", withArgs("vet", "./..."), withStream())
	return err
}

// Runs the tests of one package directory, e.g. mage test:pkg engine/systems.
func (Test) Pkg(dir string) error {
	_, err := executeCmd("go", withArgs("test", "-count=1", "."), withDir(dir), withStream())
	return err
}
