//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the testbed in a window.
func (Run) Testbed() error {
	fmt.Println("Run testbed...")
	_, err := executeCmd("go", withArgs("run", ".", "--log-level", "debug"), withStream())
	return err
}

// Runs the testbed without window, audio device or controllers.
func (Run) Headless() error {
	mg.Deps(Build.Testbed)
	_, err := executeCmd("bin/cala", withArgs("--headless", "--log-level", "debug"), withStream())
	return err
}
