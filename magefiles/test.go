//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Test mg.Namespace

// Runs every test with the race detector.
func (Test) All() error {
	_, err := executeCmd("go", withArgs("test", "-race", "./..."), withStream())
	return err
}

// Runs the engine tests once per disabled capability.
func (Test) Matrix() error {
	for _, tag := range capabilityTags {
		if _, err := executeCmd("go", withArgs("test", "-tags", tag, "./engine/..."), withStream()); err != nil {
			return err
		}
	}
	return nil
}
