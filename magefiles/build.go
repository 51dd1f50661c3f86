//go:build mage

package main

import (
	"fmt"
	"strings"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var capabilityTags = []string{"noclock", "noaudio", "nocontroller", "nographics", "nofiles", "nouser"}

// Builds the testbed into bin/.
func (Build) Testbed() error {
	_, err := executeCmd("go", withArgs("build", "-o", "bin/cala", "."), withStream())
	return err
}

// Builds the engine packages once per disabled capability, then with every
// capability disabled.
func (Build) Matrix() error {
	for _, tag := range capabilityTags {
		if err := buildEngine(tag); err != nil {
			return err
		}
	}
	return buildEngine(strings.Join(capabilityTags, ","))
}

func buildEngine(tags string) error {
	fmt.Printf("Building engine with tags %q\n", tags)
	_, err := executeCmd("go", withArgs("build", "-tags", tags, "./engine/..."))
	return err
}
