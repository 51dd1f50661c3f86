// The testbed application. Build with -tags no<capability> only the engine
// packages; the testbed needs every capability.
package main

import (
	"github.com/spaghettifunk/cala/engine"
	"github.com/spaghettifunk/cala/testbed"
)

func main() {
	engine.Main(testbed.Step, testbed.NewState)
}
