//go:build nocontroller

package engine

type controllerCapability struct{}
