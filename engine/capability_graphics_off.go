//go:build nographics

package engine

type graphicsCapability struct{}
