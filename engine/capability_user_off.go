//go:build nouser

package engine

type userCapability struct{}
