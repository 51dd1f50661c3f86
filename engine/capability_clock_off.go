//go:build noclock

package engine

type clockCapability struct{}
