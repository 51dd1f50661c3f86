//go:build noaudio

package engine

type audioCapability struct{}
