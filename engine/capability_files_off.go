//go:build nofiles

package engine

type filesCapability struct{}
