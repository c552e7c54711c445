//go:build !linux && !windows && !darwin

package desktop

// No backend: Current stays nil and Default reports ErrUnsupported.
