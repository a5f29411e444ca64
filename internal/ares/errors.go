package ares

import "errors"

var (
	// ErrRegistryUnreachable is returned after retries are exhausted.
	ErrRegistryUnreachable = errors.New("registry unreachable")

	// ErrCacheIO marks cache storage failures; fatal to the resolve call.
	ErrCacheIO = errors.New("cache i/o error")
)
