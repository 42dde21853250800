// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// Buffer is a fixed-size region of protected memory holding one secret.
// It must not be copied after creation. Accessing the contents after
// Close panics.
type Buffer struct {
	mu     sync.Mutex
	region []byte
	length int
	closed bool
}

// New allocates a protected buffer of the given size: anonymous mmap
// outside the Go heap, mlocked against swap, excluded from core dumps.
// The caller owns the buffer and must Close it.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	region, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}

	if err := unix.Mlock(region); err != nil {
		unix.Munmap(region)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}

	if err := excludeFromDumps(region); err != nil {
		unix.Munlock(region)
		unix.Munmap(region)
		return nil, err
	}

	return &Buffer{
		region: region,
		length: size,
	}, nil
}

// NewFromBytes moves a secret from an ordinary slice into a protected
// buffer. The source slice is zeroed in place so the unprotected copy
// stops existing the moment this returns, including on error.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	buffer, err := New(len(source))
	if err != nil {
		Zero(source)
		return nil, err
	}

	copy(buffer.region, source)
	Zero(source)

	return buffer, nil
}

// NewFromString moves a secret string into a protected buffer. The
// source string itself cannot be zeroed (Go strings are immutable);
// this exists for API boundaries that already handed us a string, where
// the heap copy is unavoidable. Prefer NewFromBytes wherever the secret
// originates as bytes.
func NewFromString(source string) (*Buffer, error) {
	if source == "" {
		return nil, fmt.Errorf("secret: cannot create buffer from empty string")
	}
	buffer, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(buffer.region, source)
	return buffer, nil
}

// Bytes returns the secret contents. The slice aliases the protected
// region directly — do not retain it past the buffer's lifetime and do
// not pass it to code that may keep a reference. Panics after Close.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return b.region[:b.length]
}

// String returns the secret as a string. The result is an ordinary
// heap allocation outside this package's control; use it only at API
// boundaries that demand a string (OS keystore bindings, encoders) and
// keep its lifetime as short as possible. Panics after Close.
func (b *Buffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic("secret: read from closed buffer")
	}
	return string(b.region[:b.length])
}

// Len returns the secret's size in bytes.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.length
}

// Close zeros the contents, unlocks, and unmaps the region. Idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	Zero(b.region)

	var firstError error
	if err := unix.Munlock(b.region); err != nil {
		firstError = fmt.Errorf("secret: munlock: %w", err)
	}
	if err := unix.Munmap(b.region); err != nil && firstError == nil {
		firstError = fmt.Errorf("secret: munmap: %w", err)
	}

	b.region = nil
	return firstError
}

// Zero overwrites a byte slice in place. Use it on any transient slice
// that held secret material before letting it go out of scope.
func Zero(data []byte) {
	for index := range data {
		data[index] = 0
	}
}
