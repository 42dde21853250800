// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package secret

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// excludeFromDumps marks the region as excluded from core dumps.
func excludeFromDumps(region []byte) error {
	if err := unix.Madvise(region, unix.MADV_DONTDUMP); err != nil {
		return fmt.Errorf("secret: madvise(MADV_DONTDUMP): %w", err)
	}
	return nil
}
