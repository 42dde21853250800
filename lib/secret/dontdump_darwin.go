// Copyright 2026 The Veil Authors
// SPDX-License-Identifier: Apache-2.0

package secret

// Darwin has no MADV_DONTDUMP and does not write core dumps unless the
// user raises the core rlimit, so the mmap and mlock protections stand
// alone there.
func excludeFromDumps([]byte) error {
	return nil
}
