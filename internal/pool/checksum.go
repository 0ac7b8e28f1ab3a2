package pool

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"
)

// checksumSuffix names the optional sidecar file SaveToFile writes next to
// a snapshot. This is additive: the sidecar is not part of the on-disk
// layout spec.md §6 defines, and its absence is never a load failure.
const checksumSuffix = ".b2"

// writeChecksumSidecar records a BLAKE2b-256 digest of the exact bytes
// written to a snapshot file, at path+checksumSuffix.
func writeChecksumSidecar(path string, data []byte) error {
	sum := blake2b.Sum256(data)
	if err := os.WriteFile(path+checksumSuffix, sum[:], 0o644); err != nil {
		return fmt.Errorf("pool: write checksum sidecar: %w", err)
	}
	return nil
}

// verifyChecksumSidecar checks data against path+checksumSuffix if that
// file exists. A missing sidecar is not an error — older snapshots, or
// ones written by a tool that skips the sidecar, are still loadable.
func verifyChecksumSidecar(path string, data []byte) error {
	want, err := os.ReadFile(path + checksumSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("pool: read checksum sidecar: %w", err)
	}

	got := blake2b.Sum256(data)
	if !bytes.Equal(want, got[:]) {
		return fmt.Errorf("pool: snapshot checksum mismatch")
	}
	return nil
}
