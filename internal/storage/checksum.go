package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

const (
	// ChecksumPrefix is the prefix for SHA-256 checksums.
	ChecksumPrefix = "sha256:"

	// ChecksumSize is the length of a raw SHA-256 digest.
	ChecksumSize = sha256.Size

	checksumBufSize = 32 * 1024 // 32KB
)

// Checksum is a hex-encoded SHA-256 digest with the "sha256:" prefix.
type Checksum string

var ErrChecksumMismatch = errors.New("checksum mismatch")

var bufPool = sync.Pool{
	New: func() any {
		buf := make([]byte, checksumBufSize)
		return &buf
	},
}

// ChecksumBytes returns the raw SHA-256 digest of data.
func ChecksumBytes(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

// ComputeChecksum computes SHA-256 over a byte slice.
func ComputeChecksum(data []byte) Checksum {
	return FormatChecksum(ChecksumBytes(data))
}

// FormatChecksum formats a raw digest as a Checksum.
func FormatChecksum(sum []byte) Checksum {
	return Checksum(ChecksumPrefix + hex.EncodeToString(sum))
}

// VerifyChecksum reports ErrChecksumMismatch if data does not hash to expected.
func VerifyChecksum(data []byte, expected Checksum) error {
	if actual := ComputeChecksum(data); actual != expected {
		return fmt.Errorf("%w: expected %s got %s", ErrChecksumMismatch, expected, actual)
	}
	return nil
}

// ComputeFileChecksum streams the file at path through SHA-256.
func ComputeFileChecksum(path string) (Checksum, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	defer f.Close()

	bufPtr := bufPool.Get().(*[]byte)
	defer bufPool.Put(bufPtr)

	h := sha256.New()
	if _, err := io.CopyBuffer(h, f, *bufPtr); err != nil {
		return "", fmt.Errorf("compute file checksum %s: %w", path, err)
	}
	return FormatChecksum(h.Sum(nil)), nil
}
