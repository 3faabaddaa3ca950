// Package cryptox computes content digests for streamed artifacts.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
)

// Digest is an io.Writer that hashes everything written to it with SHA-256
// and counts the bytes. It never returns an error.
type Digest struct {
	h hash.Hash
	n int64
}

func NewDigest() *Digest {
	return &Digest{h: sha256.New()}
}

func (d *Digest) Write(p []byte) (int, error) {
	d.h.Write(p)
	d.n += int64(len(p))
	return len(p), nil
}

// Size is the number of bytes hashed so far.
func (d *Digest) Size() int64 {
	return d.n
}

// Hex returns the lowercase hex SHA-256 of the bytes written so far.
func (d *Digest) Hex() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// Matches compares d with a hex digest received from a peer.
func (d *Digest) Matches(peerHex string) bool {
	return subtle.ConstantTimeCompare([]byte(d.Hex()), []byte(peerHex)) == 1
}
