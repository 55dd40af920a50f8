package ast

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainRevision separates revision digests from other hashes.
const DomainRevision = "octave/revision/v1"

// ContentHash is the SHA-256 hex digest of canonical text. It is the hash
// reported by create and checked by amend.
func ContentHash(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RevisionDigest identifies one revision of a file: its path, position in
// the chain, parent hash and content hash.
func RevisionDigest(path string, seq int64, parentHash, contentHash string) (string, error) {
	obj := InlineMap{
		{Key: "path", Value: String(path)},
		{Key: "seq", Value: Int(seq)},
		{Key: "parent_hash", Value: String(parentHash)},
		{Key: "content_hash", Value: String(contentHash)},
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("RevisionDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRevision, canonical), nil
}
