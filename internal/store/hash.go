package store

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old rows.
const (
	DomainSource = "midiscript/source/v1"
	DomainSMF    = "midiscript/smf/v1"
)

var crlf = strings.NewReplacer("\r\n", "\n")

// hashWithDomain returns hex(SHA256(domain + 0x00 + data)). The null byte
// keeps domain and data from running into each other.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SourceHash hashes source after NFC normalization and CRLF folding, so the
// same script saved by different editors hashes the same.
func SourceHash(source string) string {
	normalized := norm.NFC.String(source)
	normalized = crlf.Replace(normalized)
	return hashWithDomain(DomainSource, []byte(normalized))
}

// OutputHash hashes generated SMF bytes.
func OutputHash(smf []byte) string {
	return hashWithDomain(DomainSMF, smf)
}
