package store

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainInput   = "rulesgen/input/v1"
	DomainOutput  = "rulesgen/output/v1"
	DomainOptions = "rulesgen/options/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// InputHash identifies a service's generation inputs: the ruleset document
// and, when present, its test document. Both are canonicalized first.
func InputHash(ruleset, tests []byte) (string, error) {
	rs, err := CanonicalJSON(ruleset)
	if err != nil {
		return "", fmt.Errorf("InputHash: ruleset: %w", err)
	}
	data := append([]byte(nil), rs...)
	data = append(data, 0x00)
	if tests != nil {
		ts, err := CanonicalJSON(tests)
		if err != nil {
			return "", fmt.Errorf("InputHash: tests: %w", err)
		}
		data = append(data, ts...)
	}
	return hashWithDomain(DomainInput, data), nil
}

// OutputHash identifies a set of generated files by name and content.
// Iteration order of files does not matter.
func OutputHash(files map[string][]byte) string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	slices.Sort(names)

	var data []byte
	for _, name := range names {
		data = append(data, name...)
		data = append(data, 0x00)
		data = append(data, files[name]...)
		data = append(data, 0x00)
	}
	return hashWithDomain(DomainOutput, data)
}

// OptionsHash identifies the effective settings a service was generated
// with. Iteration order of opts does not matter.
func OptionsHash(opts map[string]string) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	var data []byte
	for _, k := range keys {
		data = append(data, k...)
		data = append(data, 0x00)
		data = append(data, opts[k]...)
		data = append(data, 0x00)
	}
	return hashWithDomain(DomainOptions, data)
}
