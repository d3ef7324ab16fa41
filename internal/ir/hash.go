package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old hashes.
const (
	DomainManifest = "modinit/manifest/v1"
	DomainTrace    = "modinit/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The separator keeps the domain/data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ManifestHash identifies a manifest by content. Two manifests with the
// same modules, imports and hooks in the same order hash equal regardless
// of source formatting or Unicode normalization form.
func ManifestHash(m *Manifest) (string, error) {
	canonical, err := MarshalCanonical(m.canonicalValue())
	if err != nil {
		return "", fmt.Errorf("ManifestHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainManifest, canonical), nil
}

// MustManifestHash is like ManifestHash but panics on error.
// Use only in tests or when the manifest is known to be valid.
func MustManifestHash(m *Manifest) string {
	h, err := ManifestHash(m)
	if err != nil {
		panic(err)
	}
	return h
}

// TraceHash identifies the observable outcome of a run: results, cursors,
// table and the ordered hook calls. The run id and label are excluded, so
// replays of the same manifest with the same failures hash equal.
func TraceHash(r *RunRecord) (string, error) {
	calls := make([]any, len(r.Calls))
	for i, c := range r.Calls {
		obj := map[string]any{
			"seq":    c.Seq,
			"stage":  c.Stage,
			"module": c.Module,
			"hook":   c.Hook,
			"ok":     c.OK,
		}
		if c.Error != "" {
			obj["error"] = c.Error
		}
		calls[i] = obj
	}
	table := r.Table
	if table == nil {
		table = []string{}
	}
	canonical, err := MarshalCanonical(map[string]any{
		"manifest_hash":   r.ManifestHash,
		"init_result":     r.InitResult,
		"init_cursor":     r.InitCursor,
		"finalize_result": r.FinalizeResult,
		"finalize_cursor": r.FinalizeCursor,
		"table":           table,
		"calls":           calls,
	})
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}
