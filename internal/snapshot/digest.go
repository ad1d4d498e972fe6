package snapshot

import (
	"encoding/hex"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"

	egvis "github.com/zontasticality/egraph-vis"
)

var digestEncMode = func() cbor.EncMode {
	mode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return mode
}()

// digestInfo labels the HKDF expansion so a digest can never be confused
// with key material derived for any other purpose in this codebase.
const digestInfo = "egraph-vis/timeline-digest/v1"

// Digest returns a 32-byte hex-encoded fingerprint of the timeline's full
// published state, deterministic across runs given an identical preset and
// options. It canonically CBOR-encodes every snapshot in publication order,
// hashes the result with SHA3-256, and runs that hash through HKDF (extract
// then expand, no salt) so
// the digest is bound to digestInfo rather than exposing the raw hash.
func (t *Timeline) Digest() (string, error) {
	h := sha3.New256()
	for _, snap := range t.States {
		encoded, err := digestEncMode.Marshal(snap)
		if err != nil {
			return "", egvis.Wrap(egvis.ErrEncode, "digest: encode snapshot", err)
		}
		if _, err := h.Write(encoded); err != nil {
			return "", egvis.Wrap(egvis.ErrEncode, "digest: hash snapshot", err)
		}
	}
	seed := h.Sum(nil)

	kdf := hkdf.New(sha3.New256, seed, nil, []byte(digestInfo))
	out := make([]byte, 32)
	if _, err := kdf.Read(out); err != nil {
		return "", egvis.Wrap(egvis.ErrEncode, "digest: hkdf expand", err)
	}
	return hex.EncodeToString(out), nil
}
