package snapshot

import (
	"github.com/fxamacker/cbor/v2"

	egvis "github.com/zontasticality/egraph-vis"
)

// EncodeCBOR serializes the timeline to canonical CBOR for export to an
// external viewer.
func (t *Timeline) EncodeCBOR() ([]byte, error) {
	out, err := digestEncMode.Marshal(t)
	if err != nil {
		return nil, egvis.Wrap(egvis.ErrEncode, "encode timeline", err)
	}
	return out, nil
}

// DecodeTimelineCBOR is the inverse of EncodeCBOR.
func DecodeTimelineCBOR(data []byte) (*Timeline, error) {
	var t Timeline
	if err := cbor.Unmarshal(data, &t); err != nil {
		return nil, egvis.Wrap(egvis.ErrEncode, "decode timeline", err)
	}
	return &t, nil
}
