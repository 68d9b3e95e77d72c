package store

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// Snapshots are stored as Core Deterministic CBOR so an unchanged snapshot always
// encodes to the same bytes.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
	decMode, err = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic("store: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshalSnapshot(s Snapshot) ([]byte, error) {
	return encMode.Marshal(s)
}

func unmarshalSnapshot(b []byte) (Snapshot, error) {
	var s Snapshot
	err := decMode.Unmarshal(b, &s)
	return s, err
}
