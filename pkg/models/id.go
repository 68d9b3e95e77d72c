package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID identifies any entity crossing the API boundary. Values arriving as numbers,
// strings, or wrapped object ids all normalize to the same string form, so IDs
// compare with == regardless of where they came from (URL path, prior fetch, etc).
type ID string

// String returns the normalized string form.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// IDOf normalizes v to an ID. Strings are used as-is, integers and floats use their
// shortest decimal form (42 and 42.0 both become "42"), fmt.Stringer uses String().
func IDOf(v any) ID {
	switch x := v.(type) {
	case nil:
		return ""
	case ID:
		return x
	case string:
		return ID(x)
	case int:
		return ID(strconv.Itoa(x))
	case int32:
		return ID(strconv.FormatInt(int64(x), 10))
	case int64:
		return ID(strconv.FormatInt(x, 10))
	case uint:
		return ID(strconv.FormatUint(uint64(x), 10))
	case uint32:
		return ID(strconv.FormatUint(uint64(x), 10))
	case uint64:
		return ID(strconv.FormatUint(x, 10))
	case float32:
		return ID(strconv.FormatFloat(float64(x), 'f', -1, 32))
	case float64:
		return ID(strconv.FormatFloat(x, 'f', -1, 64))
	case json.Number:
		return ID(x.String())
	case fmt.Stringer:
		return ID(x.String())
	default:
		return ID(fmt.Sprint(x))
	}
}

// UnmarshalJSON accepts "abc", 42, {"$oid":"abc"} and {"_id":"abc"}.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	case '{':
		var wrapped struct {
			OID *ID `json:"$oid"`
			ID  *ID `json:"_id"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return err
		}
		switch {
		case wrapped.OID != nil:
			*id = *wrapped.OID
		case wrapped.ID != nil:
			*id = *wrapped.ID
		default:
			return fmt.Errorf("models: object id without $oid or _id: %s", data)
		}
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("models: invalid id %s", data)
		}
		if !bytes.ContainsAny(data, ".eE") {
			*id = ID(n.String())
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("models: invalid id %s", data)
		}
		*id = IDOf(f)
		return nil
	}
}
