package store

import (
	"bytes"
	"encoding/base64"

	"leverage/internal/errs"
)

// encodeCursor turns the last returned order key into an opaque token.
func encodeCursor(orderKey []byte) string {
	return base64.RawURLEncoding.EncodeToString(orderKey)
}

// decodeCursor validates that the token names an order key of this
// collection. An empty cursor means the first page.
func (k keyspace) decodeCursor(cursor string) ([]byte, error) {
	if cursor == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return nil, errs.NewInvalidParamErr("cursor", cursor)
	}
	prefix := k.orderPrefix()
	if !bytes.HasPrefix(raw, prefix) || len(raw) != len(prefix)+20 {
		return nil, errs.NewInvalidParamErr("cursor", cursor)
	}
	for _, b := range raw[len(prefix):] {
		if b < '0' || b > '9' {
			return nil, errs.NewInvalidParamErr("cursor", cursor)
		}
	}
	return raw, nil
}
