// Package media provides size-capped payload helpers shared by attachment
// handling.
package media

import (
	"fmt"
	"io"
)

// ReadCapped reads r to completion, rejecting payloads over limit bytes with
// ErrAssetTooLarge. The limit comes from chat.max_asset_bytes; config
// validation guarantees it is positive.
func ReadCapped(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrAssetTooLarge, limit)
	}
	return data, nil
}
