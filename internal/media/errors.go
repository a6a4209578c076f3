package media

import "errors"

var (
	// ErrAssetTooLarge indicates the payload exceeds the configured max asset size.
	ErrAssetTooLarge = errors.New("media asset too large")
	// ErrDownload indicates the attachment bytes could not be fetched.
	ErrDownload = errors.New("attachment download failed")
)
