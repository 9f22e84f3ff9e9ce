package domain

import "errors"

var (
	// ErrEmptyCatalog means a source account had nothing left to post.
	ErrEmptyCatalog = errors.New("no eligible media")

	// ErrDownloadFailure means a media file could not be materialized.
	ErrDownloadFailure = errors.New("media download failed")

	// ErrUnsupportedMedia is returned for media types the platform client cannot fetch.
	ErrUnsupportedMedia = errors.New("unsupported media type")

	// ErrUploadFailure means the platform rejected or did not confirm a post.
	ErrUploadFailure = errors.New("upload failed")

	// ErrLedgerInconsistency means usage was merged for an account that does not exist.
	ErrLedgerInconsistency = errors.New("ledger update for unknown account")

	// ErrNotFound is returned by lookups for missing records.
	ErrNotFound = errors.New("not found")
)
