package ocr

import "errors"

var (
	ErrCompanyRequired = errors.New("company_required")
	ErrNoImage         = errors.New("image_required")
	ErrFetchFailed     = errors.New("image_fetch_failed")
	ErrFetchTimeout    = errors.New("image_fetch_timeout")
	ErrUnprocessable   = errors.New("image_unprocessable")
)
