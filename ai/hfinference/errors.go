package hfinference

import "errors"

var (
	// ErrRequestFailed indicates the inference endpoint answered with a non-2xx status.
	ErrRequestFailed = errors.New("inference request failed")

	// ErrEmptyResponse indicates the endpoint answered without a usable result.
	ErrEmptyResponse = errors.New("empty inference response")
)
