package model

import "errors"

var (
	// ErrUpstreamUnavailable reports that the node could not be reached after retries.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrNotFound reports a transaction or output unknown to the node.
	ErrNotFound = errors.New("not found")
	// ErrStaleWrite reports a conditional account write that lost to a newer reconciliation.
	ErrStaleWrite = errors.New("stale write")
	// ErrMalformedPayload reports an inbound event that could not be decoded.
	ErrMalformedPayload = errors.New("malformed payload")
)
