package engine

import (
	"errors"
	"fmt"
)

// FetchReason classifies why a fetch produced no usable data.
type FetchReason string

const (
	// ReasonUnreachable: no candidate endpoint answered with HTTP 200.
	ReasonUnreachable FetchReason = "unreachable"
	// ReasonOffline: a page was fetched but could not be turned into data.
	ReasonOffline FetchReason = "offline"
	// ReasonParserNotFound: no registered parser recognised the page.
	ReasonParserNotFound FetchReason = "parser_not_found"
	// ReasonLoginFailed: credentials are configured and the vendor login failed.
	ReasonLoginFailed FetchReason = "login_failed"
)

// ErrLoginFailed is wrapped by FetchError when authentication is rejected.
var ErrLoginFailed = errors.New("modem login failed")

// FetchError is returned by Scraper.Fetch alongside a degraded snapshot.
type FetchError struct {
	Reason FetchReason
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Reason)
	}
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ReasonOf returns the FetchReason carried by err, or "" when err is not a
// FetchError.
func ReasonOf(err error) FetchReason {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Reason
	}
	return ""
}
