package webvalve

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

var errNotAbsoluteURL = errors.New("scheme and host are required")

func cloneURL(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	var userInfo *url.Userinfo
	if u.User != nil {
		userInfoCopy := *u.User
		userInfo = &userInfoCopy
	}
	uCopy := *u
	uCopy.User = userInfo
	return &uCopy
}

// withoutCredentials returns a copy of u with the user:password part of the authority removed.
func withoutCredentials(u *url.URL) *url.URL {
	uCopy := cloneURL(u)
	uCopy.User = nil
	return uCopy
}

// RequestData is some data related to the intercepted request, that is passed to RequestMatcher implementations.
// The fields are cloned from request's fields and their modification will not affect actual request's values.
type RequestData struct {
	Method    string
	Header    http.Header
	URL       *url.URL
	BodyBytes []byte
}

// requestDataFromRequest snapshots req. The request body is read and replaced, so it can still be consumed by the handler.
func requestDataFromRequest(req *http.Request) (RequestData, error) {
	if req.Body == nil {
		req.Body = http.NoBody
	}
	var originalReqBody bytes.Buffer
	teeReader := io.TeeReader(req.Body, &originalReqBody)
	gotBodyBytes, err := io.ReadAll(teeReader)
	if err != nil {
		return RequestData{}, fmt.Errorf("reading request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return RequestData{}, fmt.Errorf("closing request body: %w", err)
	}
	req.Body = io.NopCloser(&originalReqBody)

	return RequestData{
		Method:    req.Method,
		Header:    req.Header.Clone(),
		URL:       cloneURL(req.URL),
		BodyBytes: gotBodyBytes,
	}, nil
}
