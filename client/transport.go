package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// codeTokenExpired is the guard code that marks a 401 as recoverable by
// refresh. Malformed-token and deactivated-account 401s are terminal and are
// returned to the caller unchanged.
const codeTokenExpired = "TokenExpired"

// maxErrorBody bounds how much of an error response is buffered to inspect
// its failure code.
const maxErrorBody = 8 << 10

// Transport is an http.RoundTripper that injects the stored access token
// into every outgoing request and, on a 401 caused by token expiry, performs
// a single-flight refresh and resends the request with the new token.
// A request is retried at most once: a second 401 propagates unchanged.
type Transport struct {
	base      http.RoundTripper
	store     TokenStore
	refresher *refresher
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	attempt := req.Clone(req.Context())
	setToken(attempt, t.store.AccessToken())

	resp, err := t.base.RoundTrip(attempt)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	expired, err := consumeExpiryCheck(resp)
	if err != nil {
		return nil, err
	}
	if !expired {
		return resp, nil
	}
	// A request whose body cannot be replayed cannot be retried.
	if req.Body != nil && req.GetBody == nil {
		return resp, nil
	}

	token, err := t.refresher.refresh()
	if err != nil {
		return nil, fmt.Errorf("refresh after 401: %w", err)
	}

	retry := req.Clone(req.Context())
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		retry.Body = body
	}
	setToken(retry, token)
	return t.base.RoundTrip(retry)
}

func setToken(req *http.Request, token string) {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// consumeExpiryCheck reads the 401 body to see whether the guard reported
// token expiry, then restores the body so the response stays usable when the
// request is not retried.
func consumeExpiryCheck(resp *http.Response) (bool, error) {
	buf, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	closeErr := resp.Body.Close()
	if err != nil {
		return false, err
	}
	if closeErr != nil {
		return false, closeErr
	}
	resp.Body = io.NopCloser(bytes.NewReader(buf))

	var envelope struct {
		Code string `json:"code"`
	}
	_ = json.Unmarshal(buf, &envelope)
	return envelope.Code == codeTokenExpired, nil
}
