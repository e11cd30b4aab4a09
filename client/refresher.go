package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrNoRefreshToken means the store has no refresh token; the session is over
// and the caller must log in again.
var ErrNoRefreshToken = errors.New("no refresh token stored")

// RefreshError is a refresh call rejected by the server. It is terminal: the
// token store has already been cleared by the time callers see it.
type RefreshError struct {
	Status  int
	Message string
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("token refresh rejected (status %d): %s", e.Status, e.Message)
}

// refresher owns the refresh call. The singleflight group guarantees at most
// one in-flight refresh regardless of how many requests observe an expired
// token concurrently; every waiter receives the same outcome, so a batch of
// 401s either all retry with the same fresh token or all fail identically.
type refresher struct {
	baseURL string
	httpc   *http.Client
	store   TokenStore
	timeout time.Duration
	group   singleflight.Group
}

// refresh returns a fresh access token, joining the in-flight call if one
// exists. A caller that abandons interest simply ignores the shared result;
// the flight itself runs to completion on its own bounded timeout.
func (rf *refresher) refresh() (string, error) {
	v, err, _ := rf.group.Do("refresh", func() (interface{}, error) {
		return rf.doRefresh()
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (rf *refresher) doRefresh() (string, error) {
	refreshToken := rf.store.RefreshToken()
	if refreshToken == "" {
		_ = rf.store.Clear()
		return "", ErrNoRefreshToken
	}

	// The flight does not inherit any single caller's context: its result is
	// shared. The timeout bounds it instead, so a hung refresh endpoint
	// becomes a refresh failure rather than an indefinitely pending queue.
	ctx, cancel := context.WithTimeout(context.Background(), rf.timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"refreshToken": refreshToken})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rf.baseURL+"/v1/auth/refresh-token", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := rf.httpc.Do(req)
	if err != nil {
		_ = rf.store.Clear()
		return "", fmt.Errorf("refresh call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		_ = rf.store.Clear()
		return "", &RefreshError{Status: resp.StatusCode, Message: envelope.Error}
	}

	var tokens struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		_ = rf.store.Clear()
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if tokens.AccessToken == "" {
		_ = rf.store.Clear()
		return "", &RefreshError{Status: resp.StatusCode, Message: "empty access token in response"}
	}
	if err := rf.store.Save(tokens.AccessToken, tokens.RefreshToken); err != nil {
		return "", fmt.Errorf("persist refreshed tokens: %w", err)
	}
	return tokens.AccessToken, nil
}
