// Copyright (C) 2016-2025, KBase. All rights reserved.
// See the file LICENSE for licensing terms.

package taxonapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

const loginMethod = "login"

type loginResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

type loginFailure struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Login exchanges a user name and password for a token at authURL. An empty
// authURL means DefaultAuthURL.
func Login(ctx context.Context, client *http.Client, authURL, user, password string) (string, error) {
	if authURL == "" {
		authURL = DefaultAuthURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	form := url.Values{}
	form.Set("user_id", user)
	form.Set("password", password)
	form.Set("fields", "token")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", errors.Wrapf(err, "invalid auth url %q", authURL)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", &TransportError{Method: loginMethod, Err: errors.Wrap(err, "failed to reach auth service")}
	}
	defer CleanlyCloseBody(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Method: loginMethod, Err: errors.Wrap(err, "failed to read auth response")}
	}

	switch {
	case resp.StatusCode >= 500:
		return "", &TransportError{Method: loginMethod, Err: errors.Errorf("auth service returned status code: %d", resp.StatusCode)}
	case resp.StatusCode >= 300:
		msg := http.StatusText(resp.StatusCode)
		var failure loginFailure
		if json.Unmarshal(body, &failure) == nil && failure.Error.Message != "" {
			msg = failure.Error.Message
		}
		return "", &AuthError{Method: loginMethod, Message: msg}
	}

	var out loginResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", &AuthError{Method: loginMethod, Message: "malformed login response", Err: err}
	}
	if out.Token == "" {
		return "", &AuthError{Method: loginMethod, Message: "login response carried no token"}
	}
	return out.Token, nil
}
