// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package recovery

import (
	"net/url"
	"strings"
)

// TokenParam is the query parameter carrying the reset token.
const TokenParam = "token"

// TokenSource yields the reset token of the current page address.
type TokenSource interface {
	Token() (string, bool)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, bool)

func (f TokenFunc) Token() (string, bool) {
	return f()
}

type queryToken string

func (t queryToken) Token() (string, bool) {
	if strings.TrimSpace(string(t)) == "" {
		return "", false
	}
	return string(t), true
}

// QueryToken reads the token query parameter of u. A nil URL has no token.
func QueryToken(u *url.URL) TokenSource {
	if u == nil {
		return queryToken("")
	}
	return queryToken(u.Query().Get(TokenParam))
}

// TokenFromAddress parses raw as a page address and reads its token query
// parameter. Unparsable addresses have no token.
func TokenFromAddress(raw string) TokenSource {
	u, err := url.Parse(raw)
	if err != nil {
		return queryToken("")
	}
	return QueryToken(u)
}
