// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"errors"

	"golang.org/x/oauth2"

	"github.com/bureau-foundation/taskboard/lib/secret"
)

// bufferTokenSource serves a static bearer token held in a secret
// buffer. The token is copied out of protected memory per request and
// never cached on the heap.
type bufferTokenSource struct {
	buffer *secret.Buffer
}

// TokenSource returns an oauth2.TokenSource that yields the bearer
// token in buffer on every call. The buffer must outlive the client.
func TokenSource(buffer *secret.Buffer) oauth2.TokenSource {
	return bufferTokenSource{buffer: buffer}
}

func (s bufferTokenSource) Token() (*oauth2.Token, error) {
	if s.buffer == nil || s.buffer.Len() == 0 {
		return nil, errors.New("taskapi: bearer token is not available")
	}
	return &oauth2.Token{AccessToken: s.buffer.String(), TokenType: "Bearer"}, nil
}
