// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskapi is an HTTP client for the remote task service.
//
// The service exposes a small JSON CRUD surface:
//
//	GET    /tasks?active_only=&mine=&status=&project_id=   {"items": [Task...]}
//	GET    /projects                                       {"items": [Project...]}
//	POST   /tasks                                          CreateRequest -> Task
//	PUT    /tasks/{id}                                     UpdatePayload -> Task
//	DELETE /tasks/{id}                                     204, or 2xx with a body
//
// Every request carries an Authorization bearer header taken from an
// oauth2.TokenSource and a fresh X-Request-ID. Non-2xx responses are
// returned as *[APIError], which carries the status code and the
// server's message:
//
//	var apiErr *taskapi.APIError
//	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound { ... }
//
// The client holds no state beyond its configuration and is safe for
// concurrent use.
package taskapi
