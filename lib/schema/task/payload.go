// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyTitle is returned when a task would be created or renamed
// with a title that is empty after trimming whitespace.
var ErrEmptyTitle = errors.New("task title is required")

// ErrEmptyPayload is returned when an update carries no fields.
var ErrEmptyPayload = errors.New("update payload has no fields")

// validate is shared by every Validate method in this package. The
// validator caches struct metadata, so a single instance is cheaper
// than one per call. Field names in errors use the JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	instance := validator.New(validator.WithRequiredStructEnabled())
	instance.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return instance
}

// UpdatePayload is a sparse partial update for PUT /tasks/{id}. Nil
// pointer fields are omitted from the request and leave the server's
// value unchanged.
//
// DueDate and ProjectID can also be cleared. Clearing is expressed by
// the Clear* flags and serialized as an explicit JSON null, which the
// server distinguishes from an absent key.
type UpdatePayload struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *Status `json:"status" validate:"omitempty,oneof=todo in_progress done blocked"`
	Progress    *int    `json:"progress" validate:"omitempty,min=0,max=100"`
	IsActive    *bool   `json:"is_active"`

	ProjectID    *int64 `json:"project_id" validate:"omitempty,gt=0"`
	ClearProject bool   `json:"-"`

	DueDate      *string `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	ClearDueDate bool    `json:"-"`
}

// StatusUpdate returns a payload that sets only the status.
func StatusUpdate(status Status) UpdatePayload {
	return UpdatePayload{Status: &status}
}

// ProgressUpdate returns a payload that sets only the progress.
func ProgressUpdate(progress int) UpdatePayload {
	return UpdatePayload{Progress: &progress}
}

// ArchiveUpdate returns the payload that archives a task
// (is_active=false).
func ArchiveUpdate() UpdatePayload {
	active := false
	return UpdatePayload{IsActive: &active}
}

// RestoreUpdate returns the payload that restores an archived task
// (is_active=true).
func RestoreUpdate() UpdatePayload {
	active := true
	return UpdatePayload{IsActive: &active}
}

// DueDateUpdate returns a payload that sets the due date to date
// (YYYY-MM-DD).
func DueDateUpdate(date string) UpdatePayload {
	return UpdatePayload{DueDate: &date}
}

// ClearDueDateUpdate returns a payload that removes the due date.
func ClearDueDateUpdate() UpdatePayload {
	return UpdatePayload{ClearDueDate: true}
}

// IsEmpty reports whether the payload would change nothing.
func (p UpdatePayload) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil &&
		p.Progress == nil && p.IsActive == nil &&
		p.ProjectID == nil && !p.ClearProject &&
		p.DueDate == nil && !p.ClearDueDate
}

// Validate checks the payload before it is sent. Returns an error
// describing every invalid field, or nil.
func (p UpdatePayload) Validate() error {
	if p.IsEmpty() {
		return ErrEmptyPayload
	}
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return ErrEmptyTitle
	}
	if p.Status != nil && !p.Status.IsValid() {
		return fmt.Errorf("update payload: unknown status %q", *p.Status)
	}
	if p.ClearDueDate && p.DueDate != nil {
		return errors.New("update payload: due_date cannot be both set and cleared")
	}
	if p.ClearProject && p.ProjectID != nil {
		return errors.New("update payload: project_id cannot be both set and cleared")
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("update payload: %w", describeValidation(err))
	}
	return nil
}

// MarshalJSON encodes only the fields present in the payload, with
// explicit nulls for cleared fields.
func (p UpdatePayload) MarshalJSON() ([]byte, error) {
	fields := make(map[string]any)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Description != nil {
		fields["description"] = *p.Description
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	if p.Progress != nil {
		fields["progress"] = *p.Progress
	}
	if p.IsActive != nil {
		fields["is_active"] = *p.IsActive
	}
	switch {
	case p.ClearProject:
		fields["project_id"] = nil
	case p.ProjectID != nil:
		fields["project_id"] = *p.ProjectID
	}
	switch {
	case p.ClearDueDate:
		fields["due_date"] = nil
	case p.DueDate != nil:
		fields["due_date"] = *p.DueDate
	}
	return json.Marshal(fields)
}

// UnmarshalJSON is the inverse of MarshalJSON: an explicit null for
// due_date or project_id sets the corresponding Clear flag. Nulls for
// the other fields are treated as absent. Unknown keys are ignored.
func (p *UpdatePayload) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = UpdatePayload{}
	for key, raw := range fields {
		null := isNull(raw)
		var err error
		switch key {
		case "title":
			if !null {
				p.Title = new(string)
				err = json.Unmarshal(raw, p.Title)
			}
		case "description":
			if !null {
				p.Description = new(string)
				err = json.Unmarshal(raw, p.Description)
			}
		case "status":
			if !null {
				p.Status = new(Status)
				err = json.Unmarshal(raw, p.Status)
			}
		case "progress":
			if !null {
				p.Progress = new(int)
				err = json.Unmarshal(raw, p.Progress)
			}
		case "is_active":
			if !null {
				p.IsActive = new(bool)
				err = json.Unmarshal(raw, p.IsActive)
			}
		case "project_id":
			if null {
				p.ClearProject = true
			} else {
				p.ProjectID = new(int64)
				err = json.Unmarshal(raw, p.ProjectID)
			}
		case "due_date":
			if null {
				p.ClearDueDate = true
			} else {
				p.DueDate = new(string)
				err = json.Unmarshal(raw, p.DueDate)
			}
		}
		if err != nil {
			return fmt.Errorf("field %s: %w", key, err)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// CreateRequest is the body of POST /tasks.
type CreateRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description,omitempty"`
	ProjectID   *int64 `json:"project_id,omitempty" validate:"omitempty,gt=0"`
}

// NewCreateRequest builds a CreateRequest with the title and
// description trimmed. A nil or zero projectID means no project.
func NewCreateRequest(title, description string, projectID *int64) CreateRequest {
	request := CreateRequest{
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
	}
	if projectID != nil && *projectID != 0 {
		id := *projectID
		request.ProjectID = &id
	}
	return request
}

// Validate rejects requests with an empty (after trimming) title.
func (r CreateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrEmptyTitle
	}
	if err := validate.Struct(r); err != nil {
		return fmt.Errorf("create request: %w", describeValidation(err))
	}
	return nil
}

// describeValidation flattens validator errors into one readable
// error per invalid field, joined.
func describeValidation(err error) error {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return err
	}
	var errs []error
	for _, fieldError := range fieldErrors {
		if fieldError.Param() != "" {
			errs = append(errs, fmt.Errorf("%s fails %s=%s (got %v)",
				fieldError.Field(), fieldError.Tag(), fieldError.Param(), fieldError.Value()))
		} else {
			errs = append(errs, fmt.Errorf("%s fails %s", fieldError.Field(), fieldError.Tag()))
		}
	}
	return errors.Join(errs...)
}
