package listing

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Validation errors
var (
	ErrEndsAtNotFuture = fmt.Errorf("auction end time must be in the future")
	ErrNothingToUpdate = fmt.Errorf("update must change at least one field")
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateCommand is the payload for creating a new listing.
type CreateCommand struct {
	Title       string    `json:"title" validate:"required,max=280"`
	Description string    `json:"description,omitempty" validate:"max=280"`
	Media       []Media   `json:"media,omitempty" validate:"max=8,dive"`
	Tags        []string  `json:"tags,omitempty" validate:"max=8,dive,min=1,max=24"`
	EndsAt      time.Time `json:"endsAt" validate:"required"`
}

// Validate checks the command before any network call is made.
func (c CreateCommand) Validate(now time.Time) error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid listing: %w", err)
	}
	if !c.EndsAt.After(now) {
		return ErrEndsAtNotFuture
	}
	return nil
}

// UpdateCommand is the payload for a partial listing update. Nil fields are
// left untouched upstream.
type UpdateCommand struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,max=280"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=280"`
	Media       []Media  `json:"media,omitempty" validate:"max=8,dive"`
	Tags        []string `json:"tags,omitempty" validate:"max=8,dive,min=1,max=24"`
}

// Validate checks the command before any network call is made.
func (c UpdateCommand) Validate() error {
	if c.Title == nil && c.Description == nil && c.Media == nil && c.Tags == nil {
		return ErrNothingToUpdate
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid listing update: %w", err)
	}
	return nil
}
