// Package parser decodes and validates per-post metadata files.
package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/shiori/internal/apperr"
	"github.com/starford/shiori/internal/models"
	"github.com/starford/shiori/internal/post"
)

// idPattern keeps a post id to a single path segment: it becomes a
// directory name under docs/ and part of the post URL.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Parse decodes one metadata file. Invalid JSON or a non-object document
// returns an error wrapping apperr.ErrInvalidMeta. Field values are coerced
// with the same fallbacks the list page uses.
func Parse(data []byte) (*models.Meta, error) {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrInvalidMeta, err)
	}
	raw, ok := doc.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: document is not an object", apperr.ErrInvalidMeta)
	}

	return &models.Meta{
		ID:          post.Field(raw, post.FieldID),
		Timestamp:   post.Field(raw, post.FieldTimestamp),
		Title:       post.Field(raw, post.FieldTitle),
		Summary:     post.Field(raw, post.FieldSummary),
		Tags:        post.NormalizeTags(raw[post.FieldTags]),
		CategoryLv1: post.Field(raw, post.FieldCategoryLv1),
		CategoryLv2: post.Field(raw, post.FieldCategoryLv2),
		PostPath:    post.NormalizePostPath(raw["post_path"]),
	}, nil
}

// ValidateForIndex checks the fields required for an index entry.
func ValidateForIndex(m *models.Meta) error {
	return wrapMissing(validation.ValidateStruct(m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.Timestamp, validation.Required),
		validation.Field(&m.Title, validation.Required),
		validation.Field(&m.PostPath, validation.Required),
	))
}

// ValidateForShortcut checks the fields required to place a redirect page
// and that the id is usable as a directory name.
func ValidateForShortcut(m *models.Meta) error {
	if err := wrapMissing(validation.ValidateStruct(m,
		validation.Field(&m.ID, validation.Required),
		validation.Field(&m.CategoryLv1, validation.Required),
		validation.Field(&m.CategoryLv2, validation.Required),
	)); err != nil {
		return err
	}
	return ValidateID(m.ID)
}

// ValidateID rejects ids that are not a single path segment of letters,
// digits, '.', '_' or '-' starting with a letter or digit.
func ValidateID(id string) error {
	err := validation.Validate(id,
		validation.Required,
		validation.Match(idPattern).Error("must be letters, digits, '.', '_' or '-'"),
	)
	if err != nil {
		return fmt.Errorf("%w: id %q: %s", apperr.ErrInvalidMeta, id, err.Error())
	}
	return nil
}

func wrapMissing(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) {
		return fmt.Errorf("%w: %s", apperr.ErrMissingFields, errs.Error())
	}
	return err
}
