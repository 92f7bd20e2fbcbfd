package content

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dmitrymomot/inkwell/pkg/sanitizer"
)

const maxTitleLength = 255

// CreateArticleInput is the body of an article create request.
type CreateArticleInput struct {
	Title      string `json:"title"`
	Body       string `json:"body"`
	Status     Status `json:"status"`
	CategoryID string `json:"category_id"`
}

// UpdateArticleInput is a partial update. Nil fields are left unchanged;
// present ones are validated like on create.
type UpdateArticleInput struct {
	Title      *string `json:"title"`
	Body       *string `json:"body"`
	Status     *Status `json:"status"`
	CategoryID *string `json:"category_id"`
}

// CategoryInput is the body of a category create or rename request.
type CategoryInput struct {
	Name string `json:"name"`
}

func requiredMessage(field string) string {
	return fmt.Sprintf("The %s field is required.", field)
}

func tooLongMessage(field string, n int) string {
	return fmt.Sprintf("The %s field must not be greater than %d characters.", field, n)
}

// checkText sanitizes a short text field and validates it as required
// with a length cap. It returns the cleaned value.
func checkText(v *ValidationError, field, label, raw string) string {
	clean := sanitizer.Text(raw)
	switch {
	case clean == "":
		v.add(field, requiredMessage(label))
	case utf8.RuneCountInString(clean) > maxTitleLength:
		v.add(field, tooLongMessage(label, maxTitleLength))
	}
	return clean
}

func checkBody(v *ValidationError, raw string) {
	if strings.TrimSpace(raw) == "" {
		v.add("body", requiredMessage("body"))
	}
}

func checkStatus(v *ValidationError, s Status) {
	switch {
	case s == "":
		v.add("status", requiredMessage("status"))
	case !s.Valid():
		v.add("status", "The selected status is invalid.")
	}
}

// parseCategoryID validates the category_id format. Existence is checked
// by the service.
func parseCategoryID(v *ValidationError, raw string) (uuid.UUID, bool) {
	if strings.TrimSpace(raw) == "" {
		v.add("category_id", requiredMessage("category id"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		v.add("category_id", invalidCategoryMessage)
		return uuid.Nil, false
	}
	return id, true
}

const invalidCategoryMessage = "The selected category id is invalid."
