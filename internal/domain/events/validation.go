package events

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/campusconnect/server/internal/sanitize"
)

// MinImages is the number of hosted image URLs a submission must carry.
// Enforced at creation only; the set is immutable afterwards.
const MinImages = 4

const dateLayout = "2006-01-02"

var validate = validator.New(validator.WithRequiredStructEnabled())

// CreateInput is the request body for event submission. Image upload
// happens before submission; Images carries already-hosted URLs.
type CreateInput struct {
	Title         string   `json:"title" validate:"required"`
	Description   string   `json:"description" validate:"required"`
	Category      string   `json:"category" validate:"required"`
	SubCategories []string `json:"subCategories"`
	Date          string   `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Time          string   `json:"time" validate:"required"`
	Location      string   `json:"location"`
	HostName      string   `json:"hostName"`
	Contact       string   `json:"contact" validate:"omitempty,len=10,number"`
	Email         string   `json:"email" validate:"required,email"`
	Images        []string `json:"images" validate:"required,min=4,dive,required,url"`
}

var fieldMessages = map[string]string{
	"title.required":       "Title is required",
	"description.required": "Description is required",
	"category.required":    "Category is required",
	"date.datetime":        "Enter date as YYYY-MM-DD",
	"time.required":        "Time is required",
	"contact.len":          "Enter valid 10-digit phone number",
	"contact.number":       "Enter valid 10-digit phone number",
	"email.required":       "Email is required",
	"email.email":          "Enter valid email",
	"images.required":      "At least 4 images are required",
	"images.min":           "At least 4 images are required",
	"images.url":           "Image entries must be valid URLs",
}

// normalized trims and sanitizes user-supplied text ahead of validation
// so whitespace-only required fields fail and stored text is clean.
func (in CreateInput) normalized() CreateInput {
	out := in
	out.Title = sanitize.Text(strings.TrimSpace(in.Title))
	out.Description = sanitize.HTML(strings.TrimSpace(in.Description))
	out.Category = sanitize.Text(strings.TrimSpace(in.Category))
	out.SubCategories = sanitize.TextSlice(trimSlice(in.SubCategories))
	out.Date = strings.TrimSpace(in.Date)
	out.Time = strings.TrimSpace(in.Time)
	out.Location = sanitize.Text(strings.TrimSpace(in.Location))
	out.HostName = sanitize.Text(strings.TrimSpace(in.HostName))
	out.Contact = strings.TrimSpace(in.Contact)
	out.Email = strings.TrimSpace(in.Email)
	out.Images = trimSlice(in.Images)
	return out
}

// Validate reports every violation at once keyed by the JSON field name.
func (in CreateInput) Validate() ValidationErrors {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}

	invalid, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{"input": "invalid input"}
	}

	errs := make(ValidationErrors, len(invalid))
	for _, fieldErr := range invalid {
		field := jsonFieldName(fieldErr.Field())
		if _, seen := errs[field]; seen {
			continue
		}
		if msg, ok := fieldMessages[field+"."+fieldErr.Tag()]; ok {
			errs[field] = msg
			continue
		}
		errs[field] = "Invalid " + field
	}
	return errs
}

func (in CreateInput) date() (*time.Time, error) {
	if in.Date == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// jsonFieldName lowers the leading rune of the struct field name, which
// matches the json tags on CreateInput. Indexed slice entries like
// "Images[2]" collapse onto their parent field.
func jsonFieldName(structField string) string {
	if idx := strings.IndexByte(structField, '['); idx > 0 {
		structField = structField[:idx]
	}
	if structField == "" {
		return structField
	}
	return strings.ToLower(structField[:1]) + structField[1:]
}

func trimSlice(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		item := strings.TrimSpace(value)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}
