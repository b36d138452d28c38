package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() CreateInput {
	return CreateInput{
		Title:       "Spring Fest",
		Description: "Annual open-air festival on the main lawn.",
		Category:    "Music",
		Date:        "2026-04-18",
		Time:        "18:00",
		Location:    "Main Lawn",
		HostName:    "Music Society",
		Contact:     "9876543210",
		Email:       "society@campus.edu",
		Images: []string{
			"https://cdn.example.com/a.jpg",
			"https://cdn.example.com/b.jpg",
			"https://cdn.example.com/c.jpg",
			"https://cdn.example.com/d.jpg",
		},
	}
}

func TestValidateAccepted(t *testing.T) {
	errs := validInput().normalized().Validate()
	require.Empty(t, errs)
}

func TestValidateReportsAllViolations(t *testing.T) {
	in := CreateInput{
		Date:    "18-04-2026",
		Contact: "12345",
		Email:   "not-an-email",
		Images:  []string{"https://cdn.example.com/a.jpg"},
	}

	errs := in.normalized().Validate()

	assert.Equal(t, "Title is required", errs["title"])
	assert.Equal(t, "Description is required", errs["description"])
	assert.Equal(t, "Category is required", errs["category"])
	assert.Equal(t, "Enter date as YYYY-MM-DD", errs["date"])
	assert.Equal(t, "Time is required", errs["time"])
	assert.Equal(t, "Enter valid 10-digit phone number", errs["contact"])
	assert.Equal(t, "Enter valid email", errs["email"])
	assert.Equal(t, "At least 4 images are required", errs["images"])
}

func TestValidateContactDigitsOnly(t *testing.T) {
	// Ten characters is not enough; sign and decimal forms must be
	// rejected even when the length matches.
	for _, contact := range []string{"+919876543", "-123456789", "12345.6789"} {
		in := validInput()
		in.Contact = contact
		errs := in.normalized().Validate()
		require.Equal(t, "Enter valid 10-digit phone number", errs["contact"], "contact %q", contact)
	}
}

func TestValidateImageCount(t *testing.T) {
	in := validInput()
	in.Images = in.Images[:3]
	errs := in.normalized().Validate()
	require.Equal(t, "At least 4 images are required", errs["images"])

	in = validInput()
	in.Images = nil
	errs = in.normalized().Validate()
	require.Equal(t, "At least 4 images are required", errs["images"])
}

func TestValidateImageURLs(t *testing.T) {
	in := validInput()
	in.Images[2] = "not a url"
	errs := in.normalized().Validate()
	require.Equal(t, "Image entries must be valid URLs", errs["images"])
}

func TestValidateWhitespaceOnlyRequiredField(t *testing.T) {
	in := validInput()
	in.Title = "   "
	errs := in.normalized().Validate()
	require.Equal(t, "Title is required", errs["title"])
}

func TestValidateOptionalFieldsOmitted(t *testing.T) {
	in := validInput()
	in.Date = ""
	in.Contact = ""
	in.Location = ""
	in.HostName = ""
	errs := in.normalized().Validate()
	require.Empty(t, errs)
}

func TestNormalizedStripsMarkup(t *testing.T) {
	in := validInput()
	in.Title = `<script>alert(1)</script>Career Fair`
	in.Description = `<b>Keep bold</b><script>alert(1)</script>`

	out := in.normalized()
	assert.Equal(t, "Career Fair", out.Title)
	assert.NotContains(t, out.Description, "<script>")
	assert.Contains(t, out.Description, "<b>Keep bold</b>")
}

func TestValidationErrorsError(t *testing.T) {
	errs := ValidationErrors{"title": "Title is required", "email": "Enter valid email"}
	// Deterministic field order regardless of map iteration.
	require.Equal(t, "email: Enter valid email; title: Title is required", errs.Error())
}
