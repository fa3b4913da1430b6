package domain

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

const (
	MaxProjectNameLength = 255
	MaxFolderNameLength  = 80
)

const specialCharacters = `/\:*?"<>|`

var specialCharReplacer = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_", `"`, "_", "<", "_", ">", "_", "|", "_",
)

// SanitizeName replaces characters the platform rejects in project and folder names.
// The second result reports whether anything was replaced.
func SanitizeName(name string) (string, bool) {
	if !strings.ContainsAny(name, specialCharacters) {
		return name, false
	}
	return specialCharReplacer.Replace(name), true
}

type NewProject struct {
	Name        string
	Description string
	Type        ProjectType
}

func (p NewProject) Validate() error {
	return wrapValidation(validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, MaxProjectNameLength)),
		validation.Field(&p.Type, validation.Required, validation.In(
			ProjectTypeVector, ProjectTypePixel, ProjectTypeVideo, ProjectTypeDocument,
		)),
	))
}

func ValidateFolderName(name string) error {
	return wrapValidation(validation.Validate(name,
		validation.Required.Error("folder name is required"),
		validation.Length(1, MaxFolderNameLength),
		validation.NotIn(RootFolderName).Error("folder name root is reserved"),
	))
}

// Attachment is one external-URL record to register as an image.
type Attachment struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (a Attachment) Validate() error {
	return wrapValidation(validation.ValidateStruct(&a,
		validation.Field(&a.Name, validation.Required),
		validation.Field(&a.URL, validation.Required, is.URL),
	))
}

// UploadOptions apply to every image of one upload or attach call. Zero fields
// leave the platform defaults.
type UploadOptions struct {
	AnnotationStatus AnnotationStatus
	ImageQuality     ImageQuality
}

// ImageQualitySetting is the project setting that controls editor image quality.
const ImageQualitySetting = "ImageQuality"

func (o UploadOptions) Validate() error {
	return wrapValidation(validation.ValidateStruct(&o,
		validation.Field(&o.AnnotationStatus, validation.In(
			StatusNotStarted, StatusInProgress, StatusQualityCheck, StatusReturned, StatusCompleted, StatusSkipped,
		).Error("unknown annotation status")),
		validation.Field(&o.ImageQuality, validation.In(QualityCompressed, QualityOriginal).
			Error("image quality available choices are compressed, original")),
	))
}

type Invite struct {
	Email string
	Admin bool
}

func (i Invite) Validate() error {
	return wrapValidation(validation.ValidateStruct(&i,
		validation.Field(&i.Email, validation.Required, is.EmailFormat),
	))
}

func wrapValidation(err error) error {
	if err == nil {
		return nil
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &ValidationError{Message: err.Error()}
}
