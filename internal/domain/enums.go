package domain

import (
	"fmt"
	"sort"
	"strings"
)

type ProjectType int

const (
	ProjectTypeVector   ProjectType = 1
	ProjectTypePixel    ProjectType = 2
	ProjectTypeVideo    ProjectType = 3
	ProjectTypeDocument ProjectType = 4
)

var projectTypeTitles = map[ProjectType]string{
	ProjectTypeVector:   "Vector",
	ProjectTypePixel:    "Pixel",
	ProjectTypeVideo:    "Video",
	ProjectTypeDocument: "Document",
}

func (t ProjectType) String() string {
	if s, ok := projectTypeTitles[t]; ok {
		return s
	}
	return fmt.Sprintf("ProjectType(%d)", int(t))
}

// ParseProjectType accepts a case-insensitive title such as "vector".
func ParseProjectType(s string) (ProjectType, error) {
	for t, title := range projectTypeTitles {
		if strings.EqualFold(title, strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return 0, &ValidationError{Message: fmt.Sprintf("available project types are %s", strings.Join(titles(projectTypeTitles), ", "))}
}

type AnnotationStatus int

const (
	StatusNotStarted   AnnotationStatus = 1
	StatusInProgress   AnnotationStatus = 2
	StatusQualityCheck AnnotationStatus = 3
	StatusReturned     AnnotationStatus = 4
	StatusCompleted    AnnotationStatus = 5
	StatusSkipped      AnnotationStatus = 6
)

var annotationStatusTitles = map[AnnotationStatus]string{
	StatusNotStarted:   "NotStarted",
	StatusInProgress:   "InProgress",
	StatusQualityCheck: "QualityCheck",
	StatusReturned:     "Returned",
	StatusCompleted:    "Completed",
	StatusSkipped:      "Skipped",
}

func (s AnnotationStatus) String() string {
	if t, ok := annotationStatusTitles[s]; ok {
		return t
	}
	return fmt.Sprintf("AnnotationStatus(%d)", int(s))
}

func (s AnnotationStatus) Valid() bool {
	_, ok := annotationStatusTitles[s]
	return ok
}

func ParseAnnotationStatus(s string) (AnnotationStatus, error) {
	for st, title := range annotationStatusTitles {
		if strings.EqualFold(title, strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return 0, &ValidationError{Message: fmt.Sprintf("available statuses are %s", strings.Join(titles(annotationStatusTitles), ", "))}
}

// AnnotationStatusTitles lists every status title in status order.
func AnnotationStatusTitles() []string {
	out := make([]string, 0, len(annotationStatusTitles))
	for s := StatusNotStarted; s <= StatusSkipped; s++ {
		out = append(out, annotationStatusTitles[s])
	}
	return out
}

type UserRole int

const (
	RoleAdmin     UserRole = 2
	RoleAnnotator UserRole = 3
	RoleQA        UserRole = 4
	RoleCustomer  UserRole = 5
	RoleViewer    UserRole = 6
)

var userRoleTitles = map[UserRole]string{
	RoleAdmin:     "Admin",
	RoleAnnotator: "Annotator",
	RoleQA:        "QA",
	RoleCustomer:  "Customer",
	RoleViewer:    "Viewer",
}

func (r UserRole) String() string {
	if t, ok := userRoleTitles[r]; ok {
		return t
	}
	return fmt.Sprintf("UserRole(%d)", int(r))
}

func ParseUserRole(s string) (UserRole, error) {
	for r, title := range userRoleTitles {
		if strings.EqualFold(title, strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return 0, &ValidationError{Message: fmt.Sprintf("available roles are %s", strings.Join(titles(userRoleTitles), ", "))}
}

type UploadState int

const (
	UploadStateInitial  UploadState = 1
	UploadStateBasic    UploadState = 2
	UploadStateExternal UploadState = 3
)

type ImageQuality string

const (
	QualityCompressed ImageQuality = "compressed"
	QualityOriginal   ImageQuality = "original"
)

func ParseImageQuality(s string) (ImageQuality, error) {
	switch q := ImageQuality(strings.ToLower(strings.TrimSpace(s))); q {
	case QualityCompressed, QualityOriginal:
		return q, nil
	}
	return "", &ValidationError{Message: "image quality available choices are compressed, original"}
}

type ImageVariant string

const (
	VariantOriginal ImageVariant = "original"
	VariantLores    ImageVariant = "lores"
)

func titles[K comparable](m map[K]string) []string {
	out := make([]string, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
