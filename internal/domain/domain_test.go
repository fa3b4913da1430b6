package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	got, changed := SanitizeName(`/ \ : * ? " < > |`)
	assert.True(t, changed)
	assert.Equal(t, "_ _ _ _ _ _ _ _ _", got)

	got, changed = SanitizeName("plain name")
	assert.False(t, changed)
	assert.Equal(t, "plain name", got)
}

func TestNewProjectValidate(t *testing.T) {
	require.NoError(t, NewProject{Name: "P", Type: ProjectTypeVector}.Validate())

	err := NewProject{Name: "", Type: ProjectTypeVector}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidation))

	err = NewProject{Name: "P", Type: ProjectType(9)}.Validate()
	assert.ErrorIs(t, err, ErrValidation)
}

func TestValidateFolderName(t *testing.T) {
	assert.NoError(t, ValidateFolderName("F"))
	assert.ErrorIs(t, ValidateFolderName(""), ErrValidation)
	assert.ErrorIs(t, ValidateFolderName("root"), ErrValidation)
}

func TestAttachmentValidate(t *testing.T) {
	assert.NoError(t, Attachment{Name: "a.jpg", URL: "https://example.com/a.jpg"}.Validate())
	assert.ErrorIs(t, Attachment{Name: "", URL: "https://example.com/a.jpg"}.Validate(), ErrValidation)
	assert.ErrorIs(t, Attachment{Name: "a", URL: "not a url"}.Validate(), ErrValidation)
}

func TestInviteValidate(t *testing.T) {
	assert.NoError(t, Invite{Email: "a@example.com"}.Validate())
	assert.ErrorIs(t, Invite{Email: "nope"}.Validate(), ErrValidation)
}

func TestParseEnums(t *testing.T) {
	pt, err := ParseProjectType("vector")
	require.NoError(t, err)
	assert.Equal(t, ProjectTypeVector, pt)

	st, err := ParseAnnotationStatus("QualityCheck")
	require.NoError(t, err)
	assert.Equal(t, StatusQualityCheck, st)

	_, err = ParseUserRole("owner")
	assert.ErrorIs(t, err, ErrValidation)

	q, err := ParseImageQuality("Original")
	require.NoError(t, err)
	assert.Equal(t, QualityOriginal, q)

	assert.Equal(t, []string{"NotStarted", "InProgress", "QualityCheck", "Returned", "Completed", "Skipped"}, AnnotationStatusTitles())
}

func TestPatchApply(t *testing.T) {
	p := Project{Name: "old", Description: "d"}
	ProjectPatch{Name: Ptr("new")}.Apply(&p)
	assert.Equal(t, "new", p.Name)
	assert.Equal(t, "d", p.Description)

	img := Image{AnnotationStatus: StatusNotStarted}
	patch := ImagePatch{AnnotationStatus: Ptr(StatusCompleted), IsPinned: Ptr(true)}
	patch.Apply(&img)
	assert.Equal(t, StatusCompleted, img.AnnotationStatus)
	assert.True(t, img.IsPinned)
	assert.True(t, ImagePatch{}.IsEmpty())
}

func TestErrorsMatchSentinels(t *testing.T) {
	var err error = &DuplicateNameError{Kind: "project", Name: "P", Count: 2}
	assert.ErrorIs(t, err, ErrDuplicateName)
	assert.NotErrorIs(t, err, ErrNotFound)

	err = &NotFoundError{Kind: "folder", Name: "F"}
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `folder "F" not found`, err.Error())
}

func TestAttachResult(t *testing.T) {
	r := AttachResult{Items: []AttachOutcome{
		{Name: "a", Outcome: OutcomeUploaded},
		{Name: "b", Outcome: OutcomeDuplicate, Reason: ReasonDuplicate},
		{Name: "c", Outcome: OutcomeFailed, Reason: ReasonLimitExceeded},
	}}
	assert.Equal(t, []string{"a"}, r.Uploaded())
	assert.Equal(t, []string{"b", "c"}, r.NotUploaded())
	assert.Equal(t, []string{"b"}, r.Duplicates())
	assert.Equal(t, []string{"c"}, r.Failed())
	assert.Equal(t, []string{}, AttachResult{}.Uploaded())
}

func TestAnnotationKey(t *testing.T) {
	assert.Equal(t, "1/2/3/a.jpg___objects.json", Image{Path: "1/2/3/a.jpg"}.AnnotationKey())
}
