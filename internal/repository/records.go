package repository

import (
	"encoding/json"
	"fmt"

	"annoctl/internal/domain"
)

// The *FromRecord functions map one backend JSON object onto an entity.
// Unknown fields are ignored and missing fields keep the defaults set here.

func ProjectFromRecord(raw json.RawMessage) (domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return domain.Project{}, fmt.Errorf("decode project: %w", err)
	}
	return p, nil
}

func FolderFromRecord(raw json.RawMessage) (domain.Folder, error) {
	var f domain.Folder
	if err := json.Unmarshal(raw, &f); err != nil {
		return domain.Folder{}, fmt.Errorf("decode folder: %w", err)
	}
	return f, nil
}

func ImageFromRecord(raw json.RawMessage) (domain.Image, error) {
	img := domain.Image{
		AnnotationStatus: domain.StatusNotStarted,
		UploadState:      domain.UploadStateBasic,
	}
	if err := json.Unmarshal(raw, &img); err != nil {
		return domain.Image{}, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

func AnnotationClassFromRecord(raw json.RawMessage) (domain.AnnotationClass, error) {
	c := domain.AnnotationClass{Type: "object"}
	if err := json.Unmarshal(raw, &c); err != nil {
		return domain.AnnotationClass{}, fmt.Errorf("decode annotation class: %w", err)
	}
	if c.AttributeGroups == nil {
		c.AttributeGroups = []domain.AttributeGroup{}
	}
	return c, nil
}

func ProjectSettingFromRecord(raw json.RawMessage) (domain.ProjectSetting, error) {
	var s domain.ProjectSetting
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.ProjectSetting{}, fmt.Errorf("decode project setting: %w", err)
	}
	return s, nil
}

func WorkflowFromRecord(raw json.RawMessage) (domain.Workflow, error) {
	var w domain.Workflow
	if err := json.Unmarshal(raw, &w); err != nil {
		return domain.Workflow{}, fmt.Errorf("decode workflow: %w", err)
	}
	return w, nil
}

func UserFromRecord(raw json.RawMessage) (domain.User, error) {
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("decode user: %w", err)
	}
	return u, nil
}

func TeamFromRecord(raw json.RawMessage) (domain.Team, error) {
	t := domain.Team{Users: []domain.User{}, PendingInvitations: []domain.Invitation{}}
	if err := json.Unmarshal(raw, &t); err != nil {
		return domain.Team{}, fmt.Errorf("decode team: %w", err)
	}
	return t, nil
}

func InvitationFromRecord(raw json.RawMessage) (domain.Invitation, error) {
	var inv domain.Invitation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return domain.Invitation{}, fmt.Errorf("decode invitation: %w", err)
	}
	return inv, nil
}

func UploadAuthFromRecord(raw json.RawMessage) (domain.UploadAuth, error) {
	var a domain.UploadAuth
	if err := json.Unmarshal(raw, &a); err != nil {
		return domain.UploadAuth{}, fmt.Errorf("decode upload auth: %w", err)
	}
	return a, nil
}

func ExportFromRecord(raw json.RawMessage) (domain.Export, error) {
	var e domain.Export
	if err := json.Unmarshal(raw, &e); err != nil {
		return domain.Export{}, fmt.Errorf("decode export: %w", err)
	}
	return e, nil
}
