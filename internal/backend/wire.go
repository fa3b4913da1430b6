package backend

import "annoctl/internal/domain"

// Request and response bodies shared by Client and the local emulator.

type CreateProjectRequest struct {
	TeamID      int                `json:"team_id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Type        domain.ProjectType `json:"type"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type SettingInput struct {
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

type SettingsRequest struct {
	Settings []SettingInput `json:"settings,omitempty"`
}

type WorkflowInput struct {
	Step    int `json:"step"`
	ClassID int `json:"class_id"`
	Tool    int `json:"tool"`
}

type WorkflowsRequest struct {
	Steps []WorkflowInput `json:"steps,omitempty"`
}

type ShareProjectRequest struct {
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"user_role"`
}

type CreateFolderRequest struct {
	TeamID    int    `json:"team_id"`
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
}

type UpdateFolderRequest struct {
	Name string `json:"name"`
}

type DeleteFoldersRequest struct {
	TeamID    int   `json:"team_id"`
	ProjectID int   `json:"project_id"`
	FolderIDs []int `json:"folder_ids,omitempty"`
}

type ImageNamesRequest struct {
	TeamID    int      `json:"team_id"`
	ProjectID int      `json:"project_id"`
	FolderID  int      `json:"folder_id"`
	Names     []string `json:"names,omitempty"`
}

type UpdateImageRequest struct {
	AnnotationStatus domain.AnnotationStatus `json:"annotation_status"`
	IsPinned         bool                    `json:"is_pinned"`
}

type DuplicatesResponse struct {
	Names []string `json:"names"`
}

type AttachFilesRequest struct {
	TeamID      int                  `json:"team_id"`
	ProjectID   int                  `json:"project_id"`
	FolderID    int                  `json:"folder_id"`
	UploadState domain.UploadState   `json:"upload_state"`
	Files       []domain.ImageUpload `json:"files,omitempty"`
}

// AttachFilesResponse lists which of the submitted names were registered.
type AttachFilesResponse struct {
	Attached []string `json:"attached"`
	Skipped  []string `json:"skipped"`
}

type DownloadURLResponse struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
}

type AttributeInput struct {
	Name string `json:"name"`
}

type AttributeGroupInput struct {
	Name          string           `json:"name"`
	IsMultiselect bool             `json:"is_multiselect"`
	Attributes    []AttributeInput `json:"attributes,omitempty"`
}

type ClassInput struct {
	Name            string                `json:"name"`
	Color           string                `json:"color,omitempty"`
	Type            string                `json:"type,omitempty"`
	AttributeGroups []AttributeGroupInput `json:"attribute_groups,omitempty"`
}

type CreateClassesRequest struct {
	TeamID    int          `json:"team_id"`
	ProjectID int          `json:"project_id"`
	Classes   []ClassInput `json:"classes,omitempty"`
}

type PrepareExportRequest struct {
	TeamID             int                       `json:"team_id"`
	ProjectID          int                       `json:"project_id"`
	Folders            []string                  `json:"folders,omitempty"`
	AnnotationStatuses []domain.AnnotationStatus `json:"annotation_statuses,omitempty"`
	IncludeFuse        bool                      `json:"include_fuse"`
	OnlyPinned         bool                      `json:"only_pinned"`
}

type InviteRequest struct {
	Email string          `json:"email"`
	Role  domain.UserRole `json:"user_role"`
}

// ClassInputFrom converts a class entity to its creation payload, dropping server-assigned ids.
func ClassInputFrom(c domain.AnnotationClass) ClassInput {
	in := ClassInput{Name: c.Name, Color: c.Color, Type: c.Type}
	for _, g := range c.AttributeGroups {
		gi := AttributeGroupInput{Name: g.Name, IsMultiselect: g.IsMultiselect}
		for _, a := range g.Attributes {
			gi.Attributes = append(gi.Attributes, AttributeInput{Name: a.Name})
		}
		in.AttributeGroups = append(in.AttributeGroups, gi)
	}
	return in
}
