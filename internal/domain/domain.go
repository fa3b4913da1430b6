package domain

import "fmt"

type Project struct {
	ID          int         `json:"id"`
	TeamID      int         `json:"team_id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        ProjectType `json:"type"`
	Status      int         `json:"status"`
	CreatedAt   string      `json:"created_at,omitempty" format:"date-time"`
	UpdatedAt   string      `json:"updated_at,omitempty" format:"date-time"`
}

// RootFolderName is the implicit folder every project owns.
const RootFolderName = "root"

type Folder struct {
	ID        int    `json:"id"`
	TeamID    int    `json:"team_id"`
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
	Status    int    `json:"status"`
	CreatedAt string `json:"created_at,omitempty" format:"date-time"`
	UpdatedAt string `json:"updated_at,omitempty" format:"date-time"`
}

func (f Folder) IsRoot() bool { return f.Name == RootFolderName }

// FolderPath is the storage prefix of a folder's image objects.
func FolderPath(f Folder) string {
	return fmt.Sprintf("%d/%d/%d", f.TeamID, f.ProjectID, f.ID)
}

type ImageMeta struct {
	Width  int `json:"width,omitempty"`
	Height int `json:"height,omitempty"`
}

type Image struct {
	ID               int              `json:"id"`
	TeamID           int              `json:"team_id"`
	ProjectID        int              `json:"project_id"`
	FolderID         int              `json:"folder_id"`
	Name             string           `json:"name"`
	Path             string           `json:"path"`
	AnnotationStatus AnnotationStatus `json:"annotation_status"`
	UploadState      UploadState      `json:"upload_state"`
	Quality          ImageQuality     `json:"quality,omitempty"`
	IsPinned         bool             `json:"is_pinned"`
	Meta             ImageMeta        `json:"meta"`
	CreatedAt        string           `json:"created_at,omitempty" format:"date-time"`
	UpdatedAt        string           `json:"updated_at,omitempty" format:"date-time"`
}

// AnnotationKey is the object-storage key of the image's annotation JSON.
func (i Image) AnnotationKey() string {
	return i.Path + "___objects.json"
}

// PreAnnotationKey is where pre-annotations for the image are stored.
func (i Image) PreAnnotationKey() string {
	return i.Path + "___pre_objects.json"
}

type User struct {
	ID        string   `json:"id"`
	Email     string   `json:"email"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Role      UserRole `json:"user_role"`
}

type Invitation struct {
	Email string   `json:"email"`
	Token string   `json:"token"`
	Role  UserRole `json:"user_role"`
}

type Team struct {
	ID                 int          `json:"id"`
	Name               string       `json:"name"`
	Description        string       `json:"description"`
	Users              []User       `json:"users"`
	PendingInvitations []Invitation `json:"pending_invitations"`
}

type Attribute struct {
	ID      int    `json:"id"`
	GroupID int    `json:"group_id"`
	Name    string `json:"name"`
}

type AttributeGroup struct {
	ID            int         `json:"id"`
	ClassID       int         `json:"class_id"`
	Name          string      `json:"name"`
	IsMultiselect bool        `json:"is_multiselect"`
	Attributes    []Attribute `json:"attributes"`
}

type AnnotationClass struct {
	ID              int              `json:"id"`
	ProjectID       int              `json:"project_id"`
	Name            string           `json:"name"`
	Color           string           `json:"color"`
	Type            string           `json:"type"`
	AttributeGroups []AttributeGroup `json:"attribute_groups"`
}

// ProjectSetting is a single attribute/value pair of a project's settings list.
type ProjectSetting struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	Attribute string `json:"attribute"`
	Value     any    `json:"value"`
}

type Workflow struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	Step      int    `json:"step"`
	ClassID   int    `json:"class_id"`
	ClassName string `json:"class_name,omitempty"`
	Tool      int    `json:"tool"`
}

// ProjectContributor is a user to share a newly created project with.
type ProjectContributor struct {
	UserID string   `json:"user_id"`
	Role   UserRole `json:"user_role"`
}

type ProjectMetadata struct {
	Project           Project           `json:"project"`
	Settings          []ProjectSetting  `json:"settings,omitempty"`
	Workflows         []Workflow        `json:"workflows,omitempty"`
	AnnotationClasses []AnnotationClass `json:"annotation_classes,omitempty"`
	Contributors      []User            `json:"contributors,omitempty"`
}

// UploadAuth is a temporary object-storage credential set issued per upload session.
type UploadAuth struct {
	AccessKeyID         string `json:"accessKeyId"`
	SecretAccessKey     string `json:"secretAccessKey"`
	SessionToken        string `json:"sessionToken"`
	Region              string `json:"region"`
	Bucket              string `json:"bucket"`
	FilePath            string `json:"filePath"`
	AvailableImageCount int    `json:"availableImageCount"`
}

type Export struct {
	ID                 int                `json:"id"`
	ProjectID          int                `json:"project_id"`
	Name               string             `json:"name"`
	Status             int                `json:"status"`
	Folders            []string           `json:"folders"`
	AnnotationStatuses []AnnotationStatus `json:"annotation_statuses"`
	IncludeFuse        bool               `json:"include_fuse"`
	OnlyPinned         bool               `json:"only_pinned"`
	CreatedAt          string             `json:"created_at,omitempty" format:"date-time"`
}

// ImageSource is raw image content to be uploaded to object storage.
type ImageSource struct {
	Name string
	Data []byte
	Meta ImageMeta
}

// ImageUpload describes an object already in storage that should be registered as an image.
type ImageUpload struct {
	Name             string           `json:"name"`
	Path             string           `json:"path"`
	Meta             ImageMeta        `json:"meta"`
	AnnotationStatus AnnotationStatus `json:"annotation_status,omitempty"`
}

type DownloadedImage struct {
	Name    string       `json:"name"`
	Variant ImageVariant `json:"variant"`
	Data    []byte       `json:"-"`
}

// AnnotationFile is one image's annotation JSON in the platform's native schema.
type AnnotationFile struct {
	ImageName string
	Data      []byte
}

type AnnotationUploadResult struct {
	Uploaded      []string `json:"uploaded"`
	Failed        []string `json:"failed"`
	MissingImages []string `json:"missing_images"`
}
