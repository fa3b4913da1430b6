package domain

// ProjectPatch holds the project fields to overwrite. Nil means keep the current value.
type ProjectPatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (p ProjectPatch) IsEmpty() bool {
	return p.Name == nil && p.Description == nil
}

func (p ProjectPatch) Apply(project *Project) {
	if p.Name != nil {
		project.Name = *p.Name
	}
	if p.Description != nil {
		project.Description = *p.Description
	}
}

type FolderPatch struct {
	Name *string `json:"name,omitempty"`
}

func (p FolderPatch) Apply(folder *Folder) {
	if p.Name != nil {
		folder.Name = *p.Name
	}
}

type ImagePatch struct {
	AnnotationStatus *AnnotationStatus `json:"annotation_status,omitempty"`
	IsPinned         *bool             `json:"is_pinned,omitempty"`
}

func (p ImagePatch) IsEmpty() bool {
	return p.AnnotationStatus == nil && p.IsPinned == nil
}

func (p ImagePatch) Apply(image *Image) {
	if p.AnnotationStatus != nil {
		image.AnnotationStatus = *p.AnnotationStatus
	}
	if p.IsPinned != nil {
		image.IsPinned = *p.IsPinned
	}
}

// Ptr returns a pointer to v, for building patches inline.
func Ptr[T any](v T) *T { return &v }
