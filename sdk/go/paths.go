package annotatesdk

import (
	"strings"

	"annoctl/internal/domain"
)

// SplitProjectPath splits "project/folder" into its parts. A bare project name
// addresses the root folder and yields an empty folder name.
func SplitProjectPath(path string) (project, folder string, err error) {
	path = strings.Trim(path, "/")
	project, folder, _ = strings.Cut(path, "/")
	if project == "" {
		return "", "", &domain.ValidationError{Message: "project path is empty"}
	}
	if strings.Contains(folder, "/") {
		return "", "", &domain.ValidationError{Message: "folders are one level deep: " + path}
	}
	return project, folder, nil
}
