package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annoctl/internal/domain"
	"annoctl/internal/logging"
	"annoctl/internal/response"
)

func TestSearchProjectsExact(t *testing.T) {
	projects := newProjects(
		domain.Project{ID: 1, Name: "cats"},
		domain.Project{ID: 2, Name: "cats-2"},
		domain.Project{ID: 3, Name: "dogs"},
	)

	resp := response.New[[]domain.Project]()
	NewSearchProjects(projects, "cats", false, resp).Execute(context.Background())
	assert.Len(t, resp.Data, 2)

	resp = response.New[[]domain.Project]()
	NewSearchProjects(projects, "cats", true, resp).Execute(context.Background())
	require.Len(t, resp.Data, 1)
	assert.Equal(t, 1, resp.Data[0].ID)

	resp = response.New[[]domain.Project]()
	NewSearchProjects(projects, "birds", true, resp).Execute(context.Background())
	assert.NotNil(t, resp.Data)
	assert.Empty(t, resp.Data)
}

func TestCreateProjectSanitizesAndSetsUp(t *testing.T) {
	projects := newProjects()
	res := newResources()
	setup := ProjectSetup{
		Settings: []domain.ProjectSetting{{Attribute: "Brightness", Value: 10}},
		Classes:  []domain.AnnotationClass{{Name: "car", Color: "#ff0000"}, {Name: "tree", Color: "#00ff00"}},
		Workflows: []domain.Workflow{
			{Step: 1, ClassName: "tree", Tool: 2},
			{Step: 2, ClassName: "ghost", Tool: 2},
		},
		Contributors: []domain.ProjectContributor{{UserID: "u-1", Role: domain.RoleQA}},
	}
	resp := response.New[domain.Project]()

	project := domain.Project{Name: "a/b", Type: domain.ProjectTypeVector}
	NewCreateProject(projects, res.factory, project, setup, logging.Discard(), resp).Execute(context.Background())

	assert.Equal(t, "a_b", resp.Data.Name)
	assert.NotZero(t, resp.Data.ID)
	require.Len(t, res.settings.saved, 1)
	require.Len(t, res.classes.items, 2)
	require.Len(t, res.workflows.saved, 1)
	assert.Equal(t, res.classes.items[1].ID, res.workflows.saved[0].ClassID)
	assert.Equal(t, []domain.ProjectContributor{{UserID: "u-1", Role: domain.RoleQA}}, res.contributors.shared)

	// the unknown workflow class is the only reported problem
	require.Len(t, resp.Errors, 1)
	assert.Contains(t, resp.Errors[0].Error(), "ghost")
}

func TestCreateProjectRejectsDuplicateName(t *testing.T) {
	projects := newProjects(domain.Project{ID: 1, Name: "P"})
	resp := response.New[domain.Project]()

	project := domain.Project{Name: "P", Type: domain.ProjectTypeVector}
	NewCreateProject(projects, newResources().factory, project, ProjectSetup{}, logging.Discard(), resp).Execute(context.Background())

	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrDuplicateName)
	assert.Empty(t, projects.inserts)
}

func TestCreateProjectValidatesType(t *testing.T) {
	resp := response.New[domain.Project]()
	NewCreateProject(newProjects(), newResources().factory, domain.Project{Name: "P"}, ProjectSetup{}, logging.Discard(), resp).Execute(context.Background())

	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrValidation)
}

func TestUpdateProjectRenames(t *testing.T) {
	p := domain.Project{ID: 1, Name: "old", Description: "d"}
	projects := newProjects(p, domain.Project{ID: 2, Name: "taken"})

	resp := response.New[domain.Project]()
	NewUpdateProject(projects, p, domain.ProjectPatch{Name: domain.Ptr("new")}, logging.Discard(), resp).Execute(context.Background())
	require.True(t, resp.OK(), resp.Err())
	assert.Equal(t, "new", resp.Data.Name)
	assert.Equal(t, "d", resp.Data.Description)

	resp = response.New[domain.Project]()
	NewUpdateProject(projects, resp.Data, domain.ProjectPatch{Name: domain.Ptr("taken")}, logging.Discard(), resp).Execute(context.Background())
	require.Len(t, resp.Errors, 1)
	assert.ErrorIs(t, resp.Errors[0], domain.ErrDuplicateName)
}

func TestUpdateProjectSanitizesSpecialCharacters(t *testing.T) {
	p := domain.Project{ID: 1, Name: "old"}
	projects := newProjects(p)
	resp := response.New[domain.Project]()

	patch := domain.ProjectPatch{Name: domain.Ptr(`/ \ : * ? " < > |`)}
	NewUpdateProject(projects, p, patch, logging.Discard(), resp).Execute(context.Background())

	require.True(t, resp.OK(), resp.Err())
	assert.Equal(t, "_ _ _ _ _ _ _ _ _", resp.Data.Name)
}

func TestGetProjectMetadataFillsWorkflowClassNames(t *testing.T) {
	res := newResources()
	res.classes.items = []domain.AnnotationClass{{ID: 4, Name: "car"}}
	res.workflows.saved = []domain.Workflow{{Step: 1, ClassID: 4}}
	resp := response.New[domain.ProjectMetadata]()

	opts := MetadataOptions{Workflow: true}
	NewGetProjectMetadata(domain.Project{ID: 1, Name: "P"}, res.factory(domain.Project{}), opts, resp).Execute(context.Background())

	require.True(t, resp.OK())
	require.Len(t, resp.Data.Workflows, 1)
	assert.Equal(t, "car", resp.Data.Workflows[0].ClassName)
	assert.Nil(t, resp.Data.AnnotationClasses)
	assert.Nil(t, resp.Data.Settings)
}

func TestCloneProjectCopiesSelectedResources(t *testing.T) {
	source := domain.Project{ID: 1, Name: "src", Description: "source", Type: domain.ProjectTypePixel}
	projects := newProjects(source)
	src, dst := newResources(), newResources()
	src.classes.items = []domain.AnnotationClass{{ID: 4, Name: "car"}}
	src.workflows.saved = []domain.Workflow{{Step: 1, ClassID: 4, Tool: 3}}
	src.settings.saved = []domain.ProjectSetting{{Attribute: "FrameRate", Value: 5}}
	factory := func(p domain.Project) ProjectResources {
		if p.ID == source.ID {
			return src.factory(p)
		}
		return dst.factory(p)
	}
	resp := response.New[domain.Project]()

	opts := MetadataOptions{Workflow: true}
	NewCloneProject(projects, factory, source, domain.Project{Name: "copy", Type: domain.ProjectTypeVector}, opts, logging.Discard(), resp).Execute(context.Background())

	require.True(t, resp.OK(), resp.Err())
	assert.Equal(t, "copy", resp.Data.Name)
	assert.Equal(t, domain.ProjectTypePixel, resp.Data.Type)
	assert.Equal(t, "source", resp.Data.Description)
	require.Len(t, dst.classes.items, 1)
	require.Len(t, dst.workflows.saved, 1)
	assert.Equal(t, dst.classes.items[0].ID, dst.workflows.saved[0].ClassID)
	assert.Empty(t, dst.settings.saved)
}

func TestDeleteProject(t *testing.T) {
	p := domain.Project{ID: 1, Name: "P"}
	projects := newProjects(p)
	resp := response.New[domain.Project]()

	NewDeleteProject(projects, p, resp).Execute(context.Background())

	require.True(t, resp.OK())
	assert.Empty(t, projects.items)
}
