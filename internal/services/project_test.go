package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volunteerhub/backend/internal/models"
	"github.com/volunteerhub/backend/pkg/response"
)

func TestProjectService_CreateAndList(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	owner, ngo := f.approvedNGO(t)
	pendingOwner := f.user(t, models.RoleNGO)
	f.ngo(t, pendingOwner, models.NGOStatusPending)

	project, err := svc.Create(&CreateProjectRequest{
		Title:       "Школьный сад",
		Description: "Разбили сад у школы №5",
		Images:      []string{"https://img.example/1.jpg"},
	}, principalOf(owner))
	require.NoError(t, err)
	assert.Equal(t, ngo.ID, project.NGOID)

	_, err = svc.Create(&CreateProjectRequest{Title: "Скрытый", Description: "Проект ждёт модерации"}, principalOf(pendingOwner))
	require.NoError(t, err)

	projects, err := svc.List(&ProjectListRequest{})
	require.NoError(t, err)
	require.Len(t, projects, 1, "projects of unapproved NGOs stay hidden")
	require.NotNil(t, projects[0].NGO)
	assert.Equal(t, ngo.BrandName, projects[0].NGO.BrandName)

	projects, err = svc.List(&ProjectListRequest{NGOID: ngo.ID + 100})
	require.NoError(t, err)
	assert.Empty(t, projects)
}

func TestProjectService_Create_Rules(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	owner, _ := f.approvedNGO(t)

	_, err := svc.Create(&CreateProjectRequest{Title: "Проект", Description: "Описание проекта"}, principalOf(f.user(t, models.RoleVolunteer)))
	requireAppError(t, err, response.ErrForbidden)

	_, err = svc.Create(&CreateProjectRequest{Title: "Проект", Description: "Описание проекта", Images: []string{"not a url"}}, principalOf(owner))
	requireAppError(t, err, response.ErrValidation)
}

func TestProjectService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewProjectService(f.db)
	owner, _ := f.approvedNGO(t)
	project, err := svc.Create(&CreateProjectRequest{Title: "Проект", Description: "Описание проекта"}, principalOf(owner))
	require.NoError(t, err)

	other, _ := f.approvedNGO(t)
	requireAppError(t, svc.Delete(project.ID, principalOf(other)), response.ErrForbidden)
	require.NoError(t, svc.Delete(project.ID, principalOf(owner)))
	requireAppError(t, svc.Delete(project.ID, principalOf(owner)), response.ErrNotFound)
}
