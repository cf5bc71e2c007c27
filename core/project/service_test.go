package project_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/project"
	"github.com/trezcool/shule/core/user"
	inmemdb "github.com/trezcool/shule/storage/database/inmem"
)

type env struct {
	svc     *project.Service
	users   user.Repository
	classes classroom.ClassRepository

	class   classroom.Class
	group   project.Group
	student user.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	db := inmemdb.Open()
	users := inmemdb.NewUserRepository(db)
	classes := inmemdb.NewClassRepository(db)
	repo := inmemdb.NewProjectRepository(db)
	svc := project.NewService(repo, users, classes)

	teacher, err := users.CreateUser(ctx, user.User{FirstName: "T", LastName: "T", Email: "t@test.test", Role: user.RoleTeacher})
	require.NoError(t, err)
	student, err := users.CreateUser(ctx, user.User{FirstName: "S", LastName: "S", Email: "s@test.test", Role: user.RoleStudent})
	require.NoError(t, err)

	cls, err := classes.CreateClass(ctx, classroom.Class{Name: "Algebra", Code: "AAAAAA", TeacherID: teacher.ID, CreatedAt: now})
	require.NoError(t, err)
	_, err = classes.AddMember(ctx, classroom.Membership{ClassID: cls.ID, UserID: student.ID, Role: user.RoleStudent, JoinedAt: now})
	require.NoError(t, err)

	prj, err := svc.CreateProject(ctx, project.NewProject{ClassID: cls.ID, Name: "Term project"})
	require.NoError(t, err)
	grp, err := svc.CreateGroup(ctx, project.NewGroup{ProjectID: prj.ID, Name: "Group 1"})
	require.NoError(t, err)

	return &env{svc: svc, users: users, classes: classes, class: cls, group: grp, student: student}
}

func TestService_AddMember(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	t.Run("enrolled student added", func(t *testing.T) {
		mbr, err := e.svc.AddMember(ctx, e.group.ID, e.student.ID)
		require.NoError(t, err)
		assert.Equal(t, e.student.ID, mbr.UserID)
		assert.False(t, mbr.IsGroupCoordinator)
	})

	t.Run("duplicate membership is a conflict", func(t *testing.T) {
		_, err := e.svc.AddMember(ctx, e.group.ID, e.student.ID)
		assert.True(t, core.IsConflict(err))
	})

	t.Run("non-student rejected", func(t *testing.T) {
		teacher, err := e.users.GetUserByEmail(ctx, "t@test.test")
		require.NoError(t, err)
		_, err = e.svc.AddMember(ctx, e.group.ID, teacher.ID)
		assert.Equal(t, project.ErrNotClassStudent, err)
	})

	t.Run("non-enrolled student rejected", func(t *testing.T) {
		other, err := e.users.CreateUser(ctx, user.User{FirstName: "O", LastName: "O", Email: "o@test.test", Role: user.RoleStudent})
		require.NoError(t, err)
		_, err = e.svc.AddMember(ctx, e.group.ID, other.ID)
		assert.Equal(t, project.ErrNotClassStudent, err)
	})

	t.Run("unknown group", func(t *testing.T) {
		_, err := e.svc.AddMember(ctx, 999, e.student.ID)
		assert.Equal(t, project.ErrGroupNotFound, err)
	})
}

func TestService_AppointLeader(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddMember(ctx, e.group.ID, e.student.ID)
	require.NoError(t, err)

	t.Run("member becomes leader", func(t *testing.T) {
		mbr, err := e.svc.AppointLeader(ctx, e.group.ID, e.student.ID)
		require.NoError(t, err)
		assert.True(t, mbr.IsGroupCoordinator)
	})

	t.Run("non-member cannot lead", func(t *testing.T) {
		_, err := e.svc.AppointLeader(ctx, e.group.ID, 999)
		assert.Equal(t, project.ErrGroupMemberNotFound, err)
	})
}

func TestService_QueryGroupsByProject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.AddMember(ctx, e.group.ID, e.student.ID)
	require.NoError(t, err)

	prjs, err := e.svc.QueryProjectsByClass(ctx, e.class.ID)
	require.NoError(t, err)
	require.Len(t, prjs, 1)

	details, err := e.svc.QueryGroupsByProject(ctx, prjs[0].ID)
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, e.group.ID, details[0].ID)
	require.Len(t, details[0].Members, 1)
	assert.Equal(t, e.student.ID, details[0].Members[0].UserID)
}
