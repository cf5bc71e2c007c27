package classroom

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

// fakeClassRepo keeps classes and memberships in slices; CreateClass enforces
// join-code uniqueness like the store does.
type fakeClassRepo struct {
	classes     []Class
	memberships []Membership
	pk          int
}

var _ ClassRepository = (*fakeClassRepo)(nil)

func (r *fakeClassRepo) CreateClass(ctx context.Context, cls Class) (Class, error) {
	for _, c := range r.classes {
		if c.Code == cls.Code {
			return Class{}, ErrCodeExists
		}
	}
	r.pk++
	cls.ID = r.pk
	r.classes = append(r.classes, cls)
	return cls, nil
}

func (r *fakeClassRepo) GetClassByID(ctx context.Context, id int) (Class, error) {
	for _, c := range r.classes {
		if c.ID == id {
			return c, nil
		}
	}
	return Class{}, ErrClassNotFound
}

func (r *fakeClassRepo) GetClassByCode(ctx context.Context, code string) (Class, error) {
	for _, c := range r.classes {
		if c.Code == code {
			return c, nil
		}
	}
	return Class{}, ErrClassNotFound
}

func (r *fakeClassRepo) QueryClassesByMember(ctx context.Context, userID int) ([]Class, error) {
	var classes []Class
	for _, m := range r.memberships {
		if m.UserID == userID {
			if cls, err := r.GetClassByID(ctx, m.ClassID); err == nil {
				classes = append(classes, cls)
			}
		}
	}
	return classes, nil
}

func (r *fakeClassRepo) DeleteClass(ctx context.Context, id int) error {
	for i, c := range r.classes {
		if c.ID == id {
			r.classes = append(r.classes[:i], r.classes[i+1:]...)
			return nil
		}
	}
	return ErrClassNotFound
}

func (r *fakeClassRepo) AddMember(ctx context.Context, mbr Membership) (Membership, error) {
	for _, m := range r.memberships {
		if m.ClassID == mbr.ClassID && m.UserID == mbr.UserID {
			return Membership{}, ErrAlreadyEnrolled
		}
	}
	r.pk++
	mbr.ID = r.pk
	r.memberships = append(r.memberships, mbr)
	return mbr, nil
}

func (r *fakeClassRepo) GetMembership(ctx context.Context, classID, userID int) (Membership, error) {
	for _, m := range r.memberships {
		if m.ClassID == classID && m.UserID == userID {
			return m, nil
		}
	}
	return Membership{}, ErrMembershipNotFound
}

func (r *fakeClassRepo) QueryMembers(ctx context.Context, classID int) ([]Member, error) {
	var members []Member
	for _, m := range r.memberships {
		if m.ClassID == classID {
			members = append(members, Member{UserID: m.UserID, Role: m.Role, JoinedAt: m.JoinedAt})
		}
	}
	return members, nil
}

func TestClassService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &fakeClassRepo{}
	svc := NewClassService(repo)

	cls, err := svc.Create(ctx, 1, NewClass{Name: "Algebra I"})
	require.NoError(t, err)
	assert.NotZero(t, cls.ID)
	assert.Len(t, cls.Code, codeLen)
	assert.Equal(t, 1, cls.TeacherID)

	// creator is enrolled as the class teacher
	mbr, err := repo.GetMembership(ctx, cls.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, user.RoleTeacher, mbr.Role)
}

func TestClassService_Create_retriesOnCodeConflict(t *testing.T) {
	ctx := context.Background()
	repo := &fakeClassRepo{}
	svc := NewClassService(repo)

	// force the first generated code to collide with an existing class
	codes := []string{"AAAAAA", "AAAAAA", "BBBBBB"}
	var calls int
	genCodeFunc = func(n int) string {
		code := codes[calls]
		calls++
		return code
	}
	defer func() { genCodeFunc = randomCode }()

	first, err := svc.Create(ctx, 1, NewClass{Name: "First"})
	require.NoError(t, err)
	assert.Equal(t, "AAAAAA", first.Code)

	second, err := svc.Create(ctx, 2, NewClass{Name: "Second"})
	require.NoError(t, err)
	assert.Equal(t, "BBBBBB", second.Code)
	assert.Equal(t, 3, calls)
}

func TestClassService_Join(t *testing.T) {
	ctx := context.Background()
	repo := &fakeClassRepo{}
	svc := NewClassService(repo)

	cls, err := svc.Create(ctx, 1, NewClass{Name: "Algebra I"})
	require.NoError(t, err)

	student := user.User{ID: 2, Role: user.RoleStudent}

	joined, err := svc.Join(ctx, student, JoinClass{Code: cls.Code})
	require.NoError(t, err)
	assert.Equal(t, cls.ID, joined.ID)

	mbr, err := repo.GetMembership(ctx, cls.ID, student.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, mbr.Role)

	t.Run("duplicate enrollment is a conflict", func(t *testing.T) {
		_, err := svc.Join(ctx, student, JoinClass{Code: cls.Code})
		assert.True(t, core.IsConflict(err))
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Join(ctx, student, JoinClass{Code: "NOSUCH"})
		assert.Equal(t, ErrClassNotFound, err)
	})
}

// fakeSubmissionRepo upserts on (task, student) like the store's unique
// constraint does.
type fakeSubmissionRepo struct {
	subs []Submission
	pk   int
}

var _ SubmissionRepository = (*fakeSubmissionRepo)(nil)

func (r *fakeSubmissionRepo) UpsertSubmission(ctx context.Context, sub Submission) (Submission, error) {
	for i, s := range r.subs {
		if s.TaskID == sub.TaskID && s.StudentID == sub.StudentID {
			r.subs[i].Content = sub.Content
			r.subs[i].SubmittedAt = sub.SubmittedAt
			return r.subs[i], nil
		}
	}
	r.pk++
	sub.ID = r.pk
	r.subs = append(r.subs, sub)
	return sub, nil
}

func (r *fakeSubmissionRepo) GetSubmissionByID(ctx context.Context, id int) (Submission, error) {
	for _, s := range r.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func (r *fakeSubmissionRepo) QuerySubmissionsByTask(ctx context.Context, taskID int) ([]Submission, error) {
	var subs []Submission
	for _, s := range r.subs {
		if s.TaskID == taskID {
			subs = append(subs, s)
		}
	}
	return subs, nil
}

func (r *fakeSubmissionRepo) GradeSubmission(ctx context.Context, id, grade int, feedback string) (Submission, error) {
	for i, s := range r.subs {
		if s.ID == id {
			r.subs[i].Grade.SetValid(grade)
			r.subs[i].Feedback.SetValid(feedback)
			return r.subs[i], nil
		}
	}
	return Submission{}, ErrSubmissionNotFound
}

func TestSubmissionService_Submit_upserts(t *testing.T) {
	ctx := context.Background()
	repo := &fakeSubmissionRepo{}
	svc := NewSubmissionService(repo)

	first, err := svc.Submit(ctx, 2, NewSubmission{TaskID: 1, Content: "draft"})
	require.NoError(t, err)

	time.Sleep(time.Millisecond) // distinct timestamps

	second, err := svc.Submit(ctx, 2, NewSubmission{TaskID: 1, Content: "final"})
	require.NoError(t, err)

	// same row, updated in place
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final", second.Content)
	assert.True(t, second.SubmittedAt.After(first.SubmittedAt))

	subs, err := svc.QueryByTask(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, subs, 1)

	t.Run("grading", func(t *testing.T) {
		grade := 85
		graded, err := svc.Grade(ctx, first.ID, GradeSubmission{Grade: &grade, Feedback: "good"})
		require.NoError(t, err)
		assert.Equal(t, 85, graded.Grade.Int)
		assert.Equal(t, "good", graded.Feedback.String)
	})
}
