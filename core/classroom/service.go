package classroom

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	// errors
	ErrClassNotFound      = errors.New("class not found")
	ErrTaskNotFound       = errors.New("task not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrMembershipNotFound = errors.New("membership not found")
	ErrCodeExists         = errors.New("a class with this code already exists")
	ErrAlreadyEnrolled    = errors.New("user is already enrolled in this class")
)

type (
	ClassRepository interface {
		// CreateClass fails with ErrCodeExists when the join code is taken.
		CreateClass(ctx context.Context, cls Class) (Class, error)
		GetClassByID(ctx context.Context, id int) (Class, error)
		GetClassByCode(ctx context.Context, code string) (Class, error)
		QueryClassesByMember(ctx context.Context, userID int) ([]Class, error)
		DeleteClass(ctx context.Context, id int) error
		// AddMember fails with ErrAlreadyEnrolled on a duplicate (class, user) pair.
		AddMember(ctx context.Context, mbr Membership) (Membership, error)
		GetMembership(ctx context.Context, classID, userID int) (Membership, error)
		QueryMembers(ctx context.Context, classID int) ([]Member, error)
	}

	PostRepository interface {
		CreateAnnouncement(ctx context.Context, ann Announcement) (Announcement, error)
		QueryAnnouncementsByClass(ctx context.Context, classID int) ([]Announcement, error)
		CreateDocumentation(ctx context.Context, doc Documentation) (Documentation, error)
		QueryDocumentationsByClass(ctx context.Context, classID int) ([]Documentation, error)
	}

	TaskRepository interface {
		CreateTask(ctx context.Context, tsk Task) (Task, error)
		GetTaskByID(ctx context.Context, id int) (Task, error)
		QueryTasksByClass(ctx context.Context, classID int) ([]Task, error)
	}

	SubmissionRepository interface {
		// UpsertSubmission inserts or, on a duplicate (task, student) pair,
		// overwrites content and timestamp of the existing row.
		UpsertSubmission(ctx context.Context, sub Submission) (Submission, error)
		GetSubmissionByID(ctx context.Context, id int) (Submission, error)
		QuerySubmissionsByTask(ctx context.Context, taskID int) ([]Submission, error)
		GradeSubmission(ctx context.Context, id, grade int, feedback string) (Submission, error)
	}
)

const codeLen = 6

// codeAlphabet leaves out easily-confused characters (0/O, 1/I).
var (
	codeAlphabet = []byte("ABCDEFGHJKLMNPQRSTUVWXYZ23456789")
	codeRand     = rand.New(rand.NewSource(time.Now().UnixNano()))

	genCodeFunc = randomCode // mockable
)

func randomCode(n int) string {
	code := make([]byte, n)
	for i := range code {
		code[i] = codeAlphabet[codeRand.Intn(len(codeAlphabet))]
	}
	return string(code)
}

type ClassService struct {
	repo ClassRepository
}

func NewClassService(repo ClassRepository) *ClassService {
	return &ClassService{repo: repo}
}

// Create makes a new class owned by the given teacher and enrolls them as its
// teacher member. The join code is drawn at random until an unused one sticks;
// the store's uniqueness constraint arbitrates races.
func (svc *ClassService) Create(ctx context.Context, teacherID int, nc NewClass) (Class, error) {
	now := time.Now().UTC()
	cls := Class{
		Name:        nc.Name,
		Description: nc.Description,
		TeacherID:   teacherID,
		CreatedAt:   now,
	}
	for {
		cls.Code = genCodeFunc(codeLen)
		created, err := svc.repo.CreateClass(ctx, cls)
		if err != nil {
			if errors.Cause(err) == ErrCodeExists {
				continue
			}
			return Class{}, err
		}
		cls = created
		break
	}

	_, err := svc.repo.AddMember(ctx, Membership{
		ClassID:  cls.ID,
		UserID:   teacherID,
		Role:     user.RoleTeacher,
		JoinedAt: now,
	})
	if err != nil {
		return Class{}, errors.Wrap(err, "enrolling class teacher")
	}
	return cls, nil
}

// Join enrolls a user in the class matching the join code.
func (svc *ClassService) Join(ctx context.Context, usr user.User, jc JoinClass) (Class, error) {
	cls, err := svc.repo.GetClassByCode(ctx, jc.Code)
	if err != nil {
		return Class{}, err
	}
	_, err = svc.repo.AddMember(ctx, Membership{
		ClassID:  cls.ID,
		UserID:   usr.ID,
		Role:     usr.Role,
		JoinedAt: time.Now().UTC(),
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Class{}, core.NewConflictError(ErrAlreadyEnrolled)
		}
		return Class{}, err
	}
	return cls, nil
}

func (svc *ClassService) GetByID(ctx context.Context, id int) (Class, error) {
	return svc.repo.GetClassByID(ctx, id)
}

func (svc *ClassService) QueryByMember(ctx context.Context, userID int) ([]Class, error) {
	return svc.repo.QueryClassesByMember(ctx, userID)
}

func (svc *ClassService) Members(ctx context.Context, classID int) ([]Member, error) {
	return svc.repo.QueryMembers(ctx, classID)
}

func (svc *ClassService) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteClass(ctx, id)
}

type PostService struct {
	repo PostRepository
}

func NewPostService(repo PostRepository) *PostService {
	return &PostService{repo: repo}
}

func (svc *PostService) CreateAnnouncement(ctx context.Context, na NewAnnouncement) (Announcement, error) {
	return svc.repo.CreateAnnouncement(ctx, Announcement{
		ClassID:   na.ClassID,
		Title:     na.Title,
		Content:   na.Content,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *PostService) QueryAnnouncements(ctx context.Context, classID int) ([]Announcement, error) {
	return svc.repo.QueryAnnouncementsByClass(ctx, classID)
}

func (svc *PostService) CreateDocumentation(ctx context.Context, nd NewDocumentation) (Documentation, error) {
	return svc.repo.CreateDocumentation(ctx, Documentation{
		ClassID:   nd.ClassID,
		Title:     nd.Title,
		Content:   nd.Content,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *PostService) QueryDocumentations(ctx context.Context, classID int) ([]Documentation, error) {
	return svc.repo.QueryDocumentationsByClass(ctx, classID)
}

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{repo: repo}
}

func (svc *TaskService) Create(ctx context.Context, nt NewTask) (Task, error) {
	tsk := Task{
		ClassID:     nt.ClassID,
		Title:       nt.Title,
		Description: nt.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if nt.Deadline != nil {
		tsk.Deadline.SetValid(nt.Deadline.UTC())
	}
	return svc.repo.CreateTask(ctx, tsk)
}

func (svc *TaskService) GetByID(ctx context.Context, id int) (Task, error) {
	return svc.repo.GetTaskByID(ctx, id)
}

func (svc *TaskService) QueryByClass(ctx context.Context, classID int) ([]Task, error) {
	return svc.repo.QueryTasksByClass(ctx, classID)
}

type SubmissionService struct {
	repo SubmissionRepository
}

func NewSubmissionService(repo SubmissionRepository) *SubmissionService {
	return &SubmissionService{repo: repo}
}

// Submit stores a student's work. Submitting twice for the same task updates
// the existing row in place; it never creates a duplicate.
func (svc *SubmissionService) Submit(ctx context.Context, studentID int, ns NewSubmission) (Submission, error) {
	return svc.repo.UpsertSubmission(ctx, Submission{
		TaskID:      ns.TaskID,
		StudentID:   studentID,
		Content:     ns.Content,
		SubmittedAt: time.Now().UTC(),
	})
}

func (svc *SubmissionService) GetByID(ctx context.Context, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id)
}

func (svc *SubmissionService) QueryByTask(ctx context.Context, taskID int) ([]Submission, error) {
	return svc.repo.QuerySubmissionsByTask(ctx, taskID)
}

func (svc *SubmissionService) Grade(ctx context.Context, id int, gs GradeSubmission) (Submission, error) {
	return svc.repo.GradeSubmission(ctx, id, *gs.Grade, gs.Feedback)
}
