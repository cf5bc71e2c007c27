package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/user"
)

// Class & memberships

type classRow struct {
	ID          int       `db:"id"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	Code        string    `db:"code"`
	TeacherID   int       `db:"teacher_id"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r classRow) toModel() classroom.Class {
	return classroom.Class(r)
}

type membershipRow struct {
	ID       int       `db:"id"`
	ClassID  int       `db:"class_id"`
	UserID   int       `db:"user_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

func (r membershipRow) toModel() classroom.Membership {
	return classroom.Membership{
		ID:       r.ID,
		ClassID:  r.ClassID,
		UserID:   r.UserID,
		Role:     user.Role(r.Role),
		JoinedAt: r.JoinedAt,
	}
}

type memberRow struct {
	UserID    int       `db:"user_id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	Email     string    `db:"email"`
	Role      string    `db:"role"`
	JoinedAt  time.Time `db:"joined_at"`
}

type classRepository struct {
	db *sqlx.DB
}

var _ classroom.ClassRepository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

const classColumns = `id, name, description, code, teacher_id, created_at`

func (repo *classRepository) CreateClass(ctx context.Context, cls classroom.Class) (classroom.Class, error) {
	q := `INSERT INTO class (name, description, code, teacher_id, created_at)
	      VALUES ($1, $2, $3, $4, $5) RETURNING id`
	err := repo.db.GetContext(ctx, &cls.ID, q, cls.Name, cls.Description, cls.Code, cls.TeacherID, cls.CreatedAt)
	if err != nil {
		if uniqueViolation(err, "class_code_key") {
			return classroom.Class{}, classroom.ErrCodeExists
		}
		return classroom.Class{}, errors.Wrap(err, "inserting class")
	}
	return cls, nil
}

func (repo *classRepository) GetClassByID(ctx context.Context, id int) (classroom.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+classColumns+` FROM class WHERE id = $1`, id); err != nil {
		return classroom.Class{}, trapNoRows(err, classroom.ErrClassNotFound, "getting class by id")
	}
	return r.toModel(), nil
}

func (repo *classRepository) GetClassByCode(ctx context.Context, code string) (classroom.Class, error) {
	var r classRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+classColumns+` FROM class WHERE code = $1`, code); err != nil {
		return classroom.Class{}, trapNoRows(err, classroom.ErrClassNotFound, "getting class by code")
	}
	return r.toModel(), nil
}

func (repo *classRepository) QueryClassesByMember(ctx context.Context, userID int) ([]classroom.Class, error) {
	q := `SELECT c.id, c.name, c.description, c.code, c.teacher_id, c.created_at
	      FROM class c JOIN class_membership m ON m.class_id = c.id
	      WHERE m.user_id = $1 ORDER BY c.created_at DESC`
	var rows []classRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying classes by member")
	}
	classes := make([]classroom.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.toModel())
	}
	return classes, nil
}

func (repo *classRepository) DeleteClass(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM class WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return classroom.ErrClassNotFound
	}
	return nil
}

func (repo *classRepository) AddMember(ctx context.Context, mbr classroom.Membership) (classroom.Membership, error) {
	q := `INSERT INTO class_membership (class_id, user_id, role, joined_at)
	      VALUES ($1, $2, $3, $4) RETURNING id`
	err := repo.db.GetContext(ctx, &mbr.ID, q, mbr.ClassID, mbr.UserID, string(mbr.Role), mbr.JoinedAt)
	if err != nil {
		if uniqueViolation(err, "class_membership_class_user_key") {
			return classroom.Membership{}, classroom.ErrAlreadyEnrolled
		}
		return classroom.Membership{}, errors.Wrap(err, "inserting membership")
	}
	return mbr, nil
}

func (repo *classRepository) GetMembership(ctx context.Context, classID, userID int) (classroom.Membership, error) {
	var r membershipRow
	q := `SELECT id, class_id, user_id, role, joined_at FROM class_membership WHERE class_id = $1 AND user_id = $2`
	if err := repo.db.GetContext(ctx, &r, q, classID, userID); err != nil {
		return classroom.Membership{}, trapNoRows(err, classroom.ErrMembershipNotFound, "getting membership")
	}
	return r.toModel(), nil
}

func (repo *classRepository) QueryMembers(ctx context.Context, classID int) ([]classroom.Member, error) {
	q := `SELECT m.user_id, u.first_name, u.last_name, u.email, m.role, m.joined_at
	      FROM class_membership m JOIN "user" u ON u.id = m.user_id
	      WHERE m.class_id = $1 ORDER BY m.joined_at`
	var rows []memberRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying class members")
	}
	members := make([]classroom.Member, 0, len(rows))
	for _, r := range rows {
		members = append(members, classroom.Member{
			UserID:    r.UserID,
			FirstName: r.FirstName,
			LastName:  r.LastName,
			Email:     r.Email,
			Role:      user.Role(r.Role),
			JoinedAt:  r.JoinedAt,
		})
	}
	return members, nil
}

// Announcements & documentation

type postRow struct {
	ID        int       `db:"id"`
	ClassID   int       `db:"class_id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}

type postRepository struct {
	db *sqlx.DB
}

var _ classroom.PostRepository = (*postRepository)(nil) // interface compliance check

func NewPostRepository(db *sqlx.DB) *postRepository {
	return &postRepository{db: db}
}

func (repo *postRepository) CreateAnnouncement(ctx context.Context, ann classroom.Announcement) (classroom.Announcement, error) {
	q := `INSERT INTO announcement (class_id, title, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.GetContext(ctx, &ann.ID, q, ann.ClassID, ann.Title, ann.Content, ann.CreatedAt); err != nil {
		return classroom.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo *postRepository) QueryAnnouncementsByClass(ctx context.Context, classID int) ([]classroom.Announcement, error) {
	q := `SELECT id, class_id, title, content, created_at FROM announcement WHERE class_id = $1 ORDER BY created_at DESC`
	var rows []postRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]classroom.Announcement, 0, len(rows))
	for _, r := range rows {
		anns = append(anns, classroom.Announcement(r))
	}
	return anns, nil
}

func (repo *postRepository) CreateDocumentation(ctx context.Context, doc classroom.Documentation) (classroom.Documentation, error) {
	q := `INSERT INTO documentation (class_id, title, content, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := repo.db.GetContext(ctx, &doc.ID, q, doc.ClassID, doc.Title, doc.Content, doc.CreatedAt); err != nil {
		return classroom.Documentation{}, errors.Wrap(err, "inserting documentation")
	}
	return doc, nil
}

func (repo *postRepository) QueryDocumentationsByClass(ctx context.Context, classID int) ([]classroom.Documentation, error) {
	q := `SELECT id, class_id, title, content, created_at FROM documentation WHERE class_id = $1 ORDER BY created_at DESC`
	var rows []postRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying documentations")
	}
	docs := make([]classroom.Documentation, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, classroom.Documentation(r))
	}
	return docs, nil
}

// Tasks

type taskRow struct {
	ID          int       `db:"id"`
	ClassID     int       `db:"class_id"`
	Title       string    `db:"title"`
	Description string    `db:"description"`
	Deadline    null.Time `db:"deadline"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r taskRow) toModel() classroom.Task {
	return classroom.Task(r)
}

type taskRepository struct {
	db *sqlx.DB
}

var _ classroom.TaskRepository = (*taskRepository)(nil) // interface compliance check

func NewTaskRepository(db *sqlx.DB) *taskRepository {
	return &taskRepository{db: db}
}

func (repo *taskRepository) CreateTask(ctx context.Context, tsk classroom.Task) (classroom.Task, error) {
	q := `INSERT INTO task (class_id, title, description, deadline, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := repo.db.GetContext(ctx, &tsk.ID, q, tsk.ClassID, tsk.Title, tsk.Description, tsk.Deadline, tsk.CreatedAt); err != nil {
		return classroom.Task{}, errors.Wrap(err, "inserting task")
	}
	return tsk, nil
}

func (repo *taskRepository) GetTaskByID(ctx context.Context, id int) (classroom.Task, error) {
	var r taskRow
	q := `SELECT id, class_id, title, description, deadline, created_at FROM task WHERE id = $1`
	if err := repo.db.GetContext(ctx, &r, q, id); err != nil {
		return classroom.Task{}, trapNoRows(err, classroom.ErrTaskNotFound, "getting task by id")
	}
	return r.toModel(), nil
}

func (repo *taskRepository) QueryTasksByClass(ctx context.Context, classID int) ([]classroom.Task, error) {
	q := `SELECT id, class_id, title, description, deadline, created_at FROM task WHERE class_id = $1 ORDER BY created_at DESC`
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, q, classID); err != nil {
		return nil, errors.Wrap(err, "querying tasks")
	}
	tasks := make([]classroom.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.toModel())
	}
	return tasks, nil
}

// Submissions

type submissionRow struct {
	ID          int         `db:"id"`
	TaskID      int         `db:"task_id"`
	StudentID   int         `db:"student_id"`
	Content     string      `db:"content"`
	Grade       null.Int    `db:"grade"`
	Feedback    null.String `db:"feedback"`
	SubmittedAt time.Time   `db:"submitted_at"`
}

func (r submissionRow) toModel() classroom.Submission {
	return classroom.Submission(r)
}

type submissionRepository struct {
	db *sqlx.DB
}

var _ classroom.SubmissionRepository = (*submissionRepository)(nil) // interface compliance check

func NewSubmissionRepository(db *sqlx.DB) *submissionRepository {
	return &submissionRepository{db: db}
}

const submissionColumns = `id, task_id, student_id, content, grade, feedback, submitted_at`

func (repo *submissionRepository) UpsertSubmission(ctx context.Context, sub classroom.Submission) (classroom.Submission, error) {
	// single atomic statement; resubmission keeps the row (and its grade slot)
	q := `INSERT INTO submission (task_id, student_id, content, submitted_at)
	      VALUES ($1, $2, $3, $4)
	      ON CONFLICT ON CONSTRAINT submission_task_student_key
	      DO UPDATE SET content = EXCLUDED.content, submitted_at = EXCLUDED.submitted_at
	      RETURNING ` + submissionColumns
	var r submissionRow
	if err := repo.db.GetContext(ctx, &r, q, sub.TaskID, sub.StudentID, sub.Content, sub.SubmittedAt); err != nil {
		return classroom.Submission{}, errors.Wrap(err, "upserting submission")
	}
	return r.toModel(), nil
}

func (repo *submissionRepository) GetSubmissionByID(ctx context.Context, id int) (classroom.Submission, error) {
	var r submissionRow
	if err := repo.db.GetContext(ctx, &r, `SELECT `+submissionColumns+` FROM submission WHERE id = $1`, id); err != nil {
		return classroom.Submission{}, trapNoRows(err, classroom.ErrSubmissionNotFound, "getting submission by id")
	}
	return r.toModel(), nil
}

func (repo *submissionRepository) QuerySubmissionsByTask(ctx context.Context, taskID int) ([]classroom.Submission, error) {
	q := `SELECT ` + submissionColumns + ` FROM submission WHERE task_id = $1 ORDER BY submitted_at`
	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, q, taskID); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]classroom.Submission, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.toModel())
	}
	return subs, nil
}

func (repo *submissionRepository) GradeSubmission(ctx context.Context, id, grade int, feedback string) (classroom.Submission, error) {
	q := `UPDATE submission SET grade = $2, feedback = $3 WHERE id = $1 RETURNING ` + submissionColumns
	var r submissionRow
	if err := repo.db.GetContext(ctx, &r, q, id, grade, null.NewString(feedback, feedback != "")); err != nil {
		return classroom.Submission{}, trapNoRows(err, classroom.ErrSubmissionNotFound, "grading submission")
	}
	return r.toModel(), nil
}
