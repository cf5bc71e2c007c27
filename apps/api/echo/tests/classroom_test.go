package tests

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/shule/core/classroom"
	"github.com/trezcool/shule/core/user"
)

// TestClassroomAPI_flow walks the life of a class: the owning teacher creates
// it, a student joins with the code, work is assigned, submitted, resubmitted
// and graded, while a second teacher is kept out at every step.
func TestClassroomAPI_flow(t *testing.T) {
	env := setup(t)

	teacherA := env.createUser(t, "Alice", "Teacher", "alice@test.test", user.RoleTeacher)
	teacherB := env.createUser(t, "Bob", "Teacher", "bob@test.test", user.RoleTeacher)
	student := env.createUser(t, "Sam", "Student", "sam@test.test", user.RoleStudent)

	tokenA, tokenB, tokenS := getToken(t, teacherA), getToken(t, teacherB), getToken(t, student)

	var cls classroom.Class

	t.Run("teacher creates a class", func(t *testing.T) {
		body := marshallObj(t, classroom.NewClass{Name: "Algebra I", Description: "numbers and letters"})
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", tokenA, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &cls))
		assert.NotZero(t, cls.ID)
		assert.Len(t, cls.Code, 6)
		assert.Equal(t, teacherA.ID, cls.TeacherID)
	})

	t.Run("student cannot create a class", func(t *testing.T) {
		body := marshallObj(t, classroom.NewClass{Name: "Nope"})
		req, rec := newAuthRequest(http.MethodPost, "/api/classes", tokenS, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("student joins with the code", func(t *testing.T) {
		body := marshallObj(t, classroom.JoinClass{Code: cls.Code})
		req, rec := newAuthRequest(http.MethodPost, "/api/classes/join", tokenS, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var joined classroom.Class
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &joined))
		assert.Equal(t, cls.ID, joined.ID)

		t.Run("joining twice conflicts", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/classes/join", tokenS, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusConflict, rec.Code)
		})

		t.Run("unknown code", func(t *testing.T) {
			body := marshallObj(t, classroom.JoinClass{Code: "NOSUCH"})
			req, rec := newAuthRequest(http.MethodPost, "/api/classes/join", tokenS, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})
	})

	t.Run("members see the class, outsiders do not", func(t *testing.T) {
		path := fmt.Sprintf("/api/classes/%d", cls.ID)

		for name, token := range map[string]string{"owner": tokenA, "student": tokenS} {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code, name)
		}

		req, rec := newAuthRequest(http.MethodGet, path, tokenB)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, "/api/classes/999", tokenB)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("own classes listing", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/classes/me", tokenS)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var classes []classroom.Class
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
		require.Len(t, classes, 1)
		assert.Equal(t, cls.ID, classes[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/api/classes/me", tokenB)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &classes))
		assert.Empty(t, classes)
	})

	t.Run("member roster", func(t *testing.T) {
		path := fmt.Sprintf("/api/classes/%d/members", cls.ID)
		req, rec := newAuthRequest(http.MethodGet, path, tokenA)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var members []classroom.Member
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
		assert.Len(t, members, 2) // the owner is auto-enrolled
	})

	var tsk classroom.Task

	t.Run("owner assigns a task", func(t *testing.T) {
		body := marshallObj(t, classroom.NewTask{ClassID: cls.ID, Title: "Homework 1", Description: "ex 1-10"})
		req, rec := newAuthRequest(http.MethodPost, "/api/tasks", tokenA, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tsk))
		assert.Equal(t, cls.ID, tsk.ClassID)

		t.Run("non-owner teacher cannot", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/tasks", tokenB, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})

		t.Run("student cannot", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/tasks", tokenS, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	})

	t.Run("members list and view tasks", func(t *testing.T) {
		path := fmt.Sprintf("/api/tasks/class/%d", cls.ID)
		req, rec := newAuthRequest(http.MethodGet, path, tokenS)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var tasks []classroom.Task
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
		assert.Len(t, tasks, 1)

		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/tasks/%d", tsk.ID), tokenB)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	var sub classroom.Submission

	t.Run("student submits work", func(t *testing.T) {
		body := marshallObj(t, classroom.NewSubmission{TaskID: tsk.ID, Content: "first draft"})
		req, rec := newAuthRequest(http.MethodPost, "/api/submissions", tokenS, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
		assert.Equal(t, student.ID, sub.StudentID)

		t.Run("resubmission replaces in place", func(t *testing.T) {
			body := marshallObj(t, classroom.NewSubmission{TaskID: tsk.ID, Content: "final version"})
			req, rec := newAuthRequest(http.MethodPost, "/api/submissions", tokenS, body)
			env.app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code)

			var resub classroom.Submission
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resub))
			assert.Equal(t, sub.ID, resub.ID)
			assert.Equal(t, "final version", resub.Content)
		})

		t.Run("teachers do not submit", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/api/submissions", tokenA, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	})

	t.Run("only the task owner lists submissions", func(t *testing.T) {
		path := fmt.Sprintf("/api/submissions/task/%d", tsk.ID)

		req, rec := newAuthRequest(http.MethodGet, path, tokenA)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var subs []classroom.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
		assert.Len(t, subs, 1)

		for name, token := range map[string]string{"student": tokenS, "other teacher": tokenB} {
			req, rec := newAuthRequest(http.MethodGet, path, token)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code, name)
		}
	})

	t.Run("owner grades, student sees the grade", func(t *testing.T) {
		grade := 85
		body := marshallObj(t, classroom.GradeSubmission{Grade: &grade, Feedback: "well done"})
		path := fmt.Sprintf("/api/submissions/%d/grade", sub.ID)

		req, rec := newAuthRequest(http.MethodPut, path, tokenA, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var graded classroom.Submission
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graded))
		assert.Equal(t, 85, graded.Grade.Int)

		t.Run("grade must be within 0-100", func(t *testing.T) {
			bad := 101
			body := marshallObj(t, classroom.GradeSubmission{Grade: &bad})
			req, rec := newAuthRequest(http.MethodPut, path, tokenA, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})

		t.Run("students do not grade", func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPut, path, tokenS, body)
			env.app.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})

		// the submitting student can view their graded work
		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/submissions/%d", sub.ID), tokenS)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &graded))
		assert.Equal(t, "well done", graded.Feedback.String)

		// but not an unrelated teacher
		req, rec = newAuthRequest(http.MethodGet, fmt.Sprintf("/api/submissions/%d", sub.ID), tokenB)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("only the owner deletes the class", func(t *testing.T) {
		path := fmt.Sprintf("/api/classes/%d", cls.ID)

		req, rec := newAuthRequest(http.MethodDelete, path, tokenB)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		req, rec = newAuthRequest(http.MethodDelete, path, tokenA)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		req, rec = newAuthRequest(http.MethodGet, path, tokenA)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestPostAPI(t *testing.T) {
	env := setup(t)

	teacher := env.createUser(t, "Alice", "Teacher", "alice@test.test", user.RoleTeacher)
	outsider := env.createUser(t, "Bob", "Teacher", "bob@test.test", user.RoleTeacher)
	student := env.createUser(t, "Sam", "Student", "sam@test.test", user.RoleStudent)
	tokenT, tokenO, tokenS := getToken(t, teacher), getToken(t, outsider), getToken(t, student)

	cls := createClass(t, env, tokenT, "History")
	joinClass(t, env, tokenS, cls.Code)

	t.Run("announcements", func(t *testing.T) {
		body := marshallObj(t, classroom.NewAnnouncement{ClassID: cls.ID, Title: "Exam", Content: "next friday"})

		req, rec := newAuthRequest(http.MethodPost, "/api/announcements", tokenT, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/api/announcements", tokenO, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		path := fmt.Sprintf("/api/announcements/class/%d", cls.ID)
		req, rec = newAuthRequest(http.MethodGet, path, tokenS)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var anns []classroom.Announcement
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &anns))
		require.Len(t, anns, 1)
		assert.Equal(t, "Exam", anns[0].Title)

		req, rec = newAuthRequest(http.MethodGet, path, tokenO)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("documentations", func(t *testing.T) {
		body := marshallObj(t, classroom.NewDocumentation{ClassID: cls.ID, Title: "Syllabus", Content: "chapters 1-12"})

		req, rec := newAuthRequest(http.MethodPost, "/api/documentations", tokenT, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)

		req, rec = newAuthRequest(http.MethodPost, "/api/documentations", tokenS, body)
		env.app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		path := fmt.Sprintf("/api/documentations/class/%d", cls.ID)
		req, rec = newAuthRequest(http.MethodGet, path, tokenS)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var docs []classroom.Documentation
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
		require.Len(t, docs, 1)
	})
}

// createClass creates a class over the API on behalf of the token's owner.
func createClass(t *testing.T, env *testEnv, token, name string) classroom.Class {
	t.Helper()
	body := marshallObj(t, classroom.NewClass{Name: name})
	req, rec := newAuthRequest(http.MethodPost, "/api/classes", token, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("createClass() failed: code = %v; body = %v", rec.Code, rec.Body.String())
	}
	var cls classroom.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

// joinClass enrolls the token's owner using the class join code.
func joinClass(t *testing.T, env *testEnv, token, code string) {
	t.Helper()
	body := marshallObj(t, classroom.JoinClass{Code: code})
	req, rec := newAuthRequest(http.MethodPost, "/api/classes/join", token, body)
	env.app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("joinClass() failed: code = %v; body = %v", rec.Code, rec.Body.String())
	}
}
