package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ucfglobal/studentforms/core/form"
	emailsvc "github.com/ucfglobal/studentforms/services/email"
)

func TestSubmissionCreateAndRetrieve(t *testing.T) {
	app := setupApp(t)

	body := marshallObj(t, map[string]interface{}{
		"ucf_id":       "1234567",
		"given_name":   "Jane",
		"family_name":  "Doe",
		"email":        "jane@example.edu",
		"other_reason": "program extension",
		"sevis_id":     "N0012345678",
		"dependents":   2,
	})
	rec := app.do(t, http.MethodPost, "/api/i20-requests", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d, want %d (body: %s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	sub := unmarshallSubmission(t, rec.Body.Bytes())
	assert.Equal(t, 1, sub.ID)
	assert.Equal(t, "Jane Doe", sub.StudentName)
	assert.Equal(t, "1234567", sub.StudentID)
	assert.Equal(t, "I-20 Request", sub.Program)
	assert.Equal(t, form.StatusPending, sub.Status)
	assert.Equal(t, "program extension", sub.OtherReason.String)
	assert.Equal(t, "N0012345678", sub.FormData["sevis_id"])
	assert.Equal(t, float64(2), sub.FormData["dependents"])
	assert.False(t, sub.SubmissionDate.IsZero())
	if _, ok := sub.FormData["other_reason"]; ok {
		t.Error("promoted column duplicated in form_data")
	}

	// an acknowledgement email went out to the submitted address
	if assert.Len(t, emailsvc.SentMessages, 1) {
		msg := emailsvc.SentMessages[0]
		assert.Equal(t, "jane@example.edu", msg.To[0].Address)
		assert.Contains(t, msg.Subject, "I-20 request")
	}

	rec = app.do(t, http.MethodGet, "/api/i20-requests/1", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		got := unmarshallSubmission(t, rec.Body.Bytes())
		assert.Equal(t, sub.ID, got.ID)
		assert.Equal(t, sub.FormData, got.FormData)
	}
}

func TestSubmissionCreateValidation(t *testing.T) {
	app := setupApp(t)

	tests := []struct {
		name      string
		body      map[string]interface{}
		wantField string
	}{
		{
			name:      "missing ucf_id",
			body:      map[string]interface{}{"given_name": "Jane"},
			wantField: "ucf_id",
		},
		{
			name:      "invalid email",
			body:      map[string]interface{}{"ucf_id": "1234567", "email": "not-an-email"},
			wantField: "email",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/api/document-requests", marshallObj(t, tt.body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var fldErrs map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &fldErrs); err != nil {
				t.Fatalf("unmarshalling error body: %v (body: %s)", err, rec.Body.String())
			}
			assert.Contains(t, fldErrs, tt.wantField)
		})
	}
}

func TestSubmissionStudentNameFallbacks(t *testing.T) {
	app := setupApp(t)

	// no name parts at all
	rec := app.do(t, http.MethodPost, "/api/records-release", marshallObj(t, map[string]interface{}{"ucf_id": "1234567"}))
	if assert.Equal(t, http.StatusCreated, rec.Code) {
		sub := unmarshallSubmission(t, rec.Body.Bytes())
		assert.Equal(t, form.UnknownStudentName, sub.StudentName)
	}

	// explicit student_name wins over the composed one
	rec = app.do(t, http.MethodPost, "/api/records-release", marshallObj(t, map[string]interface{}{
		"ucf_id":       "1234567",
		"given_name":   "Jane",
		"family_name":  "Doe",
		"student_name": "J. Doe",
	}))
	if assert.Equal(t, http.StatusCreated, rec.Code) {
		sub := unmarshallSubmission(t, rec.Body.Bytes())
		assert.Equal(t, "J. Doe", sub.StudentName)
	}
}

func TestSubmissionNotFound(t *testing.T) {
	app := setupApp(t)

	rec := app.do(t, http.MethodGet, "/api/leave-requests/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	var herr httpErr
	if err := json.Unmarshal(rec.Body.Bytes(), &herr); err != nil {
		t.Fatalf("unmarshalling error body: %v", err)
	}
	assert.Equal(t, "submission not found", herr.Error)

	rec = app.do(t, http.MethodGet, "/api/leave-requests/abc", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodDelete, "/api/leave-requests/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = app.do(t, http.MethodGet, "/api/no-such-form", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionQueryPagination(t *testing.T) {
	app := setupApp(t)

	for i := 1; i <= 5; i++ {
		body := marshallObj(t, map[string]interface{}{"ucf_id": fmt.Sprintf("123456%d", i), "given_name": "Jane"})
		rec := app.do(t, http.MethodPost, "/api/conversation-partner", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create %d code = %d", i, rec.Code)
		}
	}

	rec := app.do(t, http.MethodGet, "/api/conversation-partner", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		subs := unmarshallSubmissions(t, rec.Body.Bytes())
		if assert.Len(t, subs, 5) {
			// ascending id order
			for i := 1; i < len(subs); i++ {
				assert.Greater(t, subs[i].ID, subs[i-1].ID)
			}
		}
	}

	rec = app.do(t, http.MethodGet, "/api/conversation-partner?skip=1&limit=2", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		subs := unmarshallSubmissions(t, rec.Body.Bytes())
		if assert.Len(t, subs, 2) {
			assert.Equal(t, 2, subs[0].ID)
			assert.Equal(t, 3, subs[1].ID)
		}
	}

	rec = app.do(t, http.MethodGet, "/api/conversation-partner?skip=100", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		assert.Len(t, unmarshallSubmissions(t, rec.Body.Bytes()), 0)
	}

	for _, path := range []string{
		"/api/conversation-partner?skip=abc",
		"/api/conversation-partner?limit=-1",
	} {
		rec = app.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestSubmissionMultipartUpload(t *testing.T) {
	app := setupApp(t)

	content := []byte("%PDF-1.4 supporting doc")
	rec := app.doMultipart(t, "/api/exit-forms",
		map[string]string{
			"ucf_id":              "1234567",
			"given_name":          "Jane",
			"family_name":         "Doe",
			"certify_information": "yes",
			"departure_date":      "2021-05-01",
		},
		map[string][]byte{"supporting_document": content},
	)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d (body: %s)", rec.Code, rec.Body.String())
	}

	sub := unmarshallSubmission(t, rec.Body.Bytes())
	assert.Equal(t, true, sub.FormData["certify_information"])
	assert.Equal(t, "2021-05-01", sub.FormData["departure_date"])

	path, ok := sub.FormData["supporting_document_path"].(string)
	if !ok || path == "" {
		t.Fatalf("supporting_document_path = %v, want saved path", sub.FormData["supporting_document_path"])
	}
	assert.True(t, strings.HasPrefix(path, filepath.Join(app.uploadDir, "exit_forms", "1234567")))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("saved file missing: %v", err)
	}

	// deleting the submission removes its attachment
	rec = app.do(t, http.MethodDelete, "/api/exit-forms/1", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("attachment left behind after delete")
	}
	rec = app.do(t, http.MethodGet, "/api/exit-forms/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmissionMultipartWithoutFile(t *testing.T) {
	app := setupApp(t)

	rec := app.doMultipart(t, "/api/opt-requests",
		map[string]string{"ucf_id": "1234567", "given_name": "Jane", "certify_information": "on"},
		nil,
	)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d (body: %s)", rec.Code, rec.Body.String())
	}

	sub := unmarshallSubmission(t, rec.Body.Bytes())
	// every declared file field is present, nil when nothing was uploaded
	for _, key := range []string{"photo2x2_path", "passport_path", "i94_path"} {
		val, ok := sub.FormData[key]
		if !ok {
			t.Errorf("form_data missing %s", key)
		}
		assert.Nil(t, val, key)
	}
}

func TestSubmissionDestroyAll(t *testing.T) {
	app := setupApp(t)

	for i := 0; i < 3; i++ {
		body := marshallObj(t, map[string]interface{}{"ucf_id": "1234567"})
		rec := app.do(t, http.MethodPost, "/api/opt-stem-reports", body)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create code = %d", rec.Code)
		}
	}

	rec := app.do(t, http.MethodDelete, "/api/opt-stem-reports", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		var res map[string]int
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling delete-all body: %v", err)
		}
		assert.Equal(t, 3, res["deleted"])
	}

	rec = app.do(t, http.MethodGet, "/api/opt-stem-reports", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		assert.Len(t, unmarshallSubmissions(t, rec.Body.Bytes()), 0)
	}

	// deleting from an empty table is a valid zero count
	rec = app.do(t, http.MethodDelete, "/api/opt-stem-reports", nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		var res map[string]int
		_ = json.Unmarshal(rec.Body.Bytes(), &res)
		assert.Equal(t, 0, res["deleted"])
	}
}

func TestAllFormTypesRegistered(t *testing.T) {
	app := setupApp(t)

	for _, typ := range form.Types {
		typ := typ
		t.Run(typ.Slug, func(t *testing.T) {
			body := marshallObj(t, map[string]interface{}{"ucf_id": "1234567", "given_name": "Jane", "family_name": "Doe"})
			rec := app.do(t, http.MethodPost, "/api/"+typ.Slug, body)
			if assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
				sub := unmarshallSubmission(t, rec.Body.Bytes())
				assert.Equal(t, typ.Program, sub.Program)
			}

			rec = app.do(t, http.MethodGet, "/api/"+typ.Slug, nil)
			if assert.Equal(t, http.StatusOK, rec.Code) {
				assert.Len(t, unmarshallSubmissions(t, rec.Body.Bytes()), 1)
			}
		})
	}
}

func TestExitFormEndToEnd(t *testing.T) {
	app := setupApp(t)

	body := marshallObj(t, map[string]interface{}{
		"ucf_id":      "1234567",
		"given_name":  "Jane",
		"family_name": "Doe",
		"ucf_email":   "jane@example.edu",
	})
	rec := app.do(t, http.MethodPost, "/api/exit-forms", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create code = %d (body: %s)", rec.Code, rec.Body.String())
	}
	sub := unmarshallSubmission(t, rec.Body.Bytes())
	assert.Equal(t, form.StatusPending, sub.Status)
	assert.Equal(t, "Jane Doe", sub.StudentName)
	assert.Equal(t, "1234567", sub.FormData["ucf_id"])
	assert.Equal(t, "jane@example.edu", sub.FormData["ucf_email"])

	path := fmt.Sprintf("/api/exit-forms/%d", sub.ID)
	rec = app.do(t, http.MethodGet, path, nil)
	if assert.Equal(t, http.StatusOK, rec.Code) {
		got := unmarshallSubmission(t, rec.Body.Bytes())
		assert.Equal(t, sub, got)
	}

	rec = app.do(t, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = app.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndHome(t *testing.T) {
	app := setupApp(t)

	rec := app.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = app.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
