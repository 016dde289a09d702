package form_test

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"testing"

	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/core/form"
	emailsvc "github.com/ucfglobal/studentforms/services/email"
	logsvc "github.com/ucfglobal/studentforms/services/logger"
	dummydb "github.com/ucfglobal/studentforms/storage/database/dummy"
	"github.com/ucfglobal/studentforms/storage/files"
)

func setupService(t *testing.T) *form.Service {
	t.Helper()

	core.Conf = &core.Config{
		Env:       "TEST",
		TestMode:  true,
		AppName:   "UCF Global Forms",
		FromEmail: "noreply@localhost",
	}
	core.InitValidators()
	emailsvc.ClearSentMessages()

	logger := logsvc.NewConsoleLogger(log.New(ioutil.Discard, "", 0))
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("opening db: %v", err)
	}
	store := files.NewStore(t.TempDir(), logger)
	return form.NewService(dummydb.NewFormRepository(db), store, emailsvc.NewConsoleServiceMock(), logger)
}

func TestServiceCreateSavesUploads(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	typ, _ := form.TypeBySlug("academic-training")

	sub, err := svc.Create(ctx, typ, form.NewSubmission{
		StudentID:  "1234567",
		GivenName:  "Jane",
		FamilyName: "Doe",
		Extra:      map[string]interface{}{"employer": "ACME Corp"},
		Uploads: []form.Upload{
			{Field: "offer_letter", Filename: "offer.pdf", Content: []byte("%PDF offer")},
		},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	path, _ := sub.FormData["offer_letter_path"].(string)
	if path == "" {
		t.Fatal("offer_letter_path not set")
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("uploaded file missing: %v", err)
	}
	// the declared field with no upload is recorded as absent
	if val, ok := sub.FormData["training_authorization_path"]; !ok || val != nil {
		t.Errorf("training_authorization_path = %v (present: %v), want nil entry", val, ok)
	}
	if sub.FormData["employer"] != "ACME Corp" {
		t.Errorf("employer = %v, want preserved", sub.FormData["employer"])
	}
	if sub.Status != form.StatusPending {
		t.Errorf("Status = %q, want %q", sub.Status, form.StatusPending)
	}
	if sub.SubmissionDate.Location() != sub.SubmissionDate.UTC().Location() {
		t.Error("SubmissionDate not stored in UTC")
	}
}

func TestServiceDeleteRemovesAttachments(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	typ, _ := form.TypeBySlug("leave-requests")

	sub, err := svc.Create(ctx, typ, form.NewSubmission{
		StudentID: "1234567",
		Uploads:   []form.Upload{{Field: "supporting_document", Filename: "doc.pdf", Content: []byte("doc")}},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	path := sub.FormData["supporting_document_path"].(string)

	if err = svc.Delete(ctx, typ, sub.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err = os.Stat(path); !os.IsNotExist(err) {
		t.Error("attachment left behind after delete")
	}
	if _, err = svc.GetByID(ctx, typ, sub.ID); err != form.ErrNotFound {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	if err = svc.Delete(ctx, typ, sub.ID); err != form.ErrNotFound {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}

func TestServiceDeleteAll(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	typ, _ := form.TypeBySlug("virtual-checkin")

	var paths []string
	for i := 0; i < 3; i++ {
		sub, err := svc.Create(ctx, typ, form.NewSubmission{
			StudentID: "1234567",
			Uploads:   []form.Upload{{Field: "photo", Filename: "photo.jpg", Content: []byte{0xff, 0xd8}}},
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		paths = append(paths, sub.FormData["photo_path"].(string))
	}

	count, err := svc.DeleteAll(ctx, typ)
	if err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}
	if count != 3 {
		t.Errorf("DeleteAll() = %d, want 3", count)
	}
	for _, path := range paths {
		if _, err = os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("attachment %s left behind", path)
		}
	}

	count, err = svc.DeleteAll(ctx, typ)
	if err != nil {
		t.Fatalf("DeleteAll() on empty table error = %v", err)
	}
	if count != 0 {
		t.Errorf("DeleteAll() on empty table = %d, want 0", count)
	}
}

func TestServiceAcknowledgementEmail(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	typ, _ := form.TypeBySlug("document-requests")

	// no address submitted: nothing goes out
	if _, err := svc.Create(ctx, typ, form.NewSubmission{StudentID: "1234567"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 0 {
		t.Fatalf("sent %d messages, want 0", len(emailsvc.SentMessages))
	}

	// forms that name their email field differently still get a receipt
	_, err := svc.Create(ctx, typ, form.NewSubmission{
		StudentID: "1234567",
		Extra:     map[string]interface{}{"ucf_email": "jane@example.edu"},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("sent %d messages, want 1", len(emailsvc.SentMessages))
	}
	if addr := emailsvc.SentMessages[0].To[0].Address; addr != "jane@example.edu" {
		t.Errorf("To = %q, want jane@example.edu", addr)
	}
}
