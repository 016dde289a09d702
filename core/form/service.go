package form

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/ucfglobal/studentforms/core"
)

var (
	// errors
	ErrNotFound = errors.New("submission not found")
)

type (
	// Repository persists submissions. Implementations receive the Type so a
	// single repository serves every form-type table.
	Repository interface {
		CreateSubmission(ctx context.Context, t Type, sub Submission) (Submission, error)
		// QuerySubmissions returns submissions ordered by ascending id;
		// limit <= 0 means no limit.
		QuerySubmissions(ctx context.Context, t Type, skip, limit int) ([]Submission, error)
		GetSubmissionByID(ctx context.Context, t Type, id int) (Submission, error)
		DeleteSubmissionByID(ctx context.Context, t Type, id int) error
		DeleteAllSubmissions(ctx context.Context, t Type) (int, error)
	}

	// FileStore saves and removes attachment files. Deletes are best-effort:
	// they report success/failure but never raise.
	FileStore interface {
		// Save writes content under <root>/<dir>/<studentID>/ with a
		// collision-free generated name and returns the full path.
		// Empty content is a legitimate non-upload: it returns "" and
		// touches nothing.
		Save(content []byte, originalName, dir, studentID string) (string, error)
		Delete(path string) bool
		DeleteStudentDir(dir, studentID string) bool
	}

	Service struct {
		repo    Repository
		files   FileStore
		mailSvc core.EmailService
		log     core.Logger
	}
)

func NewService(repo Repository, files FileStore, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, files: files, mailSvc: mailSvc, log: logger}
}

// Create runs the whole submission pipeline: save any uploads, assemble
// form_data, build the record and commit it. A failed upload save is logged
// and the field stored as absent; it never fails the submission.
func (svc *Service) Create(ctx context.Context, t Type, in NewSubmission) (Submission, error) {
	data := BuildData(in)

	if len(t.FileFields) > 0 {
		uploads := make(map[string]Upload, len(in.Uploads))
		for _, up := range in.Uploads {
			uploads[up.Field] = up
		}
		// every declared file field gets a "<field>_path" entry so callers
		// can always look the key up; nil when nothing was uploaded
		for _, fld := range t.FileFields {
			key := fld + "_path"
			up, ok := uploads[fld]
			if !ok || len(up.Content) == 0 {
				data[key] = nil
				continue
			}
			path, err := svc.files.Save(up.Content, up.Filename, t.UploadDir, in.StudentID)
			if err != nil {
				svc.log.Error(fmt.Sprintf("saving %s for student %s: %v", fld, in.StudentID, err), err)
				data[key] = nil
				continue
			}
			data[key] = path
		}
	}

	program := in.Program
	if program == "" {
		program = t.Program
	}
	name := in.StudentName
	if name == "" {
		name = StudentName(in.GivenName, in.FamilyName)
	}

	sub := Submission{
		StudentName:    name,
		StudentID:      in.StudentID,
		Program:        program,
		SubmissionDate: time.Now().UTC(),
		Status:         StatusPending,
		FormData:       data,
	}
	for col, val := range in.ExtraColumns {
		if dst := sub.ExtraColumn(col); dst != nil {
			*dst = val
		}
	}

	sub, err := svc.repo.CreateSubmission(ctx, t, sub)
	if err != nil {
		return Submission{}, err
	}
	svc.log.Info(fmt.Sprintf("created %s for %s (ID: %d)", t.Label, sub.StudentName, sub.ID))
	svc.acknowledge(t, sub)
	return sub, nil
}

func (svc *Service) Query(ctx context.Context, t Type, skip, limit int) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, t, skip, limit)
}

func (svc *Service) GetByID(ctx context.Context, t Type, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, t, id)
}

// Delete removes one submission and, best-effort, its attachment files.
// Row deletion proceeds regardless of the file-deletion outcome.
func (svc *Service) Delete(ctx context.Context, t Type, id int) error {
	sub, err := svc.repo.GetSubmissionByID(ctx, t, id)
	if err != nil {
		return err
	}
	svc.removeAttachments(t, &sub)
	if err := svc.repo.DeleteSubmissionByID(ctx, t, id); err != nil {
		return err
	}
	svc.log.Info(fmt.Sprintf("deleted %s ID: %d", t.Label, id))
	return nil
}

// DeleteAll removes every submission of this type and their attachments,
// returning the number of rows deleted. Zero matches is a valid zero count,
// not an error.
func (svc *Service) DeleteAll(ctx context.Context, t Type) (int, error) {
	subs, err := svc.repo.QuerySubmissions(ctx, t, 0, 0)
	if err != nil {
		return 0, err
	}
	for i := range subs {
		svc.removeAttachments(t, &subs[i])
	}
	count, err := svc.repo.DeleteAllSubmissions(ctx, t)
	if err != nil {
		return 0, err
	}
	svc.log.Info(fmt.Sprintf("deleted %d %ss", count, t.Label))
	return count, nil
}

func (svc *Service) removeAttachments(t Type, sub *Submission) {
	for _, path := range sub.AttachmentPaths(t) {
		svc.files.Delete(path)
	}
}

// acknowledge emails the student a short receipt when the submission carries
// an address. Send failures are the email service's to log; they never block
// the request.
func (svc *Service) acknowledge(t Type, sub Submission) {
	addr := notifyAddress(sub.FormData)
	if addr == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: sub.StudentName, Address: addr}},
		Subject: fmt.Sprintf("%s received", t.Label),
		BodyStr: fmt.Sprintf(
			"Hi %s,\n\nYour %s was received on %s and is pending review.\nReference number: %d.\n",
			sub.StudentName, t.Label, sub.SubmissionDate.Format("Jan 2, 2006"), sub.ID,
		),
	})
}

// notifyAddress picks the first email-looking field a form submitted;
// forms name their primary email field inconsistently.
func notifyAddress(data Data) string {
	for _, key := range []string{"email", "ucf_email", "student_email", "personal_email"} {
		if v, ok := data[key]; ok {
			if addr, ok := v.(string); ok && addr != "" {
				return addr
			}
		}
	}
	return ""
}
