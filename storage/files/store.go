// Package files stores submission attachments on local disk, laid out as
// <root>/<form_type>/<student_id>/<uuid><original-extension>. The student
// subfolder groups everything a student uploaded for one form type so bulk
// cleanup stays a single directory removal.
package files

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ucfglobal/studentforms/core"
	"github.com/ucfglobal/studentforms/core/form"
)

type Store struct {
	root string
	log  core.Logger
}

var _ form.FileStore = (*Store)(nil) // interface compliance check

func NewStore(root string, logger core.Logger) *Store {
	return &Store{root: root, log: logger}
}

// Save writes content to <root>/<dir>/<studentID>/<uuid><ext> and returns the
// path. The generated name avoids collisions and never trusts the
// client-supplied filename; only its extension survives. Empty content means
// "nothing uploaded": Save returns "" and creates nothing.
func (s *Store) Save(content []byte, originalName, dir, studentID string) (string, error) {
	if len(content) == 0 {
		return "", nil
	}

	studentDir := filepath.Join(s.root, dir, studentID)
	if err := os.MkdirAll(studentDir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", studentDir)
	}

	name := uuid.New().String() + filepath.Ext(originalName)
	path := filepath.Join(studentDir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}

	s.log.Info(fmt.Sprintf("saved file for student %s: %s (original: %s)", studentID, path, originalName))
	return path, nil
}

// Delete removes one file. It is a no-op returning false for an empty or
// missing path; removal failures are logged and reported as false so cleanup
// never blocks the owning record's deletion.
func (s *Store) Delete(path string) bool {
	if path == "" {
		return false
	}
	if _, err := os.Stat(path); err != nil {
		return false
	}
	if err := os.Remove(path); err != nil {
		s.log.Warn(fmt.Sprintf("deleting file %s: %v", path, err))
		return false
	}
	s.log.Info("deleted file: " + path)
	return true
}

// DeleteStudentDir removes a student's whole attachment folder for one form
// type, with the same best-effort semantics as Delete.
func (s *Store) DeleteStudentDir(dir, studentID string) bool {
	studentDir := filepath.Join(s.root, dir, studentID)
	if _, err := os.Stat(studentDir); err != nil {
		return false
	}
	if err := os.RemoveAll(studentDir); err != nil {
		s.log.Warn(fmt.Sprintf("deleting folder %s: %v", studentDir, err))
		return false
	}
	s.log.Info("deleted student folder: " + studentDir)
	return true
}
