package resume

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sanjanag197/web-portfolio/internal/email"
)

// AttachmentStatus is the outcome of loading the resume file.
type AttachmentStatus int

const (
	// AttachmentLoaded means the file was read and is ready to attach.
	AttachmentLoaded AttachmentStatus = iota
	// AttachmentMissing means no file exists at the configured path.
	AttachmentMissing
	// AttachmentFailed means the file exists but could not be read.
	AttachmentFailed
)

func (s AttachmentStatus) String() string {
	switch s {
	case AttachmentLoaded:
		return "loaded"
	case AttachmentMissing:
		return "missing"
	case AttachmentFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// AttachmentResult carries the loaded attachment or the reason there is none.
// Both Missing and Failed continue delivery without an attachment.
type AttachmentResult struct {
	Status     AttachmentStatus
	Attachment *email.Attachment
	Err        error
}

// AttachmentLoader reads the resume PDF from local disk on every call.
type AttachmentLoader struct {
	path     string
	readFile func(string) ([]byte, error)
}

// NewAttachmentLoader returns a loader for the file at path. An empty path
// always reports AttachmentMissing.
func NewAttachmentLoader(path string) *AttachmentLoader {
	return &AttachmentLoader{path: path, readFile: os.ReadFile}
}

// Path returns the configured file path.
func (l *AttachmentLoader) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Load reads the file and classifies the outcome.
func (l *AttachmentLoader) Load() AttachmentResult {
	if l == nil || l.path == "" {
		return AttachmentResult{Status: AttachmentMissing}
	}

	data, err := l.readFile(l.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return AttachmentResult{Status: AttachmentMissing, Err: err}
	case err != nil:
		return AttachmentResult{Status: AttachmentFailed, Err: err}
	}

	return AttachmentResult{
		Status: AttachmentLoaded,
		Attachment: &email.Attachment{
			Filename:    filepath.Base(l.path),
			ContentType: "application/pdf",
			Content:     data,
		},
	}
}
