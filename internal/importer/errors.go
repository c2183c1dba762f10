package importer

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrEmptyParse indicates the text yielded no name, experience or education
type ErrEmptyParse struct{}

func (e *ErrEmptyParse) Error() string {
	return "no profile data found in text"
}

// ErrImportNotFound indicates the import does not exist or belongs to another user
type ErrImportNotFound struct {
	ImportID uuid.UUID
}

func (e *ErrImportNotFound) Error() string {
	return fmt.Sprintf("import not found: %s", e.ImportID)
}

// ErrImportApplied indicates the import was already merged into the CV
type ErrImportApplied struct {
	ImportID uuid.UUID
}

func (e *ErrImportApplied) Error() string {
	return fmt.Sprintf("import already applied: %s", e.ImportID)
}

// ErrNothingSelected indicates an apply request that selects no part of the import
type ErrNothingSelected struct{}

func (e *ErrNothingSelected) Error() string {
	return "nothing selected to apply"
}

// ErrInvalidSelection indicates an unknown part name in a selection list
type ErrInvalidSelection struct {
	Part string
}

func (e *ErrInvalidSelection) Error() string {
	return fmt.Sprintf("unknown import part %q (want personal, experience, education, skills or all)", e.Part)
}
