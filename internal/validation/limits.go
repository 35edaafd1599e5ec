package validation

import (
	"errors"
	"fmt"
)

const (
	// MaxQuestions is the maximum number of questions per request.
	MaxQuestions = 50

	// MaxQuestionBytes is the maximum size of a single question (8KB).
	MaxQuestionBytes = 8 * 1024

	// MaxDocumentURLLength is the maximum length of a document URL.
	MaxDocumentURLLength = 2048
)

var (
	ErrNoQuestions        = errors.New("at least one question is required")
	ErrTooManyQuestions   = errors.New("questions exceed maximum count")
	ErrQuestionTooLarge   = errors.New("question exceeds maximum size")
	ErrEmptyQuestion      = errors.New("question cannot be empty")
	ErrDocumentURLTooLong = errors.New("document URL exceeds maximum length")
)

// ValidateRunRequest validates size limits of a question-answering request.
func ValidateRunRequest(documentURL string, questions []string) error {
	if len(documentURL) > MaxDocumentURLLength {
		return fmt.Errorf("%w: %d characters (max %d)",
			ErrDocumentURLTooLong, len(documentURL), MaxDocumentURLLength)
	}

	if len(questions) == 0 {
		return ErrNoQuestions
	}
	if len(questions) > MaxQuestions {
		return fmt.Errorf("%w: %d questions (max %d)", ErrTooManyQuestions, len(questions), MaxQuestions)
	}

	for i, q := range questions {
		if q == "" {
			return fmt.Errorf("%w: question %d", ErrEmptyQuestion, i)
		}
		if len(q) > MaxQuestionBytes {
			return fmt.Errorf("%w: question %d is %d bytes (max %d)",
				ErrQuestionTooLarge, i, len(q), MaxQuestionBytes)
		}
	}

	return nil
}
