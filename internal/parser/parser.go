package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/entity"
)

// IInputParser extracts numbered questions from an uploaded document.
type IInputParser interface {
	Parse(data []byte, format string) ([]entity.Question, error)
}

// TextParser handles plain-text uploads. PDF and image formats need text
// extraction or OCR, which stays with the upstream collaborators; uploads in
// those formats are rejected with ErrUnsupportedFormat.
type TextParser struct {
	maxSize int
}

func NewTextParser(maxSize int) *TextParser {
	return &TextParser{maxSize: maxSize}
}

var _ IInputParser = (*TextParser)(nil)

var supportedFormats = map[string]bool{
	"text": true,
	"txt":  true,
}

// numberingPattern matches question numbering: "1.", "Q1.", "Question 1:".
var numberingPattern = regexp.MustCompile(`(?im)^(?:\d+\.|Q\d+\.?|Question\s+\d+:?)\s*`)

var blankLinePattern = regexp.MustCompile(`\n\s*\n`)

func (p *TextParser) Parse(data []byte, format string) ([]entity.Question, error) {
	if !supportedFormats[strings.ToLower(format)] {
		return nil, fmt.Errorf("format %q: %w", format, apperr.ErrUnsupportedFormat)
	}
	if p.maxSize > 0 && len(data) > p.maxSize {
		return nil, fmt.Errorf("upload is %d bytes, limit %d: %w", len(data), p.maxSize, apperr.ErrFileTooLarge)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("upload is not valid UTF-8: %w", apperr.ErrUnsupportedFormat)
	}

	texts := detectQuestions(string(data))
	if len(texts) == 0 {
		return nil, apperr.ErrNoQuestionsFound
	}

	questions := make([]entity.Question, len(texts))
	for i, text := range texts {
		questions[i] = entity.Question{Index: i + 1, Text: text}
	}
	return questions, nil
}

// detectQuestions splits raw text into individual questions. Numbered lists
// win; failing that, blank-line separation; failing that, the whole text is
// one question.
func detectQuestions(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	parts := numberingPattern.Split(text, -1)
	if len(parts) <= 1 {
		parts = blankLinePattern.Split(text, -1)
	}

	var questions []string
	for _, part := range parts {
		cleaned := strings.TrimSpace(part)
		if len(cleaned) > 3 { // minimum question length
			questions = append(questions, cleaned)
		}
	}

	if len(questions) == 0 {
		questions = []string{strings.TrimSpace(text)}
	}
	return questions
}
