// Package domain defines the core domain models for rollcall.
package domain

import (
	"strings"
	"time"
)

// Key constraints.
const (
	MaxKeyLength  = 64
	MaxTextLength = 256

	// UnknownName is used for students and courses created implicitly by a mark.
	UnknownName = "Unknown"
)

// Student is identified by its roll number.
type Student struct {
	ID        int64     `json:"-"`
	Roll      string    `json:"roll"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Course is identified by its code.
type Course struct {
	ID        int64     `json:"-"`
	Code      string    `json:"code"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Enrollment relates one student to one course.
type Enrollment struct {
	StudentID int64
	CourseID  int64
}

// NewStudent validates and builds a Student.
func NewStudent(roll, name string) (*Student, error) {
	if err := ValidateKey("roll", roll); err != nil {
		return nil, err
	}
	if err := validateText("name", name); err != nil {
		return nil, err
	}
	return &Student{Roll: roll, Name: name}, nil
}

// NewCourse validates and builds a Course.
func NewCourse(code, title string) (*Course, error) {
	if err := ValidateKey("code", code); err != nil {
		return nil, err
	}
	if err := validateText("title", title); err != nil {
		return nil, err
	}
	return &Course{Code: code, Title: title}, nil
}

// ValidateKey checks an identity key (roll or course code). Keys are stored
// as given; they must be non-empty and at most MaxKeyLength bytes.
func ValidateKey(field, key string) error {
	if key == "" {
		return ErrInvalidArgument.WithDetails(field + " is required")
	}
	if len(key) > MaxKeyLength {
		return ErrInvalidArgument.WithDetails(field + " is too long")
	}
	return nil
}

func validateText(field, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrInvalidArgument.WithDetails(field + " is required")
	}
	if len(text) > MaxTextLength {
		return ErrInvalidArgument.WithDetails(field + " is too long")
	}
	return nil
}
