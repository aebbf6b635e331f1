package models

import "slices"

// Class is the roster entry for a course, maintained by the class registry.
type Class struct {
	Meta
	Code      string `json:"code"`
	Name      string `json:"name"`
	Year      string `json:"year"`
	Semester  string `json:"semester"`
	IsDeleted bool   `json:"is_deleted"`
}

// Student is the roster entry for a learner, maintained by the student registry.
type Student struct {
	Meta
	StudentNumber   string   `json:"student_number"`
	Name            string   `json:"name"`
	EnrolledClasses []string `json:"enrolled_classes"`
	IsDeleted       bool     `json:"is_deleted"`
}

// EnrolledIn reports whether the student is an active member of the class.
func (s Student) EnrolledIn(classID string) bool {
	return !s.IsDeleted && slices.Contains(s.EnrolledClasses, classID)
}
