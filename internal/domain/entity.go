package domain

import (
	"fmt"
	"strings"
)

// EntityType names one of the five content tables.
type EntityType string

const (
	Courses   EntityType = "courses"
	Modules   EntityType = "modules"
	Lessons   EntityType = "lessons"
	Profiles  EntityType = "profiles"
	Questions EntityType = "questions"
)

// AllEntities lists the entity types in canonical order.
var AllEntities = []EntityType{Courses, Modules, Lessons, Profiles, Questions}

// ParseEntityType accepts plural and singular names, case-insensitively.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "courses", "course":
		return Courses, nil
	case "modules", "module":
		return Modules, nil
	case "lessons", "lesson":
		return Lessons, nil
	case "profiles", "profile":
		return Profiles, nil
	case "questions", "question":
		return Questions, nil
	}
	return "", fmt.Errorf("unknown entity type %q", s)
}

// Bundle groups the five entity arrays. Its JSON form is the static content
// document shape.
type Bundle struct {
	Courses   []Record `json:"courses" yaml:"courses"`
	Modules   []Record `json:"modules" yaml:"modules"`
	Lessons   []Record `json:"lessons" yaml:"lessons"`
	Profiles  []Record `json:"profiles" yaml:"profiles"`
	Questions []Record `json:"questions" yaml:"questions"`
}

func (b *Bundle) Get(e EntityType) []Record {
	switch e {
	case Courses:
		return b.Courses
	case Modules:
		return b.Modules
	case Lessons:
		return b.Lessons
	case Profiles:
		return b.Profiles
	case Questions:
		return b.Questions
	}
	return nil
}

func (b *Bundle) Set(e EntityType, records []Record) {
	switch e {
	case Courses:
		b.Courses = records
	case Modules:
		b.Modules = records
	case Lessons:
		b.Lessons = records
	case Profiles:
		b.Profiles = records
	case Questions:
		b.Questions = records
	}
}

// Append adds records to the entity array.
func (b *Bundle) Append(e EntityType, records ...Record) {
	b.Set(e, append(b.Get(e), records...))
}

// Len is the total number of records across all entity arrays.
func (b *Bundle) Len() int {
	n := 0
	for _, e := range AllEntities {
		n += len(b.Get(e))
	}
	return n
}
