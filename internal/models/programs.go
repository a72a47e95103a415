// internal/models/programs.go
package models

import (
	"strings"

	"github.com/gosimple/slug"
)

const FacultyNotSpecified = "Not specified"

var facultyKeywords = []struct {
	faculty  string
	keywords []string
}{
	{"Malawi Institute of Technology", []string{"computer", "information technology"}},
	{"Ndata School of Climate and Earth Sciences", []string{"environmental", "climate", "earth"}},
	{"Bingu School of Culture and Heritage", []string{"cultural", "heritage"}},
	{"Academy of Medical Sciences", []string{"medicine", "medical", "biomedical"}},
}

// FacultyForProgram maps a programme title to its owning faculty by keyword.
func FacultyForProgram(program string) string {
	p := strings.ToLower(program)
	if strings.TrimSpace(p) == "" {
		return FacultyNotSpecified
	}
	for _, f := range facultyKeywords {
		for _, kw := range f.keywords {
			if strings.Contains(p, kw) {
				return f.faculty
			}
		}
	}
	return FacultyNotSpecified
}

// ProgramSlug is the URL/search-safe key of a programme title.
func ProgramSlug(program string) string {
	return slug.Make(program)
}
