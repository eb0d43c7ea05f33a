package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"content-hub/internal/domain"
)

// Keep header order EXACT; downstream sheets import by position.
var coursesHeader = []string{
	"COURSE_ID",
	"COURSE_TITLE",
	"COURSE_SLUG",
	"COURSE_DESCRIPTION",
	"CATEGORY",
	"PAID",
	"STATUS",
	"APP_ID",
	"APP_NAME",
	"SOURCE",
}

// WriteCoursesCSV writes the flat course catalog.
func WriteCoursesCSV(w io.Writer, courses []domain.Course, appName func(string) string) error {
	cw := csv.NewWriter(w)
	// match typical templates
	cw.UseCRLF = true

	if err := cw.Write(coursesHeader); err != nil {
		return err
	}
	for _, c := range courses {
		if err := cw.Write(toCourseRow(c, appName)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toCourseRow(c domain.Course, appName func(string) string) []string {
	status := c.Status
	if status == "" {
		status = "draft"
	}
	name := ""
	if appName != nil && c.AppID != domain.UnknownApp {
		name = appName(c.AppID)
	}
	return []string{
		c.ID,                       // COURSE_ID
		clean(c.Title),             // COURSE_TITLE
		c.Slug,                     // COURSE_SLUG
		clean(c.Description),       // COURSE_DESCRIPTION
		c.Category,                 // CATEGORY
		strconv.FormatBool(c.Paid), // PAID
		status,                     // STATUS
		c.AppID,                    // APP_ID
		name,                       // APP_NAME
		string(c.Source),           // SOURCE
	}
}

// clean flattens newlines so each course stays on one row.
func clean(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\r", " ")
}
