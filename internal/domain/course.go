package domain

import (
	"strconv"
	"strings"
)

// Course is the typed view over a course record.
// Leaves keep Records as-is; these views exist for consumers (CSV export, apps
// listing) that want named fields. AppID is always the resolved app.
type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Paid        bool   `json:"paid"`
	Status      string `json:"status"`
	AppID       string `json:"appId"`
	Source      Source `json:"_source"`
}

type Module struct {
	ID          string `json:"id"`
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	AppID       string `json:"appId"`
	Source      Source `json:"_source"`
}

type Lesson struct {
	ID       string `json:"id"`
	ModuleID string `json:"moduleId"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Order    int    `json:"order"`
	Free     bool   `json:"free"`
	AppID    string `json:"appId"`
	Source   Source `json:"_source"`
}

type Profile struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Admin      bool   `json:"admin"`
	Subscribed bool   `json:"subscribed"`
	AppID      string `json:"appId"`
	Source     Source `json:"_source"`
}

type Question struct {
	ID           string   `json:"id"`
	LessonID     string   `json:"lessonId"`
	Prompt       string   `json:"prompt"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
	Difficulty   string   `json:"difficulty"`
	AppID        string   `json:"appId"`
	Source       Source   `json:"_source"`
}

// Apps name the same concept differently; these lists hold the accepted
// column names, most common first.
var (
	courseRefFields   = []string{"courseId", "course_id"}
	moduleRefFields   = []string{"moduleId", "module_id"}
	lessonRefFields   = []string{"lessonId", "lesson_id"}
	orderFields       = []string{"order", "order_index", "orderIndex", "position"}
	categoryFields    = []string{"category", "subdomain"}
	promptFields      = []string{"question", "prompt", "text"}
	optionsFields     = []string{"options", "answers", "choices"}
	correctFields     = []string{"correctAnswer", "correct_answer", "correctIndex", "correct_index"}
	adminFields       = []string{"is_admin", "isAdmin", "admin"}
	subscribedFields  = []string{"is_subscribed", "isSubscribed", "newsletter", "subscribed"}
	paidFields        = []string{"is_paid", "isPaid", "paid", "premium"}
	freeFields        = []string{"is_free", "isFree", "free"}
	descriptionFields = []string{"description", "summary"}
)

func CourseFromRecord(r Record) Course {
	c := Course{
		ID:          r.ID(),
		Title:       r.String("title"),
		Slug:        r.String("slug"),
		Description: firstString(r, descriptionFields...),
		Category:    firstString(r, categoryFields...),
		Status:      r.String("status"),
		AppID:       ResolveAppID(r),
		Source:      r.Source(),
	}
	if paid, ok := firstBool(r, paidFields...); ok {
		c.Paid = paid
	} else if price, ok := firstFloat(r, "price"); ok {
		c.Paid = price > 0
	}
	if c.Status == "" {
		if pub, ok := firstBool(r, "published", "is_published"); ok {
			c.Status = "draft"
			if pub {
				c.Status = "published"
			}
		}
	}
	return c
}

func ModuleFromRecord(r Record) Module {
	order, _ := firstFloat(r, orderFields...)
	return Module{
		ID:          r.ID(),
		CourseID:    firstString(r, courseRefFields...),
		Title:       r.String("title"),
		Description: firstString(r, descriptionFields...),
		Order:       int(order),
		AppID:       ResolveAppID(r),
		Source:      r.Source(),
	}
}

func LessonFromRecord(r Record) Lesson {
	order, _ := firstFloat(r, orderFields...)
	l := Lesson{
		ID:       r.ID(),
		ModuleID: firstString(r, moduleRefFields...),
		Title:    r.String("title"),
		Content:  firstString(r, "content", "body"),
		Order:    int(order),
		AppID:    ResolveAppID(r),
		Source:   r.Source(),
	}
	if free, ok := firstBool(r, freeFields...); ok {
		l.Free = free
	} else if paid, ok := firstBool(r, paidFields...); ok {
		l.Free = !paid
	}
	return l
}

func ProfileFromRecord(r Record) Profile {
	p := Profile{
		ID:     r.ID(),
		Email:  r.String("email"),
		AppID:  ResolveAppID(r),
		Source: r.Source(),
	}
	p.Admin, _ = firstBool(r, adminFields...)
	if !p.Admin && strings.EqualFold(r.String("role"), "admin") {
		p.Admin = true
	}
	p.Subscribed, _ = firstBool(r, subscribedFields...)
	return p
}

func QuestionFromRecord(r Record) Question {
	q := Question{
		ID:         r.ID(),
		LessonID:   firstString(r, lessonRefFields...),
		Prompt:     firstString(r, promptFields...),
		Difficulty: r.String("difficulty"),
		AppID:      ResolveAppID(r),
		Source:     r.Source(),
	}
	for _, f := range optionsFields {
		if arr, ok := r[f].([]any); ok {
			for _, v := range arr {
				q.Options = append(q.Options, stringify(v))
			}
			break
		}
	}
	if idx, ok := firstFloat(r, correctFields...); ok {
		q.CorrectIndex = int(idx)
	} else {
		q.CorrectIndex = -1
	}
	return q
}

func firstString(r Record, keys ...string) string {
	for _, k := range keys {
		if s := r.String(k); s != "" {
			return s
		}
	}
	return ""
}

func firstBool(r Record, keys ...string) (bool, bool) {
	for _, k := range keys {
		switch v := r[k].(type) {
		case bool:
			return v, true
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
				return b, true
			}
		case float64:
			return v != 0, true
		}
	}
	return false, false
}

func firstFloat(r Record, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch v := r[k].(type) {
		case float64:
			return v, true
		case int:
			return float64(v), true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}
