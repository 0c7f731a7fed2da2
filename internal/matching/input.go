package matching

import (
	"sort"
	"strings"

	"lostfound/internal/model"
	"lostfound/internal/storage"
)

// ItemInput is the report form submitted for a lost or found item.
type ItemInput struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Location      string `json:"location"`
	DateLostFound string `json:"date_lost_found"`
	ContactInfo   string `json:"contact_info"`
	ImageURL      string `json:"image_url,omitempty"`
}

// ValidationError lists the offending fields of a request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

func trimmed(in ItemInput) ItemInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.TrimSpace(in.Category)
	in.Location = strings.TrimSpace(in.Location)
	in.DateLostFound = strings.TrimSpace(in.DateLostFound)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	return in
}

// Validate checks that every required field is present and the category is known.
func (in ItemInput) Validate() error {
	in = trimmed(in)
	v := &ValidationError{}
	required := []struct{ name, val string }{
		{"title", in.Title},
		{"description", in.Description},
		{"category", in.Category},
		{"location", in.Location},
		{"date_lost_found", in.DateLostFound},
		{"contact_info", in.ContactInfo},
	}
	for _, f := range required {
		if f.val == "" {
			v.add(f.name, "required")
		}
	}
	if in.Category != "" && !model.IsCategory(in.Category) {
		v.add("category", "unknown category")
	}
	return v.orNil()
}

func (in ItemInput) item(userID string, status model.Status) model.Item {
	in = trimmed(in)
	return model.Item{
		UserID:        userID,
		Title:         in.Title,
		Description:   in.Description,
		Category:      in.Category,
		Status:        status,
		Location:      in.Location,
		DateLostFound: in.DateLostFound,
		ContactInfo:   in.ContactInfo,
		ImageURL:      in.ImageURL,
	}
}

// trimUpdate returns a copy of u with every set string field trimmed.
func trimUpdate(u storage.ItemUpdate) storage.ItemUpdate {
	trim := func(p *string) *string {
		if p == nil {
			return nil
		}
		t := strings.TrimSpace(*p)
		return &t
	}
	u.Title = trim(u.Title)
	u.Description = trim(u.Description)
	u.Category = trim(u.Category)
	u.Location = trim(u.Location)
	u.DateLostFound = trim(u.DateLostFound)
	u.ContactInfo = trim(u.ContactInfo)
	u.ImageURL = trim(u.ImageURL)
	return u
}

// validateUpdate applies the report-form rules to the fields of a trimmed
// update.
func validateUpdate(u storage.ItemUpdate) error {
	v := &ValidationError{}
	check := func(name string, p *string) {
		if p != nil && *p == "" {
			v.add(name, "must not be empty")
		}
	}
	check("title", u.Title)
	check("description", u.Description)
	check("category", u.Category)
	check("location", u.Location)
	check("date_lost_found", u.DateLostFound)
	check("contact_info", u.ContactInfo)
	if u.Category != nil && *u.Category != "" && !model.IsCategory(*u.Category) {
		v.add("category", "unknown category")
	}
	return v.orNil()
}
