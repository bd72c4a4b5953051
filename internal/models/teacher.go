package models

// Subject is a teachable subject.
type Subject struct {
	ID   int    `json:"id"`
	Name string `json:"subject_name"`
}

// ClassCategory groups subjects by class level (e.g. "1 to 5").
type ClassCategory struct {
	ID       int       `json:"id"`
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects,omitempty"`
}

// SubjectByID returns the subject with the given id.
func (c ClassCategory) SubjectByID(id int) (Subject, bool) {
	for _, s := range c.Subjects {
		if s.ID == id {
			return s, true
		}
	}
	return Subject{}, false
}

// JobRole is a role a teacher is open to.
type JobRole struct {
	ID   int    `json:"id"`
	Name string `json:"jobrole_name"`
}

// Skill is a declared teacher skill.
type Skill struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// TeacherAddress is one of a teacher's addresses.
type TeacherAddress struct {
	AddressType string `json:"address_type,omitempty"`
	Pincode     string `json:"pincode"`
	Area        string `json:"area,omitempty"`
	District    string `json:"district,omitempty"`
	State       string `json:"state,omitempty"`
}

// TeacherPreference captures what and where a teacher wants to teach.
type TeacherPreference struct {
	ClassCategories []ClassCategory `json:"class_category"`
	Subjects        []Subject       `json:"prefered_subject"`
	JobRoles        []JobRole       `json:"job_role"`
}

// TeacherRecord is a read-only teacher profile returned by the search API.
type TeacherRecord struct {
	ID          int                 `json:"id"`
	FullName    string              `json:"full_name"`
	Email       string              `json:"email,omitempty"`
	Addresses   []TeacherAddress    `json:"addresses"`
	Preferences []TeacherPreference `json:"preferences"`
	Skills      []Skill             `json:"skills"`
	Score       *float64            `json:"score,omitempty"`
	Rating      *float64            `json:"rating,omitempty"`
}

// HasClassCategory reports whether any preference lists the category.
func (t TeacherRecord) HasClassCategory(id int) bool {
	for _, pref := range t.Preferences {
		for _, cat := range pref.ClassCategories {
			if cat.ID == id {
				return true
			}
		}
	}
	return false
}

// HasAnySubject reports whether any preference subject is in ids.
func (t TeacherRecord) HasAnySubject(ids []int) bool {
	if len(ids) == 0 {
		return false
	}
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	for _, pref := range t.Preferences {
		for _, subject := range pref.Subjects {
			if _, ok := wanted[subject.ID]; ok {
				return true
			}
		}
	}
	return false
}

// HasPincode reports whether any address carries the pincode.
func (t TeacherRecord) HasPincode(pincode string) bool {
	for _, addr := range t.Addresses {
		if addr.Pincode == pincode {
			return true
		}
	}
	return false
}
