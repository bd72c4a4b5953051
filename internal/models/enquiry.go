package models

// Enquiry is the payload posted to the backend when a visitor submits the wizard.
type Enquiry struct {
	TeacherType       TeacherType `json:"teacher_type"`
	ClassCategory     int         `json:"class_category"`
	ClassCategoryName string      `json:"class_category_name,omitempty"`
	Subjects          []int       `json:"subjects"`
	SubjectNames      []string    `json:"subject_names,omitempty"`
	Pincode           string      `json:"pincode"`
	Area              string      `json:"area,omitempty"`
	State             string      `json:"state,omitempty"`
	City              string      `json:"city,omitempty"`
	Email             string      `json:"email"`
	Contact           string      `json:"contact"`
}

// EnquiryReceipt is the backend's acknowledgement.
type EnquiryReceipt struct {
	ID int `json:"id"`
}
