package service

import "github.com/noah-isme/teacherhub-gateway/internal/models"

// FilterFromSelection seeds the results filter. Slices are copied so filter
// edits never reach the selection.
func FilterFromSelection(sel models.Selection) models.FilterState {
	f := models.FilterState{Pincode: sel.Pincode}
	if sel.ClassCategoryID != nil {
		f.ClassCategoryID = models.IntPtr(*sel.ClassCategoryID)
	}
	if len(sel.SubjectIDs) > 0 {
		f.SubjectIDs = append([]int(nil), sel.SubjectIDs...)
	}
	return f
}

// ApplyFilter returns the records matching every populated filter field.
// Empty fields are ignored. The input slice is not modified.
func ApplyFilter(records []models.TeacherRecord, f models.FilterState) []models.TeacherRecord {
	out := make([]models.TeacherRecord, 0, len(records))
	for _, rec := range records {
		if f.ClassCategoryID != nil && !rec.HasClassCategory(*f.ClassCategoryID) {
			continue
		}
		if len(f.SubjectIDs) > 0 && !rec.HasAnySubject(f.SubjectIDs) {
			continue
		}
		if f.Pincode != "" && !rec.HasPincode(f.Pincode) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
