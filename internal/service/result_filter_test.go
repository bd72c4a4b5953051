package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/teacherhub-gateway/internal/models"
)

func teacherFixture(id int, category int, subjects []int, pincode string) models.TeacherRecord {
	pref := models.TeacherPreference{ClassCategories: []models.ClassCategory{{ID: category}}}
	for _, s := range subjects {
		pref.Subjects = append(pref.Subjects, models.Subject{ID: s})
	}
	return models.TeacherRecord{
		ID:          id,
		Addresses:   []models.TeacherAddress{{Pincode: pincode}},
		Preferences: []models.TeacherPreference{pref},
	}
}

func TestApplyFilterPredicates(t *testing.T) {
	records := []models.TeacherRecord{
		teacherFixture(1, 1, []int{3}, "800001"),
		teacherFixture(2, 1, []int{5}, "800001"),
		teacherFixture(3, 2, []int{3}, "800002"),
	}

	all := ApplyFilter(records, models.FilterState{})
	assert.Len(t, all, 3)

	byCategory := ApplyFilter(records, models.FilterState{ClassCategoryID: models.IntPtr(1)})
	assert.Equal(t, []int{1, 2}, ids(byCategory))

	bySubject := ApplyFilter(records, models.FilterState{SubjectIDs: []int{3, 9}})
	assert.Equal(t, []int{1, 3}, ids(bySubject))

	combined := ApplyFilter(records, models.FilterState{ClassCategoryID: models.IntPtr(1), SubjectIDs: []int{3}, Pincode: "800001"})
	assert.Equal(t, []int{1}, ids(combined))

	none := ApplyFilter(records, models.FilterState{Pincode: "110001"})
	assert.Empty(t, none)
}

func TestApplyFilterIsIdempotent(t *testing.T) {
	records := []models.TeacherRecord{
		teacherFixture(1, 1, []int{3}, "800001"),
		teacherFixture(2, 1, []int{5}, "800001"),
	}
	f := models.FilterState{SubjectIDs: []int{3}}
	once := ApplyFilter(records, f)
	twice := ApplyFilter(once, f)
	assert.Equal(t, once, twice)
	assert.Len(t, records, 2)
}

func TestFilterFromSelectionCopies(t *testing.T) {
	sel := models.Selection{ClassCategoryID: models.IntPtr(1), SubjectIDs: []int{3, 5}, Pincode: "800001"}
	f := FilterFromSelection(sel)
	f.SubjectIDs[0] = 99
	*f.ClassCategoryID = 7

	assert.Equal(t, []int{3, 5}, sel.SubjectIDs)
	assert.Equal(t, 1, *sel.ClassCategoryID)
	assert.Equal(t, "800001", f.Pincode)
}

func ids(records []models.TeacherRecord) []int {
	out := make([]int, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
