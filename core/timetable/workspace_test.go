package timetable

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/timetable/core/model"
)

type recorder struct {
	mu      sync.Mutex
	changes []Change
}

func (r *recorder) Publish(c Change) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.changes = append(r.changes, c)
	return 1
}

func (r *recorder) actions() []Action {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Action, len(r.changes))
	for i, c := range r.changes {
		out[i] = c.Action
	}
	return out
}

func newWorkspace(t *testing.T) (*Workspace, *recorder) {
	t.Helper()
	rec := &recorder{}
	return New(model.DefaultSettings(), rec), rec
}

func slot(day string, p int) model.Slot { return model.Slot{Day: day, Period: p} }

func TestWorkspaceDefaults(t *testing.T) {
	w, _ := newWorkspace(t)
	s := w.Snapshot()
	assert.Equal(t, "Cape Coast Secondary", s.SchoolName)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}, s.Days)
	assert.Len(t, s.Periods, 8)
	assert.False(t, w.Generated())
	_, err := w.Grid()
	assert.ErrorIs(t, err, ErrNotGenerated)
}

func TestSchoolNameAndClosing(t *testing.T) {
	w, rec := newWorkspace(t)
	assert.ErrorIs(t, w.SetSchoolName("   "), ErrEmptyValue)
	require.NoError(t, w.SetSchoolName(" Accra Academy "))
	w.SetClosingTime("2:30 PM")
	s := w.Snapshot()
	assert.Equal(t, "Accra Academy", s.SchoolName)
	assert.Equal(t, "2:30 PM", s.ClosingTime)
	assert.Equal(t, []Action{ActionSchoolName, ActionClosingTime}, rec.actions())
}

func TestSetDaysDropsCells(t *testing.T) {
	w, _ := newWorkspace(t)
	w.Generate()
	require.NoError(t, w.SetCell(slot("Friday", 0), "Math"))
	require.NoError(t, w.SetCell(slot("Monday", 0), "English"))

	w.SetDays(nil)
	assert.Len(t, w.Snapshot().Days, 5, "empty selection is ignored")

	w.SetDays([]string{"Monday", "Monday", " Tuesday "})
	s := w.Snapshot()
	assert.Equal(t, []string{"Monday", "Tuesday"}, s.Days)
	assert.Equal(t, map[string]string{"Monday_0": "English"}, s.Filled)
}

func TestAddCustomDay(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.AddCustomDay("Special Day"))
	assert.ErrorIs(t, w.AddCustomDay("Special Day"), ErrDuplicateDay)
	assert.ErrorIs(t, w.AddCustomDay(""), ErrEmptyValue)
	assert.Equal(t, "Special Day", w.Snapshot().Days[5])
}

func TestAddPeriod(t *testing.T) {
	w, _ := newWorkspace(t)
	p, err := w.AddPeriod()
	require.NoError(t, err)
	assert.Equal(t, model.Period{Name: "Period 9", Start: "01:45 PM", End: "02:30 PM"}, p)
	_, err = w.AddPeriod()
	require.NoError(t, err)
	_, err = w.AddPeriod()
	assert.ErrorIs(t, err, ErrPeriodLimit)
}

func TestAddPeriodFallbacks(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.UpdatePeriod(7, "Period 8", "1:00 PM", "later"))
	p, err := w.AddPeriod()
	require.NoError(t, err)
	assert.Equal(t, model.Period{Name: "Period 9", Start: "8:00 AM", End: "8:45 AM"}, p)

	for len(w.Snapshot().Periods) > 0 {
		require.NoError(t, w.RemovePeriod(0))
	}
	p, err = w.AddPeriod()
	require.NoError(t, err)
	assert.Equal(t, model.Period{Name: "Period 1", Start: "7:30 AM", End: "8:15 AM"}, p)
}

func TestAddPeriodAfterRemoveKeepsNamesUnique(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.RemovePeriod(0))
	p, err := w.AddPeriod()
	require.NoError(t, err)
	assert.Equal(t, "Period 9", p.Name)

	require.NoError(t, w.UpdatePeriod(0, "Period 10", "7:30 AM", "8:15 AM"))
	p, err = w.AddPeriod()
	require.NoError(t, err)
	assert.Equal(t, "Period 11", p.Name)

	require.NoError(t, w.Replace(w.Snapshot()))
	_, err = Validate(w.Snapshot())
	assert.NoError(t, err)
}

func TestUpdatePeriodRenamesFixedItems(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 1", IsCustom: true, Text: "Assembly"}))
	require.NoError(t, w.UpdatePeriod(0, "Devotion", "7:30 AM", "8:00 AM"))
	s := w.Snapshot()
	assert.Equal(t, "Devotion", s.NonNegotiables[0].Period)
	assert.Equal(t, "7:30 AM - 8:00 AM", s.Periods[0].TimeRange())
	assert.ErrorIs(t, w.UpdatePeriod(1, "Devotion", "", ""), ErrInvalidSettings)
	assert.ErrorIs(t, w.UpdatePeriod(42, "x", "", ""), ErrUnknownPeriod)
}

func TestRemovePeriodShiftsCells(t *testing.T) {
	w, _ := newWorkspace(t)
	w.Generate()
	require.NoError(t, w.SetCell(slot("Monday", 0), "Math"))
	require.NoError(t, w.SetCell(slot("Monday", 1), "English"))
	require.NoError(t, w.SetCell(slot("Monday", 2), "Science"))

	require.NoError(t, w.RemovePeriod(1))
	s := w.Snapshot()
	assert.Len(t, s.Periods, 7)
	assert.Equal(t, map[string]string{"Monday_0": "Math", "Monday_1": "Science"}, s.Filled)
	assert.ErrorIs(t, w.RemovePeriod(-1), ErrUnknownPeriod)
}

func TestSubjects(t *testing.T) {
	w, _ := newWorkspace(t)
	require.NoError(t, w.AddSubject("Physical Education", 3))
	assert.ErrorIs(t, w.AddSubject("Math", 3), ErrDuplicateSubject)
	assert.ErrorIs(t, w.AddSubject("French", 0), ErrInvalidHours)
	assert.ErrorIs(t, w.AddSubject("French", 21), ErrInvalidHours)
	assert.ErrorIs(t, w.AddSubject(" ", 2), ErrEmptyValue)

	require.NoError(t, w.SetSubjectHours("Math", 6))
	require.NoError(t, w.SetSubjectNoClash("Math", true))
	assert.ErrorIs(t, w.SetSubjectHours("Math", 25), ErrInvalidHours)
	assert.ErrorIs(t, w.SetSubjectNoClash("Latin", true), ErrUnknownSubject)

	math, ok := w.Snapshot().Subjects.Get("Math")
	require.True(t, ok)
	assert.Equal(t, 6, math.HoursPerWeek)
	assert.True(t, math.NoClash)
}

func TestRemoveSubjectClearsCellsAndFixedItems(t *testing.T) {
	w, _ := newWorkspace(t)
	w.Generate()
	require.NoError(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 1", Subject: "ICT"}))
	require.NoError(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 2", IsCustom: true, Text: "ICT"}))
	require.NoError(t, w.SetCell(slot("Tuesday", 3), "ICT"))
	require.NoError(t, w.SetCell(slot("Tuesday", 4), "Math"))

	require.NoError(t, w.RemoveSubject("ICT"))
	s := w.Snapshot()
	assert.False(t, s.Subjects.Has("ICT"))
	require.Len(t, s.NonNegotiables, 1, "custom text items survive")
	assert.True(t, s.NonNegotiables[0].IsCustom)
	assert.Equal(t, map[string]string{"Tuesday_4": "Math", "Monday_1": "ICT"}, s.Filled)
	assert.ErrorIs(t, w.RemoveSubject("ICT"), ErrUnknownSubject)
}

func TestFixedItems(t *testing.T) {
	w, _ := newWorkspace(t)
	w.Generate()
	assembly := model.FixedItem{Day: "Monday", Period: "Period 1", IsCustom: true, Text: "Assembly"}
	require.NoError(t, w.AddFixedItem(assembly))

	assert.ErrorIs(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 1", Subject: "Math"}), ErrSlotAlreadyFixed)
	assert.ErrorIs(t, w.AddFixedItem(model.FixedItem{Day: "Sunday", Period: "Period 1", Subject: "Math"}), ErrUnknownDay)
	assert.ErrorIs(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 42", Subject: "Math"}), ErrUnknownPeriod)
	assert.ErrorIs(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 2", IsCustom: true}), ErrEmptyValue)
	assert.ErrorIs(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 2", Subject: "Latin"}), ErrUnknownSubject)

	assert.ErrorIs(t, w.SetCell(slot("Monday", 0), "Math"), ErrSlotFixed)
	assert.ErrorIs(t, w.ClearCell(slot("Monday", 0)), ErrSlotFixed)

	g, err := w.Grid()
	require.NoError(t, err)
	assert.Equal(t, Cell{Value: "Assembly", Fixed: true}, g.Rows[0].Cells[0])

	require.NoError(t, w.UpdateFixedItem(0, model.FixedItem{Day: "Tuesday", Period: "Period 1", Subject: "Math"}))
	s := w.Snapshot()
	assert.Equal(t, map[string]string{"Tuesday_0": "Math"}, s.Filled)
	require.NoError(t, w.SetCell(slot("Monday", 0), "English"), "old slot is unlocked")

	require.NoError(t, w.RemoveFixedItem(0))
	assert.NotContains(t, w.Snapshot().Filled, "Tuesday_0")
	assert.ErrorIs(t, w.RemoveFixedItem(0), ErrUnknownFixedItem)
}

func TestSetCell(t *testing.T) {
	w, rec := newWorkspace(t)
	assert.ErrorIs(t, w.SetCell(slot("Monday", 0), "Math"), ErrNotGenerated)
	w.Generate()
	require.NoError(t, w.SetCell(slot("Monday", 0), "Math"))
	require.NoError(t, w.SetCell(slot("Monday", 1), "P.E"))
	assert.ErrorIs(t, w.SetCell(slot("Sunday", 0), "Math"), ErrUnknownDay)
	assert.ErrorIs(t, w.SetCell(slot("Monday", 8), "Math"), ErrUnknownPeriod)

	g, err := w.Grid()
	require.NoError(t, err)
	assert.Equal(t, Cell{Value: "Math", IsSubject: true}, g.Rows[0].Cells[0])
	assert.Equal(t, Cell{Value: "P.E"}, g.Rows[0].Cells[1])

	require.NoError(t, w.SetCell(slot("Monday", 0), ""))
	assert.NotContains(t, w.Snapshot().Filled, "Monday_0")
	assert.Equal(t, []Action{ActionGenerate, ActionSetCell, ActionSetCell, ActionClearCell}, rec.actions())
	assert.Equal(t, 1, rec.changes[3].Filled)
}

type stubFiller struct{ proposals []model.Assignment }

func (f stubFiller) Fill(model.Settings) ([]model.Assignment, error) { return f.proposals, nil }

func TestAutoFillNeverOverwrites(t *testing.T) {
	w, _ := newWorkspace(t)
	_, err := w.AutoFill(stubFiller{})
	assert.ErrorIs(t, err, ErrNotGenerated)

	w.Generate()
	require.NoError(t, w.AddFixedItem(model.FixedItem{Day: "Monday", Period: "Period 1", IsCustom: true, Text: "Assembly"}))
	require.NoError(t, w.SetCell(slot("Monday", 1), "English"))

	n, err := w.AutoFill(stubFiller{proposals: []model.Assignment{
		{Slot: slot("Monday", 0), Value: "Math"},
		{Slot: slot("Monday", 1), Value: "Math"},
		{Slot: slot("Monday", 2), Value: "Math"},
		{Slot: slot("Sunday", 2), Value: "Math"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	s := w.Snapshot()
	assert.Equal(t, "Assembly", s.Filled["Monday_0"])
	assert.Equal(t, "English", s.Filled["Monday_1"])
	assert.Equal(t, "Math", s.Filled["Monday_2"])
}

func TestReplaceAndReset(t *testing.T) {
	w, rec := newWorkspace(t)
	doc := model.DefaultSettings()
	doc.SchoolName = "Mfantsipim"
	doc.Filled["Monday_0"] = "Math"
	doc.Filled["Saturday_0"] = "Math"
	doc.Filled["Monday_99"] = "Math"
	doc.Filled["garbage"] = "Math"
	require.NoError(t, w.Replace(doc))
	assert.True(t, w.Generated())
	s := w.Snapshot()
	assert.Equal(t, "Mfantsipim", s.SchoolName)
	assert.Equal(t, map[string]string{"Monday_0": "Math"}, s.Filled)

	bad := model.DefaultSettings()
	bad.Subjects = append(bad.Subjects, model.Subject{Name: "Math", HoursPerWeek: 2})
	assert.ErrorIs(t, w.Replace(bad), ErrInvalidSettings)

	w.Reset()
	assert.False(t, w.Generated())
	assert.Equal(t, model.DefaultSchoolName, w.Snapshot().SchoolName)
	assert.Equal(t, []Action{ActionImport, ActionReset}, rec.actions())
}

func TestSummary(t *testing.T) {
	w, _ := newWorkspace(t)
	w.Generate()
	require.NoError(t, w.AddFixedItem(model.FixedItem{Day: "Friday", Period: "Period 8", Subject: "ICT"}))
	require.NoError(t, w.SetCell(slot("Monday", 0), "ICT"))
	require.NoError(t, w.SetCell(slot("Monday", 1), "Break"))

	sum := w.Summary()
	assert.Equal(t, 8, sum.Periods)
	assert.Equal(t, 1, sum.FixedItems)
	assert.Equal(t, 3, sum.FilledCells)
	var ict SubjectHours
	for _, h := range sum.Hours {
		if h.Subject == "ICT" {
			ict = h
		}
	}
	assert.Equal(t, SubjectHours{Subject: "ICT", Used: 2, Target: 2}, ict)
}

func TestGridRecords(t *testing.T) {
	s := model.DefaultSettings()
	s.Days = []string{"Monday"}
	s.Periods = s.Periods[:2]
	s.Filled["Monday_1"] = "Math"
	g := BuildGrid(s)
	assert.Equal(t, []string{"Days", "Period 1", "Period 2", "Closing"}, g.Header())
	assert.Equal(t, [][]string{{"Monday", "", "Math", "3:00 PM"}}, g.Records())
}

func TestIsValidation(t *testing.T) {
	w, _ := newWorkspace(t)
	err := w.AddSubject("Math", 2)
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(assert.AnError))
}
