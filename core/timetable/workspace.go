// Package timetable holds the in-memory timetable workspace: the school
// profile, subjects, fixed items and the manually filled grid.
package timetable

import (
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/kilianp07/timetable/core/model"
)

// Workspace is the concurrency-safe state holder behind the UI and API.
// Every successful mutation is published as a Change.
type Workspace struct {
	mu        sync.RWMutex
	s         model.Settings
	defaults  model.Settings
	generated bool
	pub       Publisher
	now       func() time.Time
}

// New creates a workspace starting from initial. A nil publisher discards
// changes.
func New(initial model.Settings, pub Publisher) *Workspace {
	if pub == nil {
		pub = nopPublisher{}
	}
	initial = normalise(initial.Clone())
	return &Workspace{s: initial, defaults: initial.Clone(), pub: pub, now: time.Now}
}

// Snapshot returns a deep copy of the current settings.
func (w *Workspace) Snapshot() model.Settings {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.s.Clone()
}

// Generated reports whether the blank timetable has been generated.
func (w *Workspace) Generated() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.generated
}

// commit publishes a change. Callers hold the write lock.
func (w *Workspace) commit(a Action, target, value string) {
	w.pub.Publish(Change{Action: a, Target: target, Value: value, At: w.now(), Filled: filledCount(w.s)})
}

// SetSchoolName renames the school.
func (w *Workspace) SetSchoolName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("school name: %w", ErrEmptyValue)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s.SchoolName = name
	w.commit(ActionSchoolName, "", name)
	return nil
}

// SetClosingTime sets the free text shown in the closing column.
func (w *Workspace) SetClosingTime(text string) {
	text = strings.TrimSpace(text)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s.ClosingTime = text
	w.commit(ActionClosingTime, "", text)
}

// SetDays replaces the day selection. An empty selection is ignored. Cells on
// days that are no longer selected are dropped.
func (w *Workspace) SetDays(days []string) {
	days = uniqueTrimmed(days)
	if len(days) == 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s.Days = days
	w.dropOrphanCells()
	w.commit(ActionDays, "", strings.Join(days, ","))
}

// AddCustomDay appends a day outside the standard week.
func (w *Workspace) AddCustomDay(day string) error {
	day = strings.TrimSpace(day)
	if day == "" {
		return fmt.Errorf("day: %w", ErrEmptyValue)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.HasDay(day) {
		return fmt.Errorf("%q: %w", day, ErrDuplicateDay)
	}
	w.s.Days = append(w.s.Days, day)
	w.commit(ActionAddDay, day, "")
	return nil
}

// AddPeriod appends a 45 minute period after the last one.
func (w *Workspace) AddPeriod() (model.Period, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.s.Periods) >= model.MaxPeriods {
		return model.Period{}, fmt.Errorf("%d periods: %w", model.MaxPeriods, ErrPeriodLimit)
	}
	p := nextPeriod(w.s.Periods)
	w.s.Periods = append(w.s.Periods, p)
	w.commit(ActionAddPeriod, p.Name, p.TimeRange())
	return p, nil
}

func nextPeriod(existing []model.Period) model.Period {
	name := freePeriodName(existing)
	if len(existing) == 0 {
		return model.Period{Name: "Period 1", Start: "7:30 AM", End: "8:15 AM"}
	}
	last, err := model.ParseClock(existing[len(existing)-1].End)
	if err != nil {
		return model.Period{Name: name, Start: "8:00 AM", End: "8:45 AM"}
	}
	return model.NewPeriod(name, last, model.DefaultPeriodLength)
}

// freePeriodName returns "Period N" for the first N from len+1 upwards that
// no existing period uses.
func freePeriodName(existing []model.Period) string {
	taken := make(map[string]bool, len(existing))
	for _, p := range existing {
		taken[p.Name] = true
	}
	for n := len(existing) + 1; ; n++ {
		if name := fmt.Sprintf("Period %d", n); !taken[name] {
			return name
		}
	}
}

// UpdatePeriod edits period i. Fixed items follow a rename.
func (w *Workspace) UpdatePeriod(i int, name, start, end string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("period name: %w", ErrEmptyValue)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.s.Periods) {
		return fmt.Errorf("period %d: %w", i, ErrUnknownPeriod)
	}
	old := w.s.Periods[i].Name
	if name != old && w.s.PeriodIndex(name) >= 0 {
		return fmt.Errorf("period %q: %w", name, ErrInvalidSettings)
	}
	w.s.Periods[i] = model.Period{Name: name, Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if name != old {
		for j := range w.s.NonNegotiables {
			if w.s.NonNegotiables[j].Period == old {
				w.s.NonNegotiables[j].Period = name
			}
		}
	}
	w.commit(ActionUpdatePeriod, name, w.s.Periods[i].TimeRange())
	return nil
}

// RemovePeriod deletes period i; later cells shift down one index.
func (w *Workspace) RemovePeriod(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.s.Periods) {
		return fmt.Errorf("period %d: %w", i, ErrUnknownPeriod)
	}
	removed := w.s.Periods[i].Name
	w.s.Periods = slices.Delete(w.s.Periods, i, i+1)
	shifted := make(map[string]string, len(w.s.Filled))
	for key, v := range w.s.Filled {
		slot, err := model.ParseSlot(key)
		if err != nil || slot.Period == i {
			continue
		}
		if slot.Period > i {
			slot.Period--
		}
		shifted[slot.Key()] = v
	}
	w.s.Filled = shifted
	w.dropOrphanCells()
	w.commit(ActionRemovePeriod, removed, "")
	return nil
}

// AddSubject registers a subject with its weekly target.
func (w *Workspace) AddSubject(name string, hours int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("subject name: %w", ErrEmptyValue)
	}
	if !model.ValidHours(hours) {
		return fmt.Errorf("%d: %w", hours, ErrInvalidHours)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.s.Subjects.Has(name) {
		return fmt.Errorf("subject %q: %w", name, ErrDuplicateSubject)
	}
	w.s.Subjects = append(w.s.Subjects, model.Subject{Name: name, HoursPerWeek: hours})
	w.commit(ActionAddSubject, name, fmt.Sprint(hours))
	return nil
}

// SetSubjectHours changes a subject's weekly target.
func (w *Workspace) SetSubjectHours(name string, hours int) error {
	if !model.ValidHours(hours) {
		return fmt.Errorf("%d: %w", hours, ErrInvalidHours)
	}
	return w.updateSubject(name, func(s *model.Subject) { s.HoursPerWeek = hours }, fmt.Sprint(hours))
}

// SetSubjectNoClash flags or unflags a strict subject.
func (w *Workspace) SetSubjectNoClash(name string, noClash bool) error {
	return w.updateSubject(name, func(s *model.Subject) { s.NoClash = noClash }, fmt.Sprintf("no_clash=%t", noClash))
}

func (w *Workspace) updateSubject(name string, fn func(*model.Subject), value string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.s.Subjects.Index(name)
	if i < 0 {
		return fmt.Errorf("subject %q: %w", name, ErrUnknownSubject)
	}
	fn(&w.s.Subjects[i])
	w.commit(ActionUpdateSubject, name, value)
	return nil
}

// RemoveSubject deletes a subject, the cells holding it and the fixed items
// pinning it.
func (w *Workspace) RemoveSubject(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	i := w.s.Subjects.Index(name)
	if i < 0 {
		return fmt.Errorf("subject %q: %w", name, ErrUnknownSubject)
	}
	w.s.Subjects = slices.Delete(w.s.Subjects, i, i+1)
	w.s.NonNegotiables = slices.DeleteFunc(w.s.NonNegotiables, func(f model.FixedItem) bool {
		return !f.IsCustom && f.Subject == name
	})
	for key, v := range w.s.Filled {
		if v == name {
			delete(w.s.Filled, key)
		}
	}
	w.stampFixed()
	w.commit(ActionRemoveSubject, name, "")
	return nil
}

// AddFixedItem locks a slot and stamps its value into the grid.
func (w *Workspace) AddFixedItem(item model.FixedItem) error {
	item = trimFixed(item)
	w.mu.Lock()
	defer w.mu.Unlock()
	slot, err := w.validateFixed(item, -1)
	if err != nil {
		return err
	}
	w.s.NonNegotiables = append(w.s.NonNegotiables, item)
	w.s.Filled[slot.Key()] = item.Value()
	w.commit(ActionAddFixed, slot.Key(), item.Value())
	return nil
}

// UpdateFixedItem replaces fixed item i.
func (w *Workspace) UpdateFixedItem(i int, item model.FixedItem) error {
	item = trimFixed(item)
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.s.NonNegotiables) {
		return fmt.Errorf("fixed item %d: %w", i, ErrUnknownFixedItem)
	}
	slot, err := w.validateFixed(item, i)
	if err != nil {
		return err
	}
	w.unstamp(w.s.NonNegotiables[i])
	w.s.NonNegotiables[i] = item
	w.s.Filled[slot.Key()] = item.Value()
	w.commit(ActionUpdateFixed, slot.Key(), item.Value())
	return nil
}

// RemoveFixedItem unlocks a slot and clears its cell.
func (w *Workspace) RemoveFixedItem(i int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if i < 0 || i >= len(w.s.NonNegotiables) {
		return fmt.Errorf("fixed item %d: %w", i, ErrUnknownFixedItem)
	}
	item := w.s.NonNegotiables[i]
	w.unstamp(item)
	w.s.NonNegotiables = slices.Delete(w.s.NonNegotiables, i, i+1)
	w.commit(ActionRemoveFixed, item.Day+"/"+item.Period, item.Value())
	return nil
}

func (w *Workspace) unstamp(item model.FixedItem) {
	if p := w.s.PeriodIndex(item.Period); p >= 0 {
		delete(w.s.Filled, model.Slot{Day: item.Day, Period: p}.Key())
	}
}

// validateFixed checks item against the configuration, ignoring the fixed
// item at index self when checking slot conflicts.
func (w *Workspace) validateFixed(item model.FixedItem, self int) (model.Slot, error) {
	if !w.s.HasDay(item.Day) {
		return model.Slot{}, fmt.Errorf("day %q: %w", item.Day, ErrUnknownDay)
	}
	p := w.s.PeriodIndex(item.Period)
	if p < 0 {
		return model.Slot{}, fmt.Errorf("period %q: %w", item.Period, ErrUnknownPeriod)
	}
	if item.IsCustom {
		if item.Text == "" {
			return model.Slot{}, fmt.Errorf("custom text: %w", ErrEmptyValue)
		}
	} else if !w.s.Subjects.Has(item.Subject) {
		return model.Slot{}, fmt.Errorf("subject %q: %w", item.Subject, ErrUnknownSubject)
	}
	for j, f := range w.s.NonNegotiables {
		if j != self && f.Day == item.Day && f.Period == item.Period {
			return model.Slot{}, fmt.Errorf("%s - %s: %w", item.Day, item.Period, ErrSlotAlreadyFixed)
		}
	}
	return model.Slot{Day: item.Day, Period: p}, nil
}

// Generate creates the blank grid. Existing fills are kept and fixed items
// are stamped.
func (w *Workspace) Generate() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generated = true
	w.stampFixed()
	w.commit(ActionGenerate, "", fmt.Sprintf("%dx%d", len(w.s.Days), len(w.s.Periods)))
}

func (w *Workspace) stampFixed() {
	for _, f := range w.s.NonNegotiables {
		p := w.s.PeriodIndex(f.Period)
		if p < 0 || !w.s.HasDay(f.Day) {
			continue
		}
		w.s.Filled[model.Slot{Day: f.Day, Period: p}.Key()] = f.Value()
	}
}

// SetCell writes a subject name or custom text into slot. An empty value
// clears the cell. Fixed cells are never overwritten.
func (w *Workspace) SetCell(slot model.Slot, value string) error {
	value = strings.TrimSpace(value)
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.checkWritable(slot); err != nil {
		return err
	}
	if value == "" {
		delete(w.s.Filled, slot.Key())
		w.commit(ActionClearCell, slot.Key(), "")
		return nil
	}
	w.s.Filled[slot.Key()] = value
	w.commit(ActionSetCell, slot.Key(), value)
	return nil
}

// ClearCell empties slot.
func (w *Workspace) ClearCell(slot model.Slot) error {
	return w.SetCell(slot, "")
}

func (w *Workspace) checkWritable(slot model.Slot) error {
	if !w.generated {
		return ErrNotGenerated
	}
	if !w.s.HasDay(slot.Day) {
		return fmt.Errorf("day %q: %w", slot.Day, ErrUnknownDay)
	}
	if slot.Period < 0 || slot.Period >= len(w.s.Periods) {
		return fmt.Errorf("period %d: %w", slot.Period, ErrUnknownPeriod)
	}
	if _, fixed := w.s.FixedAt(slot); fixed {
		return fmt.Errorf("%s: %w", slot, ErrSlotFixed)
	}
	return nil
}

// Filler proposes values for empty cells.
type Filler interface {
	Fill(s model.Settings) ([]model.Assignment, error)
}

// AutoFill applies the filler's proposals to empty, unlocked cells and
// returns how many were placed.
func (w *Workspace) AutoFill(f Filler) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.generated {
		return 0, ErrNotGenerated
	}
	w.stampFixed()
	proposals, err := f.Fill(w.s.Clone())
	if err != nil {
		return 0, fmt.Errorf("autofill: %w", err)
	}
	placed := 0
	for _, a := range proposals {
		if w.checkWritable(a.Slot) != nil || w.s.Filled[a.Slot.Key()] != "" || a.Value == "" {
			continue
		}
		w.s.Filled[a.Slot.Key()] = a.Value
		placed++
	}
	w.commit(ActionAutoFill, "", fmt.Sprint(placed))
	return placed, nil
}

// Grid renders the filled timetable.
func (w *Workspace) Grid() (Grid, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if !w.generated {
		return Grid{}, ErrNotGenerated
	}
	return BuildGrid(w.s), nil
}

// Summary reports configuration counts and subject hours.
func (w *Workspace) Summary() Summary {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Summarize(w.s)
}

// Replace imports a settings document. The workspace counts as generated when
// the document carries any filled or fixed cell.
func (w *Workspace) Replace(s model.Settings) error {
	s, err := Validate(s)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s = s
	w.generated = len(s.Filled) > 0 || len(s.NonNegotiables) > 0
	if w.generated {
		w.stampFixed()
	}
	w.commit(ActionImport, s.SchoolName, "")
	return nil
}

// Reset restores the starting settings and discards the grid.
func (w *Workspace) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.s = w.defaults.Clone()
	w.generated = false
	w.commit(ActionReset, "", "")
}

// dropOrphanCells removes cells outside the configured grid.
func (w *Workspace) dropOrphanCells() {
	for key := range w.s.Filled {
		slot, err := model.ParseSlot(key)
		if err != nil || !w.s.HasDay(slot.Day) || slot.Period >= len(w.s.Periods) {
			delete(w.s.Filled, key)
		}
	}
}

func filledCount(s model.Settings) int {
	n := 0
	for _, v := range s.Filled {
		if v != "" {
			n++
		}
	}
	return n
}

func trimFixed(f model.FixedItem) model.FixedItem {
	f.Day = strings.TrimSpace(f.Day)
	f.Period = strings.TrimSpace(f.Period)
	f.Subject = strings.TrimSpace(f.Subject)
	f.Text = strings.TrimSpace(f.Text)
	if f.IsCustom {
		f.Subject = ""
	} else {
		f.Text = ""
	}
	return f
}

func uniqueTrimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
