package timetable

import "errors"

var (
	// ErrNotGenerated is returned when the grid is read before Generate.
	ErrNotGenerated = errors.New("timetable not generated")
	// ErrEmptyValue rejects blank names and blank custom text.
	ErrEmptyValue = errors.New("value must not be empty")
	// ErrDuplicateDay rejects adding a day twice.
	ErrDuplicateDay = errors.New("day already exists")
	// ErrUnknownDay references a day that is not configured.
	ErrUnknownDay = errors.New("unknown day")
	// ErrUnknownPeriod references a period that is not configured.
	ErrUnknownPeriod = errors.New("unknown period")
	// ErrPeriodLimit is returned when adding beyond model.MaxPeriods.
	ErrPeriodLimit = errors.New("period limit reached")
	// ErrDuplicateSubject rejects adding a subject twice.
	ErrDuplicateSubject = errors.New("subject already exists")
	// ErrUnknownSubject references a subject that is not registered.
	ErrUnknownSubject = errors.New("unknown subject")
	// ErrInvalidHours rejects weekly hours outside the allowed range.
	ErrInvalidHours = errors.New("hours per week out of range")
	// ErrSlotAlreadyFixed rejects a second fixed item on the same slot.
	ErrSlotAlreadyFixed = errors.New("slot already fixed")
	// ErrSlotFixed rejects writes to a locked cell.
	ErrSlotFixed = errors.New("slot is fixed")
	// ErrUnknownFixedItem references a fixed item index out of range.
	ErrUnknownFixedItem = errors.New("unknown fixed item")
	// ErrInvalidSettings wraps structural problems in an imported document.
	ErrInvalidSettings = errors.New("invalid settings")
)

// IsValidation reports whether err stems from rejected user input rather than
// an internal failure.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyValue, ErrDuplicateDay, ErrUnknownDay, ErrUnknownPeriod,
		ErrPeriodLimit, ErrDuplicateSubject, ErrUnknownSubject, ErrInvalidHours,
		ErrSlotAlreadyFixed, ErrSlotFixed, ErrUnknownFixedItem, ErrInvalidSettings,
		ErrNotGenerated,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
