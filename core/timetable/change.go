package timetable

import "time"

// Action names a workspace mutation.
type Action string

const (
	ActionSchoolName    Action = "school_name"
	ActionClosingTime   Action = "closing_time"
	ActionDays          Action = "days"
	ActionAddDay        Action = "add_day"
	ActionAddPeriod     Action = "add_period"
	ActionUpdatePeriod  Action = "update_period"
	ActionRemovePeriod  Action = "remove_period"
	ActionAddSubject    Action = "add_subject"
	ActionUpdateSubject Action = "update_subject"
	ActionRemoveSubject Action = "remove_subject"
	ActionAddFixed      Action = "add_fixed"
	ActionUpdateFixed   Action = "update_fixed"
	ActionRemoveFixed   Action = "remove_fixed"
	ActionGenerate      Action = "generate"
	ActionSetCell       Action = "set_cell"
	ActionClearCell     Action = "clear_cell"
	ActionAutoFill      Action = "autofill"
	ActionImport        Action = "import"
	ActionReset         Action = "reset"
)

// Change describes one applied mutation.
type Change struct {
	Action Action    `json:"action"`
	Target string    `json:"target,omitempty"`
	Value  string    `json:"value,omitempty"`
	At     time.Time `json:"at"`
	// Filled is the number of non-empty cells after the change.
	Filled int `json:"filled"`
}

// Publisher receives workspace changes.
type Publisher interface {
	Publish(Change) int
}

type nopPublisher struct{}

func (nopPublisher) Publish(Change) int { return 0 }
