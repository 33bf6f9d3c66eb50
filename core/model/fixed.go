package model

import (
	"fmt"
	"strconv"
	"strings"
)

// FixedItem locks a slot to a subject or to custom text such as "Assembly".
type FixedItem struct {
	Day      string `json:"day" yaml:"day"`
	Period   string `json:"period" yaml:"period"`
	IsCustom bool   `json:"is_custom" yaml:"is_custom"`
	Subject  string `json:"subject,omitempty" yaml:"subject,omitempty"`
	Text     string `json:"text,omitempty" yaml:"text,omitempty"`
}

// Value is the text placed in the locked cell.
func (f FixedItem) Value() string {
	if f.IsCustom {
		return f.Text
	}
	return f.Subject
}

// Slot addresses one grid cell: a day and a zero based period index.
type Slot struct {
	Day    string
	Period int
}

// Key renders the slot as "<day>_<period>", the key used in exported documents.
func (s Slot) Key() string {
	return s.Day + "_" + strconv.Itoa(s.Period)
}

func (s Slot) String() string { return s.Key() }

// ParseSlot parses a key produced by Slot.Key. Day names may contain
// underscores; the period index follows the last one.
func ParseSlot(key string) (Slot, error) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return Slot{}, fmt.Errorf("invalid slot key %q", key)
	}
	p, err := strconv.Atoi(key[i+1:])
	if err != nil || p < 0 {
		return Slot{}, fmt.Errorf("invalid slot key %q", key)
	}
	return Slot{Day: key[:i], Period: p}, nil
}

// Assignment places a value into a slot.
type Assignment struct {
	Slot  Slot   `json:"slot"`
	Value string `json:"value"`
}
