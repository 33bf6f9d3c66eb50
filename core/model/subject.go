package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Bounds for a subject's weekly allocation.
const (
	MinHoursPerWeek     = 1
	MaxHoursPerWeek     = 20
	DefaultHoursPerWeek = 3
)

// Subject is a taught subject with its weekly target.
type Subject struct {
	Name         string `json:"-" yaml:"-"`
	HoursPerWeek int    `json:"hours_per_week" yaml:"hours_per_week"`
	// NoClash marks a strict subject: exceeding its weekly hours is a clash
	// rather than a warning.
	NoClash bool `json:"no_clash" yaml:"no_clash"`
}

// ValidHours reports whether h is an acceptable weekly allocation.
func ValidHours(h int) bool {
	return h >= MinHoursPerWeek && h <= MaxHoursPerWeek
}

// Subjects is an ordered subject list encoded as an object keyed by name.
type Subjects []Subject

// Index returns the position of the named subject or -1.
func (s Subjects) Index(name string) int {
	for i, sub := range s {
		if sub.Name == name {
			return i
		}
	}
	return -1
}

// Has reports whether name is a registered subject.
func (s Subjects) Has(name string) bool { return s.Index(name) >= 0 }

// Get returns the named subject.
func (s Subjects) Get(name string) (Subject, bool) {
	if i := s.Index(name); i >= 0 {
		return s[i], true
	}
	return Subject{}, false
}

// Names lists subject names in order.
func (s Subjects) Names() []string {
	out := make([]string, len(s))
	for i, sub := range s {
		out[i] = sub.Name
	}
	return out
}

// MarshalJSON writes the subjects as an object, keeping insertion order.
func (s Subjects) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sub := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(sub.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(sub)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object of subjects, keeping document order.
func (s *Subjects) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("subjects: expected object, got %v", tok)
	}
	out := Subjects{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var sub Subject
		if err := dec.Decode(&sub); err != nil {
			return fmt.Errorf("subject %q: %w", name, err)
		}
		sub.Name = name
		out = append(out, sub)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

// MarshalYAML writes the subjects as an ordered mapping.
func (s Subjects) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, sub := range s {
		var val yaml.Node
		if err := val.Encode(sub); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: sub.Name},
			&val,
		)
	}
	return node, nil
}

// UnmarshalYAML reads an ordered mapping of subjects.
func (s *Subjects) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("subjects: expected mapping at line %d", node.Line)
	}
	out := make(Subjects, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var sub Subject
		if err := node.Content[i+1].Decode(&sub); err != nil {
			return fmt.Errorf("subject %q: %w", node.Content[i].Value, err)
		}
		sub.Name = node.Content[i].Value
		out = append(out, sub)
	}
	*s = out
	return nil
}
