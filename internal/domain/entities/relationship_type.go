package entities

import "time"

// RelationshipType describes a named kind of link between tasks: its
// directionality labels and, when blocking is enforced, the two status sets
// that drive transition vetoes.
type RelationshipType struct {
	ID          string `json:"id"`
	TypeName    string `json:"type_name"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`

	// IsSystem marks a seeded type. System types cannot be deleted but
	// their non-identity fields remain updatable.
	IsSystem bool `json:"is_system"`

	IsDirectional bool   `json:"is_directional"`
	ForwardLabel  string `json:"forward_label,omitempty"`
	ReverseLabel  string `json:"reverse_label,omitempty"`

	// EnforcesBlocking gates status transitions: a task may not enter a
	// status in BlockingDisabledStatuses while the source task of an
	// incoming edge of this type sits in one of BlockingSourceStatuses.
	EnforcesBlocking         bool      `json:"enforces_blocking"`
	BlockingDisabledStatuses StatusSet `json:"blocking_disabled_statuses,omitempty"`
	BlockingSourceStatuses   StatusSet `json:"blocking_source_statuses,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Label returns the label for an edge of this type as seen from one side:
// the forward label when the viewing task is the source, the reverse label
// when it is the target. Non-directional types carry no labels.
func (rt *RelationshipType) Label(forward bool) string {
	if !rt.IsDirectional {
		return ""
	}
	if forward {
		return rt.ForwardLabel
	}
	return rt.ReverseLabel
}
