package entities

// DefaultRelationshipTypes are the system relationship types seeded at
// initialization. These cannot be deleted by users.
var DefaultRelationshipTypes = []RelationshipType{
	{
		TypeName:      "context",
		DisplayName:   "Context",
		Description:   "Marks one task as background material for another",
		IsSystem:      true,
		IsDirectional: true,
		ForwardLabel:  "provides context for",
		ReverseLabel:  "uses context from",
	},
	{
		TypeName:      "blocked",
		DisplayName:   "Blocked",
		Description:   "Keeps a task out of review and done while its blockers remain open",
		IsSystem:      true,
		IsDirectional: true,
		ForwardLabel:  "blocks",
		ReverseLabel:  "blocked by",

		EnforcesBlocking:         true,
		BlockingDisabledStatuses: StatusSet{StatusInReview, StatusDone},
		BlockingSourceStatuses:   StatusSet{StatusTodo, StatusInProgress, StatusInReview},
	},
}

// DefaultTypeNames returns just the names of system types for quick lookup.
func DefaultTypeNames() []string {
	names := make([]string, len(DefaultRelationshipTypes))
	for i, t := range DefaultRelationshipTypes {
		names[i] = t.TypeName
	}
	return names
}

// IsDefaultTypeName checks if a type name belongs to a seeded system type.
func IsDefaultTypeName(name string) bool {
	for _, t := range DefaultRelationshipTypes {
		if t.TypeName == name {
			return true
		}
	}
	return false
}
