package models

import "encoding/json"

// CategoryRefKind tags the state of a task's category reference
type CategoryRefKind int

const (
	// CategoryNone means the task carries no category
	CategoryNone CategoryRefKind = iota
	// CategoryUnresolved is an id as stored, not (or not yet) matched to a category
	CategoryUnresolved
	// CategoryResolved is an id matched to a live category with its display name
	CategoryResolved
)

// CategoryRef is a task's reference to a category. Storage layers produce
// unresolved refs; ResolveCategories turns them into resolved ones exactly once.
type CategoryRef struct {
	Kind CategoryRefKind
	ID   string
	Name string
}

// NoCategory returns an empty reference
func NoCategory() CategoryRef {
	return CategoryRef{Kind: CategoryNone}
}

// UnresolvedCategory returns a reference holding only an id.
// An empty id yields NoCategory.
func UnresolvedCategory(id string) CategoryRef {
	if id == "" {
		return NoCategory()
	}
	return CategoryRef{Kind: CategoryUnresolved, ID: id}
}

// ResolvedCategory returns a reference with its display name
func ResolvedCategory(id, name string) CategoryRef {
	return CategoryRef{Kind: CategoryResolved, ID: id, Name: name}
}

// IDPtr returns the referenced id, or nil when there is none
func (r CategoryRef) IDPtr() *string {
	if r.Kind == CategoryNone || r.ID == "" {
		return nil
	}
	id := r.ID
	return &id
}

// MarshalJSON renders null, {"id"} or {"id","name"} depending on the kind
func (r CategoryRef) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case CategoryResolved:
		return json.Marshal(struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}{r.ID, r.Name})
	case CategoryUnresolved:
		return json.Marshal(struct {
			ID string `json:"id"`
		}{r.ID})
	default:
		return []byte("null"), nil
	}
}

// ResolveCategories returns a copy of tasks with every category reference
// matched against categories. References to unknown or deleted categories stay
// unresolved.
func ResolveCategories(tasks []Task, categories []Category) []Task {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	out := make([]Task, len(tasks))
	for i, t := range tasks {
		if t.Category.Kind != CategoryNone {
			if name, ok := names[t.Category.ID]; ok {
				t.Category = ResolvedCategory(t.Category.ID, name)
			} else {
				t.Category = UnresolvedCategory(t.Category.ID)
			}
		}
		out[i] = t
	}
	return out
}
