package task

import (
	"time"

	"tableflip.dev/newday/pkg/timeutil"
)

// Patch is a partial update of one task. Nil fields are left alone, both when
// applied locally and when merged into the remote document.
type Patch struct {
	ID       string  `json:"id" yaml:"id"`
	Text     *string `json:"text,omitempty" yaml:"text,omitempty"`
	Notes    *string `json:"notes,omitempty" yaml:"notes,omitempty"`
	Type     *Type   `json:"type,omitempty" yaml:"type,omitempty"`
	Complete *bool   `json:"complete,omitempty" yaml:"complete,omitempty"`
	// Completed is only consulted when Complete is set: a nil Completed with
	// Complete=false clears the timestamp.
	Completed *timeutil.Timestamp `json:"completed,omitempty" yaml:"completed,omitempty"`
	Updated   *timeutil.Timestamp `json:"updated,omitempty" yaml:"updated,omitempty"`
}

// Retype builds a patch moving task id to typ.
func Retype(id string, typ Type, now time.Time) Patch {
	return Patch{ID: id, Type: &typ, Updated: timeutil.Ptr(now)}
}

// Apply returns t with the supplied fields overwritten.
func (p Patch) Apply(t Task) Task {
	if p.Text != nil {
		t.Text = *p.Text
	}
	if p.Notes != nil {
		t.Notes = *p.Notes
	}
	if p.Type != nil {
		t.Type = *p.Type
	}
	if p.Complete != nil {
		t.Complete = *p.Complete
		t.Completed = p.Completed
	}
	if p.Updated != nil {
		t.Updated = *p.Updated
	}
	return t
}

// Fields returns the document fields carried by the patch, keyed by their
// JSON names. A cleared completion is sent as null.
func (p Patch) Fields() map[string]interface{} {
	fields := map[string]interface{}{"id": p.ID}
	if p.Text != nil {
		fields["text"] = *p.Text
	}
	if p.Notes != nil {
		fields["notes"] = *p.Notes
	}
	if p.Type != nil {
		fields["type"] = *p.Type
	}
	if p.Complete != nil {
		fields["complete"] = *p.Complete
		if p.Completed != nil {
			fields["completed"] = *p.Completed
		} else {
			fields["completed"] = nil
		}
	}
	if p.Updated != nil {
		fields["updated"] = *p.Updated
	}
	return fields
}

// PatchFromToggle describes the difference produced by Task.Toggle.
func PatchFromToggle(toggled Task) Patch {
	complete := toggled.Complete
	updated := toggled.Updated
	return Patch{
		ID:        toggled.ID,
		Complete:  &complete,
		Completed: toggled.Completed,
		Updated:   &updated,
	}
}
