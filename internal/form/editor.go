package form

import (
	"strings"

	"github.com/DaviiSA/JA-app/internal/domain"
)

// Message is an edit produced by an EntryEditor and applied by the
// Controller, which stays the only owner of the state.
type Message interface {
	apply(state domain.FormState) (domain.FormState, error)
}

type UpdateEntry struct {
	ID    string
	Field string
	Value string
}

func (m UpdateEntry) apply(state domain.FormState) (domain.FormState, error) {
	return UpdateLaborEntry(state, m.ID, m.Field, m.Value)
}

type RemoveEntry struct {
	ID string
}

func (m RemoveEntry) apply(state domain.FormState) (domain.FormState, error) {
	return RemoveLaborEntry(state, m.ID)
}

// EntryEditor is a read-only view over a single labor entry.
type EntryEditor struct {
	Entry       domain.LaborEntry
	CanRemove   bool
	CodeInvalid bool
}

func Editors(state domain.FormState, showErrors bool) []EntryEditor {
	editors := make([]EntryEditor, 0, len(state.LaborEntries))
	canRemove := len(state.LaborEntries) > 1
	for _, entry := range state.LaborEntries {
		editors = append(editors, EntryEditor{
			Entry:       entry,
			CanRemove:   canRemove,
			CodeInvalid: showErrors && strings.TrimSpace(entry.Code) == "",
		})
	}
	return editors
}

func (e EntryEditor) Edit(field string, value string) UpdateEntry {
	return UpdateEntry{ID: e.Entry.ID, Field: field, Value: value}
}

// Remove returns false when the editor has no remove control.
func (e EntryEditor) Remove() (RemoveEntry, bool) {
	if !e.CanRemove {
		return RemoveEntry{}, false
	}
	return RemoveEntry{ID: e.Entry.ID}, true
}

func (e EntryEditor) View() domain.EntryView {
	return domain.EntryView{
		Entry:       e.Entry,
		CanRemove:   e.CanRemove,
		CodeInvalid: e.CodeInvalid,
	}
}
