package form

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/google/uuid"
)

// InitialEntryID identifies the labor entry every fresh form starts with.
const InitialEntryID = "1"

const (
	FieldWorkOrder = "workOrder"
	FieldCode      = "code"
	FieldQuantity  = "quantity"
	FieldType      = "type"
)

var (
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownStaff    = errors.New("staff member is not on the roster")
	ErrPhotoIndex      = errors.New("photo index out of range")
	ErrLastEntry       = errors.New("the last labor entry cannot be removed")
	ErrInvalidQuantity = errors.New("quantity must be a number")
	ErrNoEntries       = errors.New("at least one labor entry is required")
	ErrDuplicateEntry  = errors.New("labor entry ids must be unique and non-empty")
	ErrDuplicateStaff  = errors.New("staff member selected twice")
)

// IDFunc produces labor entry ids. It must never return the same id twice.
type IDFunc func() string

func NewEntryID() string {
	return uuid.NewString()
}

func Initial() domain.FormState {
	return domain.FormState{
		SelectedStaff: []string{},
		Photos:        []string{},
		LaborEntries:  []domain.LaborEntry{newEntry(InitialEntryID)},
	}
}

func newEntry(id string) domain.LaborEntry {
	return domain.LaborEntry{ID: id, Type: domain.ActionInstallation}
}

// clone copies every slice so transitions never share backing arrays.
func clone(state domain.FormState) domain.FormState {
	next := state
	next.SelectedStaff = append([]string{}, state.SelectedStaff...)
	next.Photos = append([]string{}, state.Photos...)
	next.LaborEntries = append([]domain.LaborEntry{}, state.LaborEntries...)
	if state.ContractType != nil {
		contract := *state.ContractType
		next.ContractType = &contract
	}
	return next
}

func UpdateField(state domain.FormState, name string, value string) (domain.FormState, error) {
	switch name {
	case FieldWorkOrder:
		next := clone(state)
		next.WorkOrder = value
		return next, nil
	default:
		return state, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
}

func SetContractType(state domain.FormState, contract domain.ContractType) domain.FormState {
	next := clone(state)
	next.ContractType = &contract
	return next
}

func ToggleStaff(state domain.FormState, name string) (domain.FormState, error) {
	if !domain.IsStaffMember(name) {
		return state, fmt.Errorf("%w: %q", ErrUnknownStaff, name)
	}

	next := clone(state)
	if index := slices.Index(next.SelectedStaff, name); index >= 0 {
		next.SelectedStaff = slices.Delete(next.SelectedStaff, index, index+1)
		return next, nil
	}
	next.SelectedStaff = append(next.SelectedStaff, name)
	return next, nil
}

func AppendPhotos(state domain.FormState, photos []string) domain.FormState {
	next := clone(state)
	next.Photos = append(next.Photos, photos...)
	return next
}

func RemovePhoto(state domain.FormState, index int) (domain.FormState, error) {
	if index < 0 || index >= len(state.Photos) {
		return state, fmt.Errorf("%w: %d", ErrPhotoIndex, index)
	}
	next := clone(state)
	next.Photos = slices.Delete(next.Photos, index, index+1)
	return next, nil
}

// UpdateLaborEntry replaces one field of the entry with the given id. An
// absent id leaves the state untouched.
func UpdateLaborEntry(state domain.FormState, id string, field string, value string) (domain.FormState, error) {
	index := entryIndex(state, id)

	switch field {
	case FieldCode:
	case FieldQuantity:
		if err := checkQuantity(value); err != nil {
			return state, err
		}
	case FieldType:
		if _, err := domain.ParseActionType(value); err != nil {
			return state, err
		}
	default:
		return state, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	if index < 0 {
		return state, nil
	}

	next := clone(state)
	entry := next.LaborEntries[index]
	switch field {
	case FieldCode:
		entry.Code = value
	case FieldQuantity:
		entry.Quantity = value
	case FieldType:
		entry.Type = domain.ActionType(value)
	}
	next.LaborEntries[index] = entry
	return next, nil
}

func AddLaborEntry(state domain.FormState, newID IDFunc) (domain.FormState, string) {
	id := newID()
	next := clone(state)
	next.LaborEntries = append(next.LaborEntries, newEntry(id))
	return next, id
}

func RemoveLaborEntry(state domain.FormState, id string) (domain.FormState, error) {
	index := entryIndex(state, id)
	if index < 0 {
		return state, nil
	}
	if len(state.LaborEntries) <= 1 {
		return state, ErrLastEntry
	}
	next := clone(state)
	next.LaborEntries = slices.Delete(next.LaborEntries, index, index+1)
	return next, nil
}

func Validate(state domain.FormState) bool {
	return len(InvalidFields(state)) == 0
}

// InvalidFields lists the required fields that are blank, in document
// order: the work order first, then each labor code in list order.
func InvalidFields(state domain.FormState) []string {
	var invalid []string
	if strings.TrimSpace(state.WorkOrder) == "" {
		invalid = append(invalid, FieldWorkOrder)
	}
	for _, entry := range state.LaborEntries {
		if strings.TrimSpace(entry.Code) == "" {
			invalid = append(invalid, EntryFieldPath(entry.ID, FieldCode))
		}
	}
	return invalid
}

// CheckState applies the per-field rules of the transitions to a state that
// was built elsewhere, such as a decoded request body. Blank required fields
// are not errors here; InvalidFields reports those.
func CheckState(state domain.FormState) error {
	if state.ContractType != nil {
		if _, err := domain.ParseContractType(string(*state.ContractType)); err != nil {
			return err
		}
	}
	seenStaff := make(map[string]bool, len(state.SelectedStaff))
	for _, name := range state.SelectedStaff {
		if !domain.IsStaffMember(name) {
			return fmt.Errorf("%w: %q", ErrUnknownStaff, name)
		}
		if seenStaff[name] {
			return fmt.Errorf("%w: %q", ErrDuplicateStaff, name)
		}
		seenStaff[name] = true
	}

	if len(state.LaborEntries) == 0 {
		return ErrNoEntries
	}
	seenIDs := make(map[string]bool, len(state.LaborEntries))
	for _, entry := range state.LaborEntries {
		if strings.TrimSpace(entry.ID) == "" || seenIDs[entry.ID] {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, entry.ID)
		}
		seenIDs[entry.ID] = true
		if _, err := domain.ParseActionType(string(entry.Type)); err != nil {
			return err
		}
		if err := checkQuantity(entry.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// checkQuantity accepts an empty value or a finite decimal number.
func checkQuantity(value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	if strings.ContainsAny(trimmed, "xX_") {
		return fmt.Errorf("%w: %q", ErrInvalidQuantity, value)
	}
	parsed, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return fmt.Errorf("%w: %q", ErrInvalidQuantity, value)
	}
	return nil
}

func EntryFieldPath(id string, field string) string {
	return "laborEntries." + id + "." + field
}

func entryIndex(state domain.FormState, id string) int {
	return slices.IndexFunc(state.LaborEntries, func(entry domain.LaborEntry) bool {
		return entry.ID == id
	})
}
