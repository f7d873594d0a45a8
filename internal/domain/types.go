package domain

import (
	"encoding/json"
	"fmt"
)

type ContractType string
type ActionType string

const (
	ContractEnergisa   ContractType = "Contrato com a Energisa"
	ContractParticular ContractType = "Particular"

	ActionInstallation ActionType = "Instalação"
	ActionRemoval      ActionType = "Remoção"
)

// StaffRoster is the fixed list of selectable crew members.
var StaffRoster = []string{"Binho", "Bosco", "Dudu", "Ninho", "Loia", "Gabriel"}

func ContractTypes() []ContractType {
	return []ContractType{ContractEnergisa, ContractParticular}
}

func ActionTypes() []ActionType {
	return []ActionType{ActionInstallation, ActionRemoval}
}

func ParseContractType(raw string) (ContractType, error) {
	for _, candidate := range ContractTypes() {
		if string(candidate) == raw {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: contract type %q", ErrInvalidChoice, raw)
}

func ParseActionType(raw string) (ActionType, error) {
	for _, candidate := range ActionTypes() {
		if string(candidate) == raw {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: action type %q", ErrInvalidChoice, raw)
}

func (c *ContractType) UnmarshalText(text []byte) error {
	parsed, err := ParseContractType(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

func (a *ActionType) UnmarshalText(text []byte) error {
	parsed, err := ParseActionType(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func IsStaffMember(name string) bool {
	for _, member := range StaffRoster {
		if member == name {
			return true
		}
	}
	return false
}

type LaborEntry struct {
	ID       string     `json:"id"`
	Code     string     `json:"code"`
	Quantity string     `json:"quantity"`
	Type     ActionType `json:"type"`
}

type FormState struct {
	WorkOrder     string        `json:"workOrder"`
	ContractType  *ContractType `json:"contractType"`
	SelectedStaff []string      `json:"selectedStaff"`
	Photos        []string      `json:"photos"`
	LaborEntries  []LaborEntry  `json:"laborEntries"`
}

// UnmarshalJSON normalizes nil slices so a decoded state compares equal to
// one built in memory.
func (f *FormState) UnmarshalJSON(data []byte) error {
	type plain FormState
	var decoded plain
	if err := json.Unmarshal(data, &decoded); err != nil {
		return err
	}
	if decoded.SelectedStaff == nil {
		decoded.SelectedStaff = []string{}
	}
	if decoded.Photos == nil {
		decoded.Photos = []string{}
	}
	if decoded.LaborEntries == nil {
		decoded.LaborEntries = []LaborEntry{}
	}
	*f = FormState(decoded)
	return nil
}

type StaffOption struct {
	Name     string `json:"name"`
	Selected bool   `json:"selected"`
}

type EntryView struct {
	Entry       LaborEntry `json:"entry"`
	CanRemove   bool       `json:"canRemove"`
	CodeInvalid bool       `json:"codeInvalid"`
}

type FormView struct {
	State            FormState      `json:"state"`
	Staff            []StaffOption  `json:"staff"`
	Entries          []EntryView    `json:"entries"`
	ContractTypes    []ContractType `json:"contractTypes"`
	WorkOrderInvalid bool           `json:"workOrderInvalid"`
	ShowErrors       bool           `json:"showErrors"`
	Loading          bool           `json:"loading"`
	Summary          *string        `json:"summary"`
}

type SubmitResponse struct {
	Valid   bool     `json:"valid"`
	Focus   string   `json:"focus"`
	Invalid []string `json:"invalid,omitempty"`
	Summary *string  `json:"summary"`
}

type ReportResponse struct {
	Valid    bool     `json:"valid"`
	Invalid  []string `json:"invalid,omitempty"`
	Summary  string   `json:"summary,omitempty"`
	Filename string   `json:"filename,omitempty"`
	Metadata Metadata `json:"metadata"`
}

type SessionResponse struct {
	SessionID string   `json:"sessionId"`
	View      FormView `json:"view"`
}

type Metadata struct {
	Provider        string `json:"provider"`
	ExecutionTimeMs int64  `json:"executionTimeMs"`
	RequestID       string `json:"requestId,omitempty"`
}

type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type APIErrorResponse struct {
	Error APIError `json:"error"`
}
