package form

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/DaviiSA/JA-app/internal/photo"
	"github.com/DaviiSA/JA-app/internal/report"
)

// FocusSummary is the focus target after a successful submit.
const FocusSummary = "summary"

var ErrSubmitInProgress = errors.New("a report is already being generated")

// Generator turns a form snapshot into report text. Implementations never
// fail; they substitute a fallback text instead.
type Generator interface {
	Generate(ctx context.Context, state domain.FormState) string
}

type SubmitResult struct {
	Valid   bool
	Focus   string
	Invalid []string
	Summary *string
}

// Controller owns the state of one form and every mutation of it.
type Controller struct {
	mu         sync.Mutex
	state      domain.FormState
	loading    bool
	summary    *string
	showErrors bool

	generator Generator
	decoder   *photo.Decoder
	newID     IDFunc
}

type Option func(*Controller)

func WithIDFunc(newID IDFunc) Option {
	return func(c *Controller) {
		if newID != nil {
			c.newID = newID
		}
	}
}

func WithDecoder(decoder *photo.Decoder) Option {
	return func(c *Controller) {
		if decoder != nil {
			c.decoder = decoder
		}
	}
}

func NewController(generator Generator, opts ...Option) *Controller {
	c := &Controller{
		state:     Initial(),
		generator: generator,
		decoder:   photo.NewDecoder(),
		newID:     NewEntryID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() domain.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.state)
}

func (c *Controller) View() domain.FormView {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := clone(c.state)
	staff := make([]domain.StaffOption, 0, len(domain.StaffRoster))
	for _, name := range domain.StaffRoster {
		staff = append(staff, domain.StaffOption{
			Name:     name,
			Selected: slices.Contains(state.SelectedStaff, name),
		})
	}

	editors := Editors(state, c.showErrors)
	entries := make([]domain.EntryView, 0, len(editors))
	for _, editor := range editors {
		entries = append(entries, editor.View())
	}

	return domain.FormView{
		State:            state,
		Staff:            staff,
		Entries:          entries,
		ContractTypes:    domain.ContractTypes(),
		WorkOrderInvalid: c.showErrors && strings.TrimSpace(state.WorkOrder) == "",
		ShowErrors:       c.showErrors,
		Loading:          c.loading,
		Summary:          copySummary(c.summary),
	}
}

// Editors returns the editor views for the current entries.
func (c *Controller) Editors() []EntryEditor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Editors(clone(c.state), c.showErrors)
}

func (c *Controller) UpdateField(name string, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := UpdateField(c.state, name, value)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) SetContractType(contract domain.ContractType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = SetContractType(c.state, contract)
}

func (c *Controller) ToggleStaff(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := ToggleStaff(c.state, name)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

// IngestPhotos decodes every file concurrently and appends the whole batch
// at once. A failed batch appends nothing.
func (c *Controller) IngestPhotos(ctx context.Context, files []photo.Source) (int, error) {
	decoded, err := c.decoder.DecodeBatch(ctx, files)
	if err != nil {
		return 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = AppendPhotos(c.state, decoded)
	return len(decoded), nil
}

func (c *Controller) RemovePhoto(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := RemovePhoto(c.state, index)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) AddLaborEntry() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, id := AddLaborEntry(c.state, c.newID)
	c.state = next
	return id
}

func (c *Controller) UpdateLaborEntry(id string, field string, value string) error {
	return c.Dispatch(UpdateEntry{ID: id, Field: field, Value: value})
}

func (c *Controller) RemoveLaborEntry(id string) error {
	return c.Dispatch(RemoveEntry{ID: id})
}

// Dispatch applies an editor message to the state.
func (c *Controller) Dispatch(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := msg.apply(c.state)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Validate(c.state)
}

// Submit validates the form and, when valid, generates the report. Only one
// generation runs at a time per controller.
func (c *Controller) Submit(ctx context.Context) (SubmitResult, error) {
	c.mu.Lock()
	if c.loading {
		c.mu.Unlock()
		return SubmitResult{}, ErrSubmitInProgress
	}

	c.showErrors = true
	invalid := InvalidFields(c.state)
	if len(invalid) > 0 {
		c.mu.Unlock()
		return SubmitResult{Valid: false, Focus: invalid[0], Invalid: invalid}, nil
	}

	c.loading = true
	snapshot := clone(c.state)
	c.mu.Unlock()

	text := c.generator.Generate(ctx, snapshot)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.summary = &text
	c.loading = false
	return SubmitResult{Valid: true, Focus: FocusSummary, Summary: copySummary(c.summary)}, nil
}

func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) Summary() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return "", false
	}
	return *c.summary, true
}

func (c *Controller) ShowErrors() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.showErrors
}

// StartNew discards everything and returns to the initial form. It is
// refused while a report is being generated.
func (c *Controller) StartNew() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loading {
		return ErrSubmitInProgress
	}
	c.state = Initial()
	c.summary = nil
	c.showErrors = false
	return nil
}

// Download returns the report file for the current summary, or false when
// no report was generated yet.
func (c *Controller) Download() (report.Export, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.summary == nil {
		return report.Export{}, false
	}
	return report.NewExport(c.state.WorkOrder, *c.summary), true
}

func copySummary(summary *string) *string {
	if summary == nil {
		return nil
	}
	value := *summary
	return &value
}
