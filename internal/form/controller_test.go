package form

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DaviiSA/JA-app/internal/domain"
	"github.com/DaviiSA/JA-app/internal/photo"
	"github.com/DaviiSA/JA-app/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingGenerator struct {
	mu      sync.Mutex
	text    string
	calls   []domain.FormState
	release chan struct{}
}

func (g *recordingGenerator) Generate(_ context.Context, state domain.FormState) string {
	g.mu.Lock()
	g.calls = append(g.calls, state)
	release := g.release
	g.mu.Unlock()
	if release != nil {
		<-release
	}
	return g.text
}

func (g *recordingGenerator) callCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.calls)
}

type promptCapture struct {
	prompts []string
	err     error
	text    string
}

func (p *promptCapture) Name() string { return "capture" }

func (p *promptCapture) Generate(_ context.Context, prompt string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	return p.text, p.err
}

func TestSubmitInvalidMakesNoCall(t *testing.T) {
	generator := &recordingGenerator{text: "unused"}
	controller := NewController(generator)

	result, err := controller.Submit(context.Background())
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, FieldWorkOrder, result.Focus)
	assert.Equal(t, []string{FieldWorkOrder, EntryFieldPath(InitialEntryID, FieldCode)}, result.Invalid)
	assert.True(t, controller.ShowErrors())
	_, ok := controller.Summary()
	assert.False(t, ok)
	assert.Equal(t, 0, generator.callCount())
}

func TestSubmitInvalidFocusesFirstBlankCode(t *testing.T) {
	controller := NewController(&recordingGenerator{})
	require.NoError(t, controller.UpdateField(FieldWorkOrder, "OS-1"))

	result, err := controller.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EntryFieldPath(InitialEntryID, FieldCode), result.Focus)
}

func TestSubmitValidStoresProviderText(t *testing.T) {
	provider := &promptCapture{text: "Relatório gerado"}
	controller := NewController(report.NewGenerator(provider, zap.NewNop()))
	fillScenario(t, controller)

	result, err := controller.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, FocusSummary, result.Focus)
	require.NotNil(t, result.Summary)
	assert.Equal(t, "Relatório gerado", *result.Summary)

	summary, ok := controller.Summary()
	require.True(t, ok)
	assert.Equal(t, "Relatório gerado", summary)
	assert.False(t, controller.Loading())

	require.Len(t, provider.prompts, 1)
	assert.Contains(t, provider.prompts[0], "MO-001")
	assert.Contains(t, provider.prompts[0], "OS-4521")
}

func TestSubmitProviderFailureUsesFallback(t *testing.T) {
	provider := &promptCapture{err: assert.AnError}
	controller := NewController(report.NewGenerator(provider, zap.NewNop()))
	fillScenario(t, controller)

	result, err := controller.Submit(context.Background())
	require.NoError(t, err)

	assert.True(t, result.Valid)
	summary, ok := controller.Summary()
	require.True(t, ok)
	assert.Equal(t, domain.SummaryFallback, summary)
	assert.False(t, controller.Loading())
}

func TestSubmitRejectsConcurrentSubmission(t *testing.T) {
	generator := &recordingGenerator{text: "ok", release: make(chan struct{})}
	controller := NewController(generator)
	fillScenario(t, controller)

	done := make(chan SubmitResult)
	go func() {
		result, _ := controller.Submit(context.Background())
		done <- result
	}()

	require.Eventually(t, controller.Loading, time.Second, time.Millisecond)
	assert.True(t, controller.View().Loading)

	_, err := controller.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitInProgress)

	close(generator.release)
	result := <-done
	assert.True(t, result.Valid)
	assert.False(t, controller.Loading())
	assert.Equal(t, 1, generator.callCount())
}

func TestStartNewRefusedWhileGenerating(t *testing.T) {
	generator := &recordingGenerator{text: "report for OS-4521", release: make(chan struct{})}
	controller := NewController(generator)
	fillScenario(t, controller)

	done := make(chan SubmitResult)
	go func() {
		result, _ := controller.Submit(context.Background())
		done <- result
	}()
	require.Eventually(t, controller.Loading, time.Second, time.Millisecond)

	assert.ErrorIs(t, controller.StartNew(), ErrSubmitInProgress)
	assert.Equal(t, "OS-4521", controller.State().WorkOrder)

	close(generator.release)
	<-done

	export, ok := controller.Download()
	require.True(t, ok)
	assert.Equal(t, "relatorio-os-OS-4521.txt", export.Filename)
	assert.Equal(t, []byte("report for OS-4521"), export.Body)

	require.NoError(t, controller.StartNew())
	_, ok = controller.Summary()
	assert.False(t, ok)
}

func TestStartNewRestoresInitialState(t *testing.T) {
	controller := NewController(&recordingGenerator{text: "ok"})
	fillScenario(t, controller)
	controller.AddLaborEntry()
	_, err := controller.IngestPhotos(context.Background(), []photo.Source{
		photo.FromBytes("a.png", []byte("\x89PNG\r\n\x1a\n0000")),
	})
	require.NoError(t, err)
	_, err = controller.Submit(context.Background())
	require.NoError(t, err)

	require.NoError(t, controller.StartNew())

	assert.Equal(t, Initial(), controller.State())
	_, ok := controller.Summary()
	assert.False(t, ok)
	assert.False(t, controller.ShowErrors())
}

func TestDownload(t *testing.T) {
	controller := NewController(&recordingGenerator{text: "Resumo"})

	_, ok := controller.Download()
	assert.False(t, ok)

	fillScenario(t, controller)
	_, err := controller.Submit(context.Background())
	require.NoError(t, err)

	export, ok := controller.Download()
	require.True(t, ok)
	assert.Equal(t, "relatorio-os-OS-4521.txt", export.Filename)
	assert.Equal(t, []byte("Resumo"), export.Body)
}

func TestIngestPhotosAppendsBatch(t *testing.T) {
	controller := NewController(&recordingGenerator{})

	count, err := controller.IngestPhotos(context.Background(), []photo.Source{
		photo.FromBytes("a.png", []byte("\x89PNG\r\n\x1a\n0000")),
		photo.FromBytes("b.gif", []byte("GIF89a0000")),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	photos := controller.State().Photos
	require.Len(t, photos, 2)
	assert.True(t, strings.HasPrefix(photos[0], "data:image/png;base64,"))
	assert.True(t, strings.HasPrefix(photos[1], "data:image/gif;base64,"))

	_, err = controller.IngestPhotos(context.Background(), []photo.Source{
		photo.FromBytes("c.png", []byte("\x89PNG\r\n\x1a\n0000")),
		photo.FromBytes("notes.txt", []byte("not an image")),
	})
	require.Error(t, err)
	assert.Len(t, controller.State().Photos, 2)

	require.NoError(t, controller.RemovePhoto(0))
	assert.Equal(t, photos[1:], controller.State().Photos)
}

func TestViewReflectsErrors(t *testing.T) {
	controller := NewController(&recordingGenerator{}, WithIDFunc(sequentialIDs()))
	require.NoError(t, controller.ToggleStaff("Loia"))

	view := controller.View()
	assert.False(t, view.WorkOrderInvalid)
	require.Len(t, view.Entries, 1)
	assert.False(t, view.Entries[0].CanRemove)
	assert.False(t, view.Entries[0].CodeInvalid)
	assert.Len(t, view.Staff, len(domain.StaffRoster))
	assert.Equal(t, domain.ContractTypes(), view.ContractTypes)
	for _, option := range view.Staff {
		assert.Equal(t, option.Name == "Loia", option.Selected)
	}

	_, err := controller.Submit(context.Background())
	require.NoError(t, err)
	id := controller.AddLaborEntry()

	view = controller.View()
	assert.True(t, view.WorkOrderInvalid)
	require.Len(t, view.Entries, 2)
	assert.True(t, view.Entries[0].CanRemove)
	assert.True(t, view.Entries[1].CodeInvalid)
	assert.Equal(t, id, view.Entries[1].Entry.ID)
	assert.Nil(t, view.Summary)
}

func fillScenario(t *testing.T, controller *Controller) {
	t.Helper()
	require.NoError(t, controller.UpdateField(FieldWorkOrder, "OS-4521"))
	controller.SetContractType(domain.ContractParticular)
	require.NoError(t, controller.ToggleStaff("Binho"))
	require.NoError(t, controller.ToggleStaff("Dudu"))
	require.NoError(t, controller.UpdateLaborEntry(InitialEntryID, FieldCode, "MO-001"))
	require.NoError(t, controller.UpdateLaborEntry(InitialEntryID, FieldQuantity, "3"))
	require.NoError(t, controller.UpdateLaborEntry(InitialEntryID, FieldType, string(domain.ActionInstallation)))
}
