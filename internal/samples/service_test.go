package samples

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/analyses"
	"github.com/labtrack/labtrack/internal/platform/httpx"
)

type mockRepo struct {
	samples map[uuid.UUID]*View
}

func newMockRepo() *mockRepo {
	return &mockRepo{samples: make(map[uuid.UUID]*View)}
}

func (m *mockRepo) ListSamples(ctx context.Context) ([]View, error) {
	out := make([]View, 0, len(m.samples))
	for _, v := range m.samples {
		out = append(out, *v)
	}
	return out, nil
}

func (m *mockRepo) ListSamplesByClient(ctx context.Context, clientID uuid.UUID) ([]View, error) {
	var out []View
	for _, v := range m.samples {
		if v.ClientID == clientID {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *mockRepo) GetSample(ctx context.Context, id uuid.UUID) (*View, error) {
	v, ok := m.samples[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	copied := *v
	return &copied, nil
}

func (m *mockRepo) CreateSample(ctx context.Context, s Sample) (*View, error) {
	s.ID = uuid.New()
	view := &View{Sample: s, ClientName: "Ana Lopez", StatusName: "Recibida", StatusColor: "#3b82f6"}
	m.samples[s.ID] = view
	return view, nil
}

func (m *mockRepo) UpdateSample(ctx context.Context, id uuid.UUID, upd Update) (*View, error) {
	v, ok := m.samples[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	if upd.ClientID != nil {
		v.ClientID = *upd.ClientID
	}
	if upd.StatusID != nil {
		v.StatusID = *upd.StatusID
	}
	if upd.Results != nil {
		v.Results = *upd.Results
	}
	copied := *v
	return &copied, nil
}

func (m *mockRepo) DeleteSample(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.samples[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.samples, id)
	return nil
}

type mockTemplates struct {
	byName map[string]*analyses.Analysis
}

func (m *mockTemplates) GetAnalysisByName(ctx context.Context, name string) (*analyses.Analysis, error) {
	a, ok := m.byName[name]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return a, nil
}

type mockNotes struct {
	sweeps []uuid.UUID
}

func (m *mockNotes) DeleteNotesForSample(ctx context.Context, sampleID uuid.UUID) (int64, error) {
	m.sweeps = append(m.sweeps, sampleID)
	return 2, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService() (*Service, *mockRepo, *mockNotes) {
	repo := newMockRepo()
	templates := &mockTemplates{byName: map[string]*analyses.Analysis{
		"Hemograma completo": {
			ID:   uuid.New(),
			Name: "Hemograma completo",
			Type: analyses.TypeHematology,
			Fields: []analyses.Field{
				{Name: "Hemoglobina", Measurement: "g/dL", ReferenceValue: "12-16"},
				{Name: "Hematocrito", Measurement: "%", ReferenceValue: "36-46"},
			},
		},
	}}
	notes := &mockNotes{}
	return NewService(repo, templates, notes, nil, discardLogger()), repo, notes
}

func TestRegisterSampleCopiesTemplateFields(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	assert.Equal(t, "Hemograma completo", view.AnalysisName)
	require.Len(t, view.Results, 2)
	assert.Equal(t, "Hemoglobina", view.Results[0].Name)
	assert.Equal(t, "g/dL", view.Results[0].Measurement)
	assert.Equal(t, "12-16", view.Results[0].Standard)
	assert.False(t, view.Results[0].HasValue(), "values start unrecorded")
	assert.True(t, view.Pending())
}

func TestRegisterSampleUnknownAnalysis(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.RegisterSample(context.Background(), "user_tech", uuid.New(), uuid.New(), "Inexistente")
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateSampleRecordsValues(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	results := []Result{
		{Name: "Hemoglobina", Measurement: "g/dL", Standard: "12-16", Value: json.RawMessage(`13.5`)},
		{Name: "Hematocrito", Measurement: "%", Standard: "36-46", Value: json.RawMessage(`"41"`)},
	}
	updated, err := svc.UpdateSample(ctx, "user_tech", view.ID, Update{Results: &results})
	require.NoError(t, err)

	assert.False(t, updated.Pending())
	assert.Equal(t, "13.5", updated.Results[0].ValueText())
	assert.Equal(t, "41", updated.Results[1].ValueText())
}

func TestUpdateSamplePatchesClient(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	next := uuid.New()
	updated, err := svc.UpdateSample(ctx, "user_tech", view.ID, Update{ClientID: &next})
	require.NoError(t, err)
	assert.Equal(t, next, updated.ClientID)
	assert.Equal(t, view.StatusID, updated.StatusID, "status untouched")
	assert.Len(t, updated.Results, 2, "results untouched")
}

func TestUpdateSampleRejectsReshapedSheet(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	short := []Result{{Name: "Hemoglobina"}}
	_, err = svc.UpdateSample(ctx, "user_tech", view.ID, Update{Results: &short})
	assert.ErrorIs(t, err, httpx.ErrValidation)

	renamed := []Result{
		{Name: "Hemoglobina"},
		{Name: "Glucosa"},
	}
	_, err = svc.UpdateSample(ctx, "user_tech", view.ID, Update{Results: &renamed})
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateSampleStatusOnly(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	next := uuid.New()
	updated, err := svc.UpdateSample(ctx, "user_tech", view.ID, Update{StatusID: &next})
	require.NoError(t, err)
	assert.Equal(t, next, updated.StatusID)
	assert.Len(t, updated.Results, 2, "results untouched")
}

func TestDeleteSampleSweepsNotes(t *testing.T) {
	svc, repo, notes := newTestService()
	ctx := context.Background()

	view, err := svc.RegisterSample(ctx, "user_tech", uuid.New(), uuid.New(), "Hemograma completo")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSample(ctx, "user_tech", view.ID))
	assert.Empty(t, repo.samples)
	assert.Equal(t, []uuid.UUID{view.ID}, notes.sweeps)
}

func TestDeleteSampleUnknown(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.DeleteSample(context.Background(), "user_tech", uuid.New())
	assert.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestPending(t *testing.T) {
	cases := []struct {
		name    string
		results []Result
		want    bool
	}{
		{"empty sheet", nil, true},
		{"unrecorded value", []Result{{Name: "Glucosa"}}, true},
		{"json null value", []Result{{Name: "Glucosa", Value: json.RawMessage(`null`)}}, true},
		{"partially recorded", []Result{{Name: "Glucosa", Value: json.RawMessage(`"5.0"`)}, {Name: "Urea"}}, true},
		{"fully recorded", []Result{{Name: "Glucosa", Value: json.RawMessage(`5.0`)}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Sample{Results: tc.results}.Pending())
		})
	}
}
