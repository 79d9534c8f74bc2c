package report

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/samples"
)

func TestRenderPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/forms/chromium/convert/html", r.URL.Path)
		file, header, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "index.html", header.Filename)
		html, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Contains(t, string(html), "<html>")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	pdf, err := NewClient(srv.URL + "/").RenderPDF(context.Background(), []byte("<html><body>hoja</body></html>"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(pdf))
}

func TestRenderPDFSurfacesConvertError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).RenderPDF(context.Background(), []byte("<html></html>"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestPing(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer healthy.Close()
	assert.NoError(t, NewClient(healthy.URL).Ping(context.Background()))

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer broken.Close()
	assert.Error(t, NewClient(broken.URL).Ping(context.Background()))
}

func TestExportSampleRendersValues(t *testing.T) {
	var captured string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer file.Close()
		html, err := io.ReadAll(file)
		require.NoError(t, err)
		captured = string(html)
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	exporter := NewResultSheetExporter(NewClient(srv.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	view := samples.View{
		Sample: samples.Sample{
			ID:           uuid.New(),
			AnalysisName: "Hemograma completo",
			Results: []samples.Result{
				{Name: "Hemoglobina", Measurement: "g/dL", Standard: "12-16", Value: json.RawMessage(`13.5`)},
				{Name: "Hematocrito", Measurement: "%", Standard: "36-46"},
			},
		},
		ClientName: "Ana Lopez",
		StatusName: "En análisis",
	}

	w := httptest.NewRecorder()
	exporter.ExportSample(w, httptest.NewRequest("GET", "/samples/x/pdf", nil), view)

	resp := w.Result()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, captured, "13.5", "recorded numeric value rendered")
	assert.Contains(t, captured, "&mdash;", "unrecorded value rendered as a dash")
	assert.Contains(t, captured, "Ana Lopez")
}
