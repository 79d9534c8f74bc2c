package report

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/labtrack/labtrack/internal/samples"
)

var resultSheetTmpl = template.Must(template.New("resultsheet").Parse(`<html>
<head><meta charset="utf-8"><title>Hoja de resultados</title>
<style>
body { font-family: sans-serif; margin: 2em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin-top: 1em; }
th, td { border: 1px solid #444; padding: 6px 10px; text-align: left; }
.meta { color: #555; }
</style>
</head>
<body>
<h1>{{.AnalysisName}}</h1>
<p class="meta">Paciente: {{.ClientName}} &middot; Estado: {{.StatusName}} &middot; Registrada: {{.RegisteredAt}}</p>
<table>
<tr><th>Parámetro</th><th>Resultado</th><th>Unidad</th><th>Valor de referencia</th></tr>
{{range .Results}}<tr><td>{{.Name}}</td><td>{{if .HasValue}}{{.ValueText}}{{else}}&mdash;{{end}}</td><td>{{.Measurement}}</td><td>{{.Standard}}</td></tr>
{{end}}</table>
<p class="meta">Generado: {{.GeneratedAt}}</p>
</body>
</html>`))

type resultSheetData struct {
	AnalysisName string
	ClientName   string
	StatusName   string
	RegisteredAt string
	GeneratedAt  string
	Results      []samples.Result
}

// ResultSheetExporter renders a sample's result sheet to PDF through
// Gotenberg. It implements the exporter hook of the samples handler.
type ResultSheetExporter struct {
	client *Client
	logger *slog.Logger
}

// NewResultSheetExporter creates the exporter.
func NewResultSheetExporter(client *Client, logger *slog.Logger) *ResultSheetExporter {
	return &ResultSheetExporter{client: client, logger: logger}
}

// ExportSample writes the rendered PDF to the response.
func (e *ResultSheetExporter) ExportSample(w http.ResponseWriter, r *http.Request, view samples.View) {
	data := resultSheetData{
		AnalysisName: view.AnalysisName,
		ClientName:   view.ClientName,
		StatusName:   view.StatusName,
		RegisteredAt: view.CreatedAt.Format("02/01/2006 15:04"),
		GeneratedAt:  time.Now().Format("02/01/2006 15:04"),
		Results:      view.Results,
	}
	var html bytes.Buffer
	if err := resultSheetTmpl.Execute(&html, data); err != nil {
		e.logger.Error("render result sheet template", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	pdf, err := e.client.RenderPDF(r.Context(), html.Bytes())
	if err != nil {
		e.logger.Error("render result sheet pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=resultados-"+view.ID.String()+".pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
