package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	applog "perfumery/internal/log"
	"perfumery/internal/reports"
	"perfumery/internal/views/pages"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var nowFunc = time.Now

// Reports renders the manager reports page.
func Reports(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	overview, err := reports.BuildOverview(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to build reports overview")
		return
	}
	render(w, r, http.StatusOK, pages.Reports(chrome(r, "reports"), overview))
}

// Charts serves every chart series as JSON.
func Charts(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	charts, err := reports.BuildCharts(r.Context(), database)
	if err != nil {
		applog.Error(r.Context(), "failed to build chart series", "error", err)
		writeJSON(w, r, http.StatusInternalServerError, map[string]string{"error": "chart data unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, charts)
}

func attachment(w http.ResponseWriter, name, ext, contentType string) {
	filename := fmt.Sprintf("%s_report_%s.%s", name, nowFunc().UTC().Format("20060102"), ext)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}

func writeWorkbook(w http.ResponseWriter, r *http.Request, name string, f *excelize.File) {
	defer f.Close()
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		serverError(w, r, err, "failed to write workbook", "report", name)
		return
	}
	attachment(w, name, "xlsx", xlsxContentType)
	if _, err := buf.WriteTo(w); err != nil {
		applog.Error(r.Context(), "failed to send workbook", "error", err, "report", name)
	}
}

// DownloadFormulations exports every formulation as CSV.
func DownloadFormulations(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	rows, err := reports.FormulationRows(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to load formulation report")
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteFormulationsCSV(&buf, rows); err != nil {
		serverError(w, r, err, "failed to write formulation report")
		return
	}
	attachment(w, "formulation", "csv", "text/csv")
	_, _ = buf.WriteTo(w)
}

// DownloadFormulationsXLSX exports every formulation as a spreadsheet.
func DownloadFormulationsXLSX(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	rows, err := reports.FormulationRows(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to load formulation report")
		return
	}
	f, err := reports.FormulationsWorkbook(rows)
	if err != nil {
		serverError(w, r, err, "failed to build formulation workbook")
		return
	}
	writeWorkbook(w, r, "formulation", f)
}

// DownloadIngredients exports every ingredient with its usage as CSV.
func DownloadIngredients(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	rows, err := reports.IngredientRows(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to load ingredient report")
		return
	}
	var buf bytes.Buffer
	if err := reports.WriteIngredientsCSV(&buf, rows); err != nil {
		serverError(w, r, err, "failed to write ingredient report")
		return
	}
	attachment(w, "ingredient", "csv", "text/csv")
	_, _ = buf.WriteTo(w)
}

// DownloadIngredientsXLSX exports every ingredient with its usage as a spreadsheet.
func DownloadIngredientsXLSX(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	rows, err := reports.IngredientRows(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to load ingredient report")
		return
	}
	f, err := reports.IngredientsWorkbook(rows)
	if err != nil {
		serverError(w, r, err, "failed to build ingredient workbook")
		return
	}
	writeWorkbook(w, r, "ingredient", f)
}
