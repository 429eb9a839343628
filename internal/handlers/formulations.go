package handlers

import (
	"fmt"
	"net/http"

	"perfumery/internal/access"
	"perfumery/internal/formulation"
	"perfumery/internal/views/pages"
	"perfumery/models"
)

const formulationsSection = "formulations"

func formulationURL(id uint) string {
	return fmt.Sprintf("/formulations/%d", id)
}

// backTo returns the detail page, or the index when the formulation is gone.
func backTo(err error, id uint) string {
	if notFound(err) {
		return "/formulations"
	}
	return formulationURL(id)
}

// Formulations lists formulations, optionally filtered by status.
func Formulations(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	status := pages.FormulationStatusFromRequest(r)
	list, err := formulations.List(r.Context(), formulation.Filter{Status: status})
	if err != nil {
		serverError(w, r, err, "failed to list formulations")
		return
	}
	render(w, r, http.StatusOK, pages.FormulationList(chrome(r, formulationsSection), pages.FormulationListData{
		Formulations: list,
		Status:       status,
		CanCreate:    access.Authorize(currentRole(r), access.CreateFormulation),
	}))
}

// ShowFormulation renders one formulation with its compliance issues and QA history.
func ShowFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	f, err := formulations.Get(r.Context(), id)
	if err != nil {
		failAndRedirect(w, r, err, "/formulations", "failed to load formulation", "formulationID", id)
		return
	}
	issues, err := checker.IssuesFor(r.Context(), database, id)
	if err != nil {
		failAndRedirect(w, r, err, "/formulations", "failed to load compliance issues", "formulationID", id)
		return
	}
	results, err := formulations.Results(r.Context(), id)
	if err != nil {
		failAndRedirect(w, r, err, "/formulations", "failed to load qa results", "formulationID", id)
		return
	}

	role := currentRole(r)
	render(w, r, http.StatusOK, pages.FormulationDetail(chrome(r, formulationsSection), pages.FormulationDetailData{
		Formulation: f,
		Issues:      issues,
		Results:     results,
		CanEdit:     access.Authorize(role, access.EditFormulation) && !f.Status.Terminal(),
		CanSubmit:   access.Authorize(role, access.SubmitFormulation) && f.Status == models.StatusDraft,
		CanDelete:   access.Authorize(role, access.DeleteFormulation) && (f.Status == models.StatusDraft || f.Status == models.StatusRejected),
		CanDecide:   access.Authorize(role, access.DecideQA) && f.Status == models.StatusPendingQA,
	}))
}

func renderFormulationForm(w http.ResponseWriter, r *http.Request, data pages.FormulationFormData) {
	ingredients, err := ledger.ListIngredients(r.Context(), database)
	if err != nil {
		data.Error = failureMessage(r, err, "failed to list ingredients")
	}
	data.Ingredients = ingredients
	render(w, r, http.StatusOK, pages.FormulationForm(chrome(r, formulationsSection), data))
}

// readFormulation parses and validates the submitted form. The returned
// form data echoes the submission for re-rendering.
func readFormulation(r *http.Request, id uint) (formulation.Input, pages.FormulationFormData, error) {
	data := pages.FormulationFormData{ID: id}
	if err := r.ParseForm(); err != nil {
		return formulation.Input{}, data, err
	}
	form := formulationForm{Name: r.PostFormValue("name"), Version: r.PostFormValue("version")}
	data.Name, data.Version = form.Name, form.Version

	items, rows, lineErr := parseLines(r)
	data.Lines = rows
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		return formulation.Input{}, data, err
	}
	if lineErr != nil {
		data.Error = failureMessage(r, lineErr, "invalid line items")
		return formulation.Input{}, data, lineErr
	}
	return formulation.Input{Name: form.Name, Version: form.Version, Items: items}, data, nil
}

// NewFormulation renders the create form and stores submissions. Failures,
// including insufficient stock, return to the form with nothing persisted.
func NewFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	if r.Method != http.MethodPost {
		renderFormulationForm(w, r, pages.FormulationFormData{})
		return
	}

	in, data, err := readFormulation(r, 0)
	if err != nil {
		renderFormulationForm(w, r, data)
		return
	}
	created, err := formulations.Create(r.Context(), in, currentActor(r))
	if err != nil {
		data.Error = failureMessage(r, err, "failed to create formulation")
		renderFormulationForm(w, r, data)
		return
	}

	if created.ComplianceStatus == models.ComplianceNonCompliant {
		flashSuccess(r, "Formulation created successfully, but it has compliance issues. Please review.")
	} else {
		flashSuccess(r, "Formulation created successfully!")
	}
	redirectTo(w, r, formulationURL(created.ID))
}

// EditFormulation renders the edit form and applies submissions.
func EditFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if r.Method != http.MethodPost {
		f, err := formulations.Get(r.Context(), id)
		if err != nil {
			failAndRedirect(w, r, err, "/formulations", "failed to load formulation", "formulationID", id)
			return
		}
		if f.Status.Terminal() {
			flashError(r, fmt.Sprintf("Cannot edit a formulation that is %s.", f.Status.Label()))
			redirectTo(w, r, formulationURL(id))
			return
		}
		data := pages.FormulationFormData{ID: id, Name: f.Name, Version: f.Version}
		for _, item := range f.Ingredients {
			data.Lines = append(data.Lines, pages.LineRow{IngredientID: item.IngredientID, Quantity: pages.FormatQuantity(item.Quantity)})
		}
		renderFormulationForm(w, r, data)
		return
	}

	in, data, err := readFormulation(r, id)
	if err != nil {
		renderFormulationForm(w, r, data)
		return
	}
	updated, err := formulations.Edit(r.Context(), id, in, currentActor(r))
	if err != nil {
		if notFound(err) {
			failAndRedirect(w, r, err, "/formulations", "formulation vanished during edit", "formulationID", id)
			return
		}
		data.Error = failureMessage(r, err, "failed to edit formulation", "formulationID", id)
		renderFormulationForm(w, r, data)
		return
	}

	if updated.ComplianceStatus == models.ComplianceNonCompliant {
		flashError(r, "Formulation updated but has compliance issues. Please review.")
	} else {
		flashSuccess(r, "Formulation updated and is compliant.")
	}
	redirectTo(w, r, formulationURL(id))
}

// SubmitFormulation sends a draft to QA.
func SubmitFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if _, err := formulations.SubmitForQA(r.Context(), id, currentActor(r)); err != nil {
		failAndRedirect(w, r, err, backTo(err, id), "failed to submit formulation", "formulationID", id)
		return
	}
	flashSuccess(r, "Formulation submitted for QA approval.")
	redirectTo(w, r, formulationURL(id))
}

// DeleteFormulation removes a draft or rejected formulation and returns its stock.
func DeleteFormulation(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if err := formulations.Delete(r.Context(), id, currentActor(r)); err != nil {
		failAndRedirect(w, r, err, backTo(err, id), "failed to delete formulation", "formulationID", id)
		return
	}
	flashSuccess(r, "Formulation deleted.")
	redirectTo(w, r, "/formulations")
}
