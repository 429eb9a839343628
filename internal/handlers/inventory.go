package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"perfumery/internal/access"
	"perfumery/internal/inventory"
	"perfumery/internal/reports"
	"perfumery/internal/views/pages"
)

const (
	inventorySection = "inventory"
	movementLimit    = 20
)

// Inventory lists ingredients with their stock status.
func Inventory(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	all, err := ledger.ListIngredients(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to list ingredients")
		return
	}
	filters := pages.IngredientFiltersFromRequest(r)
	render(w, r, http.StatusOK, pages.IngredientList(chrome(r, inventorySection), pages.IngredientListData{
		Ingredients: pages.FilterIngredients(all, filters),
		Filters:     filters,
		CanManage:   access.Authorize(currentRole(r), access.ManageIngredients),
	}))
}

func readIngredient(r *http.Request, id uint) (inventory.IngredientInput, pages.IngredientFormData, error) {
	data := pages.IngredientFormData{ID: id}
	if err := r.ParseForm(); err != nil {
		return inventory.IngredientInput{}, data, err
	}
	form := ingredientForm{
		Name:             strings.TrimSpace(r.PostFormValue("name")),
		CurrentStock:     strings.TrimSpace(r.PostFormValue("current_stock")),
		ReorderThreshold: strings.TrimSpace(r.PostFormValue("reorder_threshold")),
	}
	data.Name, data.CurrentStock, data.ReorderThreshold = form.Name, form.CurrentStock, form.ReorderThreshold
	if err := validate.Struct(form); err != nil {
		data.Error = validationMessage(err)
		return inventory.IngredientInput{}, data, err
	}
	return inventory.IngredientInput{
		Name:             form.Name,
		CurrentStock:     parseDecimal(form.CurrentStock),
		ReorderThreshold: parseDecimal(form.ReorderThreshold),
	}, data, nil
}

func renderIngredientForm(w http.ResponseWriter, r *http.Request, data pages.IngredientFormData) {
	if data.ID != 0 {
		movements, err := ledger.Movements(r.Context(), database, data.ID, movementLimit)
		if err != nil {
			data.Error = failureMessage(r, err, "failed to load stock movements", "ingredientID", data.ID)
		}
		data.Movements = movements
	}
	render(w, r, http.StatusOK, pages.IngredientForm(chrome(r, inventorySection), data))
}

// NewIngredient renders the create form and stores submissions.
func NewIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	if r.Method != http.MethodPost {
		renderIngredientForm(w, r, pages.IngredientFormData{ReorderThreshold: "0.00"})
		return
	}
	in, data, err := readIngredient(r, 0)
	if err != nil {
		renderIngredientForm(w, r, data)
		return
	}
	actor := currentActor(r)
	if _, err := ledger.CreateIngredient(r.Context(), database, in, actor.ID); err != nil {
		data.Error = failureMessage(r, err, "failed to create ingredient")
		renderIngredientForm(w, r, data)
		return
	}
	flashSuccess(r, "Ingredient added successfully.")
	redirectTo(w, r, "/inventory")
}

// EditIngredient renders the edit form with recent stock movements and applies submissions.
func EditIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if r.Method != http.MethodPost {
		ingredient, err := ledger.GetIngredient(r.Context(), database, id)
		if err != nil {
			failAndRedirect(w, r, err, "/inventory", "failed to load ingredient", "ingredientID", id)
			return
		}
		renderIngredientForm(w, r, pages.IngredientFormData{
			ID:               id,
			Name:             ingredient.Name,
			CurrentStock:     pages.FormatQuantity(ingredient.CurrentStock),
			ReorderThreshold: pages.FormatQuantity(ingredient.ReorderThreshold),
		})
		return
	}

	in, data, err := readIngredient(r, id)
	if err != nil {
		renderIngredientForm(w, r, data)
		return
	}
	if _, err := ledger.UpdateIngredient(r.Context(), database, id, in, currentActor(r).ID); err != nil {
		if notFound(err) {
			failAndRedirect(w, r, err, "/inventory", "ingredient vanished during edit", "ingredientID", id)
			return
		}
		data.Error = failureMessage(r, err, "failed to update ingredient", "ingredientID", id)
		renderIngredientForm(w, r, data)
		return
	}
	flashSuccess(r, "Ingredient updated successfully.")
	redirectTo(w, r, "/inventory")
}

// UpdateStock sets the stock of one ingredient from the inventory list.
func UpdateStock(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	form := stockForm{CurrentStock: strings.TrimSpace(r.PostFormValue("current_stock"))}
	if err := validate.Struct(form); err != nil {
		flashError(r, validationMessage(err))
		redirectTo(w, r, "/inventory")
		return
	}
	ingredient, err := ledger.Adjust(r.Context(), database, id, parseDecimal(form.CurrentStock), currentActor(r).ID, "manual stock update")
	if err != nil {
		failAndRedirect(w, r, err, "/inventory", "failed to update stock", "ingredientID", id)
		return
	}
	flashSuccess(r, fmt.Sprintf("Stock updated for %s", ingredient.Name))
	redirectTo(w, r, "/inventory")
}

// DeleteIngredient removes an ingredient no formulation uses.
func DeleteIngredient(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	id := idParam(r)
	if err := ledger.DeleteIngredient(r.Context(), database, id); err != nil {
		failAndRedirect(w, r, err, "/inventory", "failed to delete ingredient", "ingredientID", id)
		return
	}
	flashSuccess(r, "Ingredient deleted.")
	redirectTo(w, r, "/inventory")
}

// InventorySummary renders the manager's read-only stock overview.
func InventorySummary(w http.ResponseWriter, r *http.Request) {
	if !ready(w) {
		return
	}
	summary, err := reports.BuildInventorySummary(r.Context(), database)
	if err != nil {
		serverError(w, r, err, "failed to build inventory summary")
		return
	}
	render(w, r, http.StatusOK, pages.InventorySummary(chrome(r, "inventory-summary"), summary))
}
