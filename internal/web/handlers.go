package web

import (
	"bytes"
	"net/http"

	"ai-supply-planner/internal/export"
	"ai-supply-planner/internal/inventory"
	"ai-supply-planner/internal/planner"
)

// stateView is the JSON shape of a session snapshot.
type stateView struct {
	InventoryPlan []inventory.PlanItem     `json:"inventoryPlan"`
	ShoppingPlan  []inventory.ShoppingItem `json:"shoppingPlan"`
	ShoppingTotal string                   `json:"shoppingTotal,omitempty"`
	Running       string                   `json:"running,omitempty"`
}

func newStateView(st planner.State) stateView {
	v := stateView{
		InventoryPlan: st.InventoryPlan,
		ShoppingPlan:  st.ShoppingPlan,
		Running:       string(st.Running),
	}
	if v.InventoryPlan == nil {
		v.InventoryPlan = []inventory.PlanItem{}
	}
	if v.ShoppingPlan == nil {
		v.ShoppingPlan = []inventory.ShoppingItem{}
	}
	if total, skipped := inventory.SelectedTotal(st.ShoppingPlan); len(st.ShoppingPlan) > skipped {
		v.ShoppingTotal = total.StringFixed(2) + " €"
	}
	return v
}

type selectOfferRequest struct {
	ItemIndex  int `json:"itemIndex"`
	OfferIndex int `json:"offerIndex"`
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, newStateView(sessionFrom(r.Context()).Snapshot()))
}

func (s *Server) generatePlan(w http.ResponseWriter, r *http.Request) {
	var input inventory.FormInput
	if err := decodeJSONBody(r, &input); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}

	sess := sessionFrom(r.Context())
	if _, err := sess.GenerateInventoryPlan(r.Context(), input); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeSuccess(w, newStateView(sess.Snapshot()))
}

func (s *Server) generateShoppingPlan(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if _, err := sess.GenerateShoppingPlan(r.Context()); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeSuccess(w, newStateView(sess.Snapshot()))
}

func (s *Server) refreshPrices(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	if _, err := sess.RefreshShoppingPlanPrices(r.Context()); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeSuccess(w, newStateView(sess.Snapshot()))
}

func (s *Server) selectOffer(w http.ResponseWriter, r *http.Request) {
	var body selectOfferRequest
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}

	sess := sessionFrom(r.Context())
	if !sess.SelectOffer(body.ItemIndex, body.OfferIndex) {
		writeError(r.Context(), s.log, w, &errBadRequest{
			msg:     "offer not found",
			details: map[string]int{"itemIndex": body.ItemIndex, "offerIndex": body.OfferIndex},
		})
		return
	}
	writeSuccess(w, newStateView(sess.Snapshot()))
}

func (s *Server) planTSV(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.requirePlan(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
	_, _ = w.Write([]byte(export.PlanTSV(plan)))
}

func (s *Server) planPDF(w http.ResponseWriter, r *http.Request) {
	plan, ok := s.requirePlan(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := export.PlanPDF(&buf, plan, s.pdf); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writePDF(w, export.PlanPDFFilename, buf.Bytes())
}

func (s *Server) shoppingPlanPDF(w http.ResponseWriter, r *http.Request) {
	items := sessionFrom(r.Context()).Snapshot().ShoppingPlan
	if len(items) == 0 {
		writeError(r.Context(), s.log, w, &planner.OperationError{Op: planner.OpShoppingPlan, Err: planner.ErrNoShoppingPlan})
		return
	}
	var buf bytes.Buffer
	if err := export.ShoppingPlanPDF(&buf, items, s.pdf); err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writePDF(w, export.ShoppingPlanPDFFilename, buf.Bytes())
}

func (s *Server) printPlan(w http.ResponseWriter, r *http.Request) {
	st := sessionFrom(r.Context()).Snapshot()
	if len(st.InventoryPlan) == 0 {
		writeError(r.Context(), s.log, w, &planner.OperationError{Op: planner.OpInventoryPlan, Err: planner.ErrNoInventoryPlan})
		return
	}
	page, err := renderPage(st)
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	printable, err := export.PrintableHTML(page)
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeHTML(w, printable)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	page, err := renderPage(sessionFrom(r.Context()).Snapshot())
	if err != nil {
		writeError(r.Context(), s.log, w, err)
		return
	}
	writeHTML(w, page)
}

func (s *Server) requirePlan(w http.ResponseWriter, r *http.Request) ([]inventory.PlanItem, bool) {
	plan := sessionFrom(r.Context()).Snapshot().InventoryPlan
	if len(plan) == 0 {
		writeError(r.Context(), s.log, w, &planner.OperationError{Op: planner.OpInventoryPlan, Err: planner.ErrNoInventoryPlan})
		return nil, false
	}
	return plan, true
}

func writePDF(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	_, _ = w.Write(body)
}

func writeHTML(w http.ResponseWriter, page string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(page))
}
