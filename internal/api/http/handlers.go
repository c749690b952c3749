// Package http exposes the booking workflow over a JSON API: session carts,
// availability queries, booking finalization, the approval decision and
// return settlement.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/selection"
	"equiprent-backend/internal/service"
)

const dateLayout = "2006-01-02"

type Handler struct {
	availability service.AvailabilityService
	booking      service.BookingService
	settlement   service.SettlementService
	catalog      service.CatalogService
	selections   selection.Store
}

func NewHandler(
	availability service.AvailabilityService,
	booking service.BookingService,
	settlement service.SettlementService,
	catalog service.CatalogService,
	selections selection.Store,
) *Handler {
	return &Handler{
		availability: availability,
		booking:      booking,
		settlement:   settlement,
		catalog:      catalog,
		selections:   selections,
	}
}

// Register mounts all routes on the router.
func (h *Handler) Register(r *mux.Router) {
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/availability/items/{id}", h.itemAvailability).Methods(http.MethodGet)
	api.HandleFunc("/availability/item-types/{id}", h.typeAvailability).Methods(http.MethodGet)
	api.HandleFunc("/availability/sets/{id}", h.setAvailability).Methods(http.MethodGet)

	api.HandleFunc("/sessions/{sessionID}/selection", h.viewSelection).Methods(http.MethodGet)
	api.HandleFunc("/sessions/{sessionID}/selection", h.addSelection).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/selection", h.updateSelection).Methods(http.MethodPut)
	api.HandleFunc("/sessions/{sessionID}/selection", h.clearSelection).Methods(http.MethodDelete)

	api.HandleFunc("/sessions/{sessionID}/bookings", h.finalizeBooking).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}", h.rentalStatement).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id}/approve", h.approveRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/reject", h.rejectRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id}/settle", h.settleReturn).Methods(http.MethodPost)

	api.HandleFunc("/item-types", h.createItemType).Methods(http.MethodPost)
	api.HandleFunc("/item-types/{id}", h.updateItemType).Methods(http.MethodPut)
	api.HandleFunc("/items", h.registerItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}/status", h.setItemStatus).Methods(http.MethodPut)
	api.HandleFunc("/sets", h.createSet).Methods(http.MethodPost)
	api.HandleFunc("/sets/{id}", h.getSet).Methods(http.MethodGet)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Field: name, Reason: "must be a positive integer"}
	}
	return id, nil
}

func hasDateRange(r *http.Request) bool {
	q := r.URL.Query()
	return q.Get("start") != "" || q.Get("end") != ""
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start"))
	if err != nil {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "start", Reason: "expected YYYY-MM-DD"}
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end"))
	if err != nil {
		return time.Time{}, time.Time{}, &domain.ValidationError{Field: "end", Reason: "expected YYYY-MM-DD"}
	}
	return start, end, nil
}

func (h *Handler) itemAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	start, end, err := dateRange(r)
	if err != nil {
		writeError(w, err)
		return
	}
	free, err := h.availability.IsItemFree(r.Context(), id, start, end)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"available": free})
}

// typeAvailability answers date-ranged queries when start/end are given and
// the current in-stock count when they are omitted.
func (h *Handler) typeAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var count int
	if hasDateRange(r) {
		start, end, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		count, err = h.availability.AvailableCount(r.Context(), id, start, end)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		count, err = h.availability.CurrentTypeStock(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"available_count": count})
}

func (h *Handler) setAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var count int
	if hasDateRange(r) {
		start, end, err := dateRange(r)
		if err != nil {
			writeError(w, err)
			return
		}
		count, err = h.availability.AvailableSetCount(r.Context(), id, start, end)
		if err != nil {
			writeError(w, err)
			return
		}
	} else {
		count, err = h.availability.CurrentSetStock(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]int{"available_count": count})
}

type selectionLineRequest struct {
	Kind     domain.SelectionKind `json:"kind"`
	ID       int64                `json:"id"`
	Quantity int32                `json:"quantity"`
}

func (req *selectionLineRequest) validate() error {
	if req.Kind != domain.SelectionKindItem && req.Kind != domain.SelectionKindSet {
		return &domain.ValidationError{Field: "kind", Reason: `must be "item" or "set"`}
	}
	if req.ID <= 0 {
		return &domain.ValidationError{Field: "id", Reason: "must be a positive integer"}
	}
	return nil
}

func (h *Handler) viewSelection(w http.ResponseWriter, r *http.Request) {
	sel, err := h.selections.View(r.Context(), mux.Vars(r)["sessionID"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) addSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	sessionID := mux.Vars(r)["sessionID"]
	if err := h.selections.Add(r.Context(), sessionID, req.Kind, req.ID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	sel, err := h.selections.View(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) updateSelection(w http.ResponseWriter, r *http.Request) {
	var req selectionLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}
	sessionID := mux.Vars(r)["sessionID"]
	if err := h.selections.SetQuantity(r.Context(), sessionID, req.Kind, req.ID, req.Quantity); err != nil {
		writeError(w, err)
		return
	}
	sel, err := h.selections.View(r.Context(), sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sel)
}

func (h *Handler) clearSelection(w http.ResponseWriter, r *http.Request) {
	if err := h.selections.Clear(r.Context(), mux.Vars(r)["sessionID"]); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

type finalizeBookingRequest struct {
	CustomerID    int64  `json:"customer_id"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	PaymentMethod string `json:"payment_method"`
	SlipReference string `json:"slip_reference"`
}

func (h *Handler) finalizeBooking(w http.ResponseWriter, r *http.Request) {
	var req finalizeBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		writeError(w, &domain.ValidationError{Field: "start_date", Reason: "expected YYYY-MM-DD"})
		return
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		writeError(w, &domain.ValidationError{Field: "end_date", Reason: "expected YYYY-MM-DD"})
		return
	}

	rt, err := h.booking.FinalizeBooking(r.Context(), service.BookingInput{
		SessionID:     mux.Vars(r)["sessionID"],
		CustomerID:    req.CustomerID,
		StartDate:     start,
		EndDate:       end,
		PaymentMethod: domain.PaymentMethod(req.PaymentMethod),
		SlipReference: req.SlipReference,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rt)
}

type rentalStatementResponse struct {
	Transaction     *domain.RentalTransaction `json:"transaction"`
	Payments        []domain.Payment          `json:"payments"`
	DamageReports   []domain.DamageReport     `json:"damage_reports,omitempty"`
	AmountPaidCents int64                     `json:"amount_paid_cents"`
	BalanceCents    int64                     `json:"balance_cents"`
}

func (h *Handler) rentalStatement(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	st, err := h.settlement.RentalStatement(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalStatementResponse{
		Transaction:     st.Transaction,
		Payments:        st.Payments,
		DamageReports:   st.DamageReports,
		AmountPaidCents: st.AmountPaidCents,
		BalanceCents:    st.BalanceCents,
	})
}

func (h *Handler) approveRental(w http.ResponseWriter, r *http.Request) {
	h.decideRental(w, r, h.booking.ApproveRental)
}

func (h *Handler) rejectRental(w http.ResponseWriter, r *http.Request) {
	h.decideRental(w, r, h.booking.RejectRental)
}

func (h *Handler) decideRental(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id int64) (*domain.RentalTransaction, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	rt, err := decide(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt)
}

type settleReturnRequest struct {
	AdditionalFineCents int64   `json:"additional_fine_cents"`
	FineDescription     string  `json:"fine_description"`
	DamagedItemIDs      []int64 `json:"damaged_item_ids"`
	PaymentMethod       string  `json:"payment_method"`
	SlipReference       string  `json:"slip_reference"`
	Notes               string  `json:"notes"`
}

type settleReturnResponse struct {
	Transaction      *domain.RentalTransaction `json:"transaction"`
	OutstandingCents int64                     `json:"outstanding_cents"`
	ClosingPayment   *domain.Payment           `json:"closing_payment,omitempty"`
}

func (h *Handler) settleReturn(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req settleReturnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}

	result, err := h.settlement.SettleReturn(r.Context(), service.SettlementInput{
		TransactionID:       id,
		AdditionalFineCents: req.AdditionalFineCents,
		FineDescription:     req.FineDescription,
		DamagedItemIDs:      req.DamagedItemIDs,
		PaymentMethod:       domain.PaymentMethod(req.PaymentMethod),
		SlipReference:       req.SlipReference,
		Notes:               req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settleReturnResponse{
		Transaction:      result.Transaction,
		OutstandingCents: result.OutstandingCents,
		ClosingPayment:   result.ClosingPayment,
	})
}

func (h *Handler) createItemType(w http.ResponseWriter, r *http.Request) {
	var it domain.ItemType
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if err := h.catalog.CreateItemType(r.Context(), &it); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *Handler) updateItemType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var it domain.ItemType
	if err := json.NewDecoder(r.Body).Decode(&it); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	it.ID = id
	if err := h.catalog.UpdateItemType(r.Context(), &it); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, it)
}

type registerItemRequest struct {
	ItemTypeID     int64  `json:"item_type_id"`
	PurchaseDate   string `json:"purchase_date"`
	ConditionNotes string `json:"condition_notes"`
}

func (h *Handler) registerItem(w http.ResponseWriter, r *http.Request) {
	var req registerItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	var purchaseDate *time.Time
	if req.PurchaseDate != "" {
		d, err := time.Parse(dateLayout, req.PurchaseDate)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "purchase_date", Reason: "expected YYYY-MM-DD"})
			return
		}
		purchaseDate = &d
	}
	item, err := h.catalog.RegisterItem(r.Context(), req.ItemTypeID, purchaseDate, req.ConditionNotes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

type setItemStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) setItemStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req setItemStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	item, err := h.catalog.SetItemStatus(r.Context(), id, domain.ItemStatus(req.Status))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) createSet(w http.ResponseWriter, r *http.Request) {
	var set domain.ItemSet
	if err := json.NewDecoder(r.Body).Decode(&set); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Reason: "invalid JSON"})
		return
	}
	if err := h.catalog.CreateSet(r.Context(), &set); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

func (h *Handler) getSet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	set, err := h.catalog.GetSet(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}
