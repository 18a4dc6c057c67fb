package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lumenbank/servicing/internal/application/dto"
	"github.com/lumenbank/servicing/internal/application/usecase"
	"github.com/lumenbank/servicing/internal/domain/valueobject"
)

// CaseHandler exposes the servicing operations over JSON HTTP.
type CaseHandler struct {
	createCase   *usecase.CreateCaseUseCase
	disburse     *usecase.RecordDisbursementUseCase
	applyPayment *usecase.ApplyPaymentUseCase
	postAccrual  *usecase.PostAccrualUseCase
	restructure  *usecase.ApplyRestructuringUseCase
	getBalance   *usecase.GetBalanceUseCase
	listSchedule *usecase.ListScheduleUseCase
	transition   *usecase.TransitionCaseUseCase
	escrow       *usecase.EscrowUseCase
	logger       *slog.Logger
}

// NewCaseHandler creates the handler over the wired use cases.
func NewCaseHandler(
	createCase *usecase.CreateCaseUseCase,
	disburse *usecase.RecordDisbursementUseCase,
	applyPayment *usecase.ApplyPaymentUseCase,
	postAccrual *usecase.PostAccrualUseCase,
	restructure *usecase.ApplyRestructuringUseCase,
	getBalance *usecase.GetBalanceUseCase,
	listSchedule *usecase.ListScheduleUseCase,
	transition *usecase.TransitionCaseUseCase,
	escrow *usecase.EscrowUseCase,
	logger *slog.Logger,
) *CaseHandler {
	return &CaseHandler{
		createCase:   createCase,
		disburse:     disburse,
		applyPayment: applyPayment,
		postAccrual:  postAccrual,
		restructure:  restructure,
		getBalance:   getBalance,
		listSchedule: listSchedule,
		transition:   transition,
		escrow:       escrow,
		logger:       logger,
	}
}

// RegisterRoutes attaches the servicing routes to the router.
func (h *CaseHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/cases", h.handleCreateCase).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/disbursements", h.handleRecordDisbursement).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/payments", h.handleApplyPayment).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/accruals", h.handlePostAccrual).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/restructurings", h.handleApplyRestructuring).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/balance", h.handleGetBalance).Methods(http.MethodGet)
	r.HandleFunc("/cases/{id}/schedule", h.handleListSchedule).Methods(http.MethodGet)
	r.HandleFunc("/cases/{id}/transitions", h.handleTransition).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/escrow/analyses", h.handleEscrowAnalysis).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/escrow/deposits", h.handleEscrowDeposit).Methods(http.MethodPost)
	r.HandleFunc("/cases/{id}/escrow/disbursements", h.handleEscrowDisbursement).Methods(http.MethodPost)
}

type termSetBody struct {
	Principal            decimal.Decimal `json:"principal"`
	AnnualRate           decimal.Decimal `json:"annual_rate"`
	TermLength           int             `json:"term_length"`
	Method               string          `json:"method"`
	PaymentFrequency     string          `json:"payment_frequency"`
	CompoundingFrequency string          `json:"compounding_frequency,omitempty"`
	DayCount             string          `json:"day_count,omitempty"`
	MaturityDate         time.Time       `json:"maturity_date"`
	BalloonFraction      decimal.Decimal `json:"balloon_fraction,omitempty"`
}

func (b termSetBody) toTermSet() (valueobject.TermSet, error) {
	method, err := valueobject.NewAmortizationMethod(b.Method)
	if err != nil {
		return valueobject.TermSet{}, err
	}
	paymentFreq, err := valueobject.NewPaymentFrequency(b.PaymentFrequency)
	if err != nil {
		return valueobject.TermSet{}, err
	}
	var compounding valueobject.CompoundingFrequency
	if b.CompoundingFrequency != "" {
		if compounding, err = valueobject.NewCompoundingFrequency(b.CompoundingFrequency); err != nil {
			return valueobject.TermSet{}, err
		}
	}
	var dayCount valueobject.DayCountConvention
	if b.DayCount != "" {
		if dayCount, err = valueobject.NewDayCountConvention(b.DayCount); err != nil {
			return valueobject.TermSet{}, err
		}
	}
	return valueobject.NewTermSet(
		b.Principal, b.AnnualRate, b.TermLength,
		method, paymentFreq, compounding, dayCount,
		b.MaturityDate, b.BalloonFraction,
	)
}

func (h *CaseHandler) handleCreateCase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID        string      `json:"tenant_id"`
		ContractID      string      `json:"contract_id"`
		ProductID       string      `json:"product_id"`
		ApplicationID   string      `json:"application_id,omitempty"`
		Terms           termSetBody `json:"terms"`
		OriginationDate time.Time   `json:"origination_date"`
		Plan            []struct {
			PlannedDate   time.Time       `json:"planned_date"`
			PlannedAmount decimal.Decimal `json:"planned_amount"`
		} `json:"plan,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	terms, err := body.Terms.toTermSet()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	req := dto.CreateCaseRequest{
		TenantID:        body.TenantID,
		ContractID:      body.ContractID,
		ProductID:       body.ProductID,
		ApplicationID:   body.ApplicationID,
		Terms:           terms,
		OriginationDate: body.OriginationDate,
	}
	for _, p := range body.Plan {
		req.Plan = append(req.Plan, dto.PlannedDisbursement{
			PlannedDate:   p.PlannedDate,
			PlannedAmount: p.PlannedAmount,
		})
	}

	resp, err := h.createCase.Execute(r.Context(), req)
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handleRecordDisbursement(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID        string          `json:"tenant_id"`
		PlanEntryID     string          `json:"plan_entry_id,omitempty"`
		ReferenceID     string          `json:"reference_id"`
		ReversesEventID string          `json:"reverses_event_id,omitempty"`
		Amount          decimal.Decimal `json:"amount"`
		Date            time.Time       `json:"date"`
		Method          string          `json:"method"`
		Status          string          `json:"status"`
		IsFinal         bool            `json:"is_final"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	method, err := valueobject.NewDisbursementMethod(body.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := valueobject.NewDisbursementStatus(body.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.disburse.Execute(r.Context(), dto.RecordDisbursementRequest{
		TenantID:        body.TenantID,
		CaseID:          mux.Vars(r)["id"],
		PlanEntryID:     body.PlanEntryID,
		ReferenceID:     body.ReferenceID,
		ReversesEventID: body.ReversesEventID,
		Amount:          body.Amount,
		Date:            body.Date,
		Method:          method,
		Status:          status,
		IsFinal:         body.IsFinal,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID      string          `json:"tenant_id"`
		InstallmentID string          `json:"installment_id,omitempty"`
		TransactionID string          `json:"transaction_id"`
		Amount        decimal.Decimal `json:"amount"`
		Date          time.Time       `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.applyPayment.Execute(r.Context(), dto.ApplyPaymentRequest{
		TenantID:      body.TenantID,
		CaseID:        mux.Vars(r)["id"],
		InstallmentID: body.InstallmentID,
		TransactionID: body.TransactionID,
		Amount:        body.Amount,
		Date:          body.Date,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handlePostAccrual(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID string          `json:"tenant_id"`
		Type     string          `json:"type"`
		Amount   decimal.Decimal `json:"amount"`
		Date     time.Time       `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	accrualType, err := valueobject.NewAccrualType(body.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.postAccrual.Execute(r.Context(), dto.PostAccrualRequest{
		TenantID: body.TenantID,
		CaseID:   mux.Vars(r)["id"],
		Type:     accrualType,
		Amount:   body.Amount,
		Date:     body.Date,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handleApplyRestructuring(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID     string      `json:"tenant_id"`
		Date         time.Time   `json:"date"`
		NewTerms     termSetBody `json:"new_terms"`
		ApprovedBy   string      `json:"approved_by"`
		ZeroInterest bool        `json:"zero_interest"`
		ZeroFees     bool        `json:"zero_fees"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	terms, err := body.NewTerms.toTermSet()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.restructure.Execute(r.Context(), dto.ApplyRestructuringRequest{
		TenantID:     body.TenantID,
		CaseID:       mux.Vars(r)["id"],
		Date:         body.Date,
		NewTerms:     terms,
		ApprovedBy:   body.ApprovedBy,
		ZeroInterest: body.ZeroInterest,
		ZeroFees:     body.ZeroFees,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	resp, err := h.getBalance.Execute(r.Context(), r.URL.Query().Get("tenant_id"), mux.Vars(r)["id"])
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CaseHandler) handleListSchedule(w http.ResponseWriter, r *http.Request) {
	resp, err := h.listSchedule.Execute(r.Context(), r.URL.Query().Get("tenant_id"), mux.Vars(r)["id"])
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CaseHandler) handleTransition(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID string `json:"tenant_id"`
		Target   string `json:"target"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	target, err := valueobject.NewServicingStatus(body.Target)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.transition.Execute(r.Context(), dto.TransitionCaseRequest{
		TenantID: body.TenantID,
		CaseID:   mux.Vars(r)["id"],
		Target:   target,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CaseHandler) handleEscrowAnalysis(w http.ResponseWriter, r *http.Request) {
	var body struct {
		TenantID         string          `json:"tenant_id"`
		EscrowID         string          `json:"escrow_id,omitempty"`
		MonthlyPayment   decimal.Decimal `json:"monthly_payment"`
		AnalysisDate     time.Time       `json:"analysis_date"`
		NextAnalysisDate time.Time       `json:"next_analysis_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := h.escrow.Analyze(r.Context(), dto.EscrowAnalysisRequest{
		TenantID:         body.TenantID,
		CaseID:           mux.Vars(r)["id"],
		EscrowID:         body.EscrowID,
		MonthlyPayment:   body.MonthlyPayment,
		AnalysisDate:     body.AnalysisDate,
		NextAnalysisDate: body.NextAnalysisDate,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *CaseHandler) handleEscrowDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowMovement(w, r, h.escrow.Deposit)
}

func (h *CaseHandler) handleEscrowDisbursement(w http.ResponseWriter, r *http.Request) {
	h.handleEscrowMovement(w, r, h.escrow.Disburse)
}

func (h *CaseHandler) handleEscrowMovement(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, req dto.EscrowMovementRequest) (dto.EscrowResponse, error),
) {
	var body struct {
		TenantID string          `json:"tenant_id"`
		EscrowID string          `json:"escrow_id"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	resp, err := apply(r.Context(), dto.EscrowMovementRequest{
		TenantID: body.TenantID,
		CaseID:   mux.Vars(r)["id"],
		EscrowID: body.EscrowID,
		Amount:   body.Amount,
	})
	if err != nil {
		h.writeDomainError(r, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// writeDomainError maps the sentinel taxonomy onto HTTP status codes.
func (h *CaseHandler) writeDomainError(r *http.Request, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, valueobject.ErrCaseNotFound),
		errors.Is(err, valueobject.ErrInstallmentNotFound),
		errors.Is(err, valueobject.ErrEscrowNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, valueobject.ErrInvalidTermSet),
		errors.Is(err, valueobject.ErrOverpaymentRejected),
		errors.Is(err, valueobject.ErrAmountExceedsRemaining):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, valueobject.ErrDuplicateEvent),
		errors.Is(err, valueobject.ErrInstallmentAlreadySettled),
		errors.Is(err, valueobject.ErrPlanEntryAlreadyCompleted),
		errors.Is(err, valueobject.ErrDisbursementPhaseClosed),
		errors.Is(err, valueobject.ErrInvalidStateTransition):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, valueobject.ErrNoCurrentBalance):
		writeError(w, http.StatusUnprocessableEntity, err)
	default:
		h.logger.ErrorContext(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
