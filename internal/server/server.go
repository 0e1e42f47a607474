package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/finantah/credit-simulator/internal/config"
	"github.com/finantah/credit-simulator/internal/optimizer"
	"github.com/finantah/credit-simulator/internal/simulator"
	"github.com/finantah/credit-simulator/pkg/constants"
	"github.com/finantah/credit-simulator/pkg/optimization"
	"github.com/finantah/credit-simulator/pkg/output"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"go.uber.org/zap"
)

// Options wires the handler to its evaluators.
type Options struct {
	// Policy is used for the deterministic evaluator and rejection messages.
	// A zero Policy means profitability.DefaultPolicy.
	Policy profitability.Policy
	// Evaluator overrides the deterministic evaluator built from Policy,
	// typically with a cached one.
	Evaluator simulator.Evaluator
	// Remote serves /api/simulate. Nil disables the endpoint.
	Remote      simulator.Evaluator
	MaxBodySize int64
	RateLimit   RateLimitConfig
	Version     string
}

type handler struct {
	logger      *zap.Logger
	policy      profitability.Policy
	evaluator   simulator.Evaluator
	remote      simulator.Evaluator
	limiter     *clientRateLimiter
	maxBodySize int64
	version     string
}

// NewHandler constructs the HTTP handler that serves the evaluation API.
func NewHandler(logger *zap.Logger, opts Options) (http.Handler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	policy := opts.Policy
	if policy.CommissionRates == nil && policy.MinimumReturns == nil {
		policy = profitability.DefaultPolicy()
	}

	evaluator := opts.Evaluator
	if evaluator == nil {
		deterministic, err := simulator.NewDeterministic(policy, logger)
		if err != nil {
			return nil, fmt.Errorf("invalid policy: %w", err)
		}
		evaluator = deterministic
	}

	remoteEvaluator := opts.Remote
	if remoteEvaluator == nil {
		remoteEvaluator = simulator.Unavailable{}
	}

	maxBodySize := opts.MaxBodySize
	if maxBodySize <= 0 {
		maxBodySize = constants.DefaultMaxBodySizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:      logger,
		policy:      policy,
		evaluator:   evaluator,
		remote:      remoteEvaluator,
		maxBodySize: maxBodySize,
		version:     trimmedVersion,
	}
	if opts.RateLimit.PerSecond > 0 {
		h.limiter = newClientRateLimiter(opts.RateLimit)
	}

	mux := http.NewServeMux()

	// Deterministic evaluation of a single scenario
	mux.HandleFunc("/api/evaluate", h.handleEvaluate)

	// Remote narrative evaluation of a single scenario
	mux.HandleFunc("/api/simulate", h.handleSimulate)

	// Batch evaluation of an uploaded configuration file
	mux.HandleFunc("/api/batch", h.handleBatch)

	mux.HandleFunc("/api/policy", h.handlePolicy)
	mux.HandleFunc("/api/version", h.handleVersion)

	return withRequestID(h.withRateLimit(mux)), nil
}

// flexString accepts a JSON string, number or boolean and keeps its text so
// that malformed values reach the evaluator as entered.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		*f = ""
		return nil
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	case bytes.Equal(trimmed, []byte("true")), bytes.Equal(trimmed, []byte("false")):
		*f = flexString(trimmed)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err != nil {
		return fmt.Errorf("expected a string or number, got %s", trimmed)
	}
	*f = flexString(n.String())
	return nil
}

type scenarioRequest struct {
	Principal          flexString `json:"principal"`
	AnnualRate         flexString `json:"annualRate"`
	OpeningFeeRate     flexString `json:"openingFeeRate"`
	FinancierFeeShare  flexString `json:"financierFeeShare"`
	PromoterTier       flexString `json:"promoterTier"`
	DefaultProbability flexString `json:"defaultProbability"`
	CreditRating       flexString `json:"creditRating"`
	Collateralized     flexString `json:"collateralized"`
}

func (s scenarioRequest) raw() profitability.RawScenario {
	return profitability.RawScenario{
		Principal:          string(s.Principal),
		AnnualRate:         string(s.AnnualRate),
		OpeningFeeRate:     string(s.OpeningFeeRate),
		FinancierFeeShare:  string(s.FinancierFeeShare),
		PromoterTier:       string(s.PromoterTier),
		DefaultProbability: string(s.DefaultProbability),
		CreditRating:       string(s.CreditRating),
		Collateralized:     string(s.Collateralized),
	}
}

type evaluateResponse struct {
	RequestID  string                      `json:"requestId"`
	Mode       string                      `json:"mode"`
	Rejected   bool                        `json:"rejected"`
	Rejection  profitability.RejectionKind `json:"rejection,omitempty"`
	Message    string                      `json:"message"`
	Evaluation *profitability.Evaluation   `json:"evaluation,omitempty"`

	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

type simulateResponse struct {
	RequestID     string `json:"requestId"`
	Mode          string `json:"mode"`
	Deterministic bool   `json:"deterministic"`
	Narrative     string `json:"narrative"`
}

type batchResponse struct {
	Scenarios []string           `json:"scenarios"`
	Reports   []evaluateResponse `json:"reports"`
	CSV       string             `json:"csv"`
	Warnings  []string           `json:"warnings,omitempty"`
	Duration  string             `json:"duration"`
}

func (h *handler) decodeScenario(w http.ResponseWriter, r *http.Request, op string) (profitability.RawScenario, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)

	var req scenarioRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request body exceeds limit of %d bytes", h.maxBodySize), op)
			return profitability.RawScenario{}, false
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode scenario: %v", err), op)
		return profitability.RawScenario{}, false
	}
	return req.raw(), true
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	raw, ok := h.decodeScenario(w, r, op)
	if !ok {
		return
	}

	outcome, err := h.evaluator.Evaluate(r.Context(), raw)
	if err != nil || outcome.Result == nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("evaluation failed: %v", err), op)
		return
	}

	response := newEvaluateResponse(requestIDFrom(r.Context()), outcome, h.policy)
	h.logger.Info("scenario evaluated",
		zap.String("op", op),
		zap.String("requestId", response.RequestID),
		zap.Bool("rejected", response.Rejected),
		zap.String("rejection", string(response.Rejection)),
	)

	// A rejection is a normal result, not a client error.
	h.writeJSON(w, http.StatusOK, response)
}

func newEvaluateResponse(requestID string, outcome simulator.Outcome, policy profitability.Policy) evaluateResponse {
	result := *outcome.Result
	return evaluateResponse{
		RequestID:  requestID,
		Mode:       outcome.Mode,
		Rejected:   result.IsRejected(),
		Rejection:  result.Rejection,
		Message:    output.Describe(result, policy),
		Evaluation: result.Evaluation,
	}
}

func (h *handler) handleSimulate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSimulate"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	raw, ok := h.decodeScenario(w, r, op)
	if !ok {
		return
	}

	outcome, err := h.remote.Evaluate(r.Context(), raw)
	if err != nil {
		if errors.Is(err, simulator.ErrRemoteDisabled) {
			h.respondErrorWithOp(w, r, http.StatusServiceUnavailable, "remote simulation is not configured", op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadGateway, fmt.Sprintf("remote simulation failed: %v", err), op)
		return
	}

	h.writeJSON(w, http.StatusOK, simulateResponse{
		RequestID:     requestIDFrom(r.Context()),
		Mode:          outcome.Mode,
		Deterministic: outcome.Deterministic,
		Narrative:     outcome.Narrative,
	})
}

func (h *handler) handleBatch(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleBatch"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodySize)
	if err := r.ParseMultipartForm(h.maxBodySize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxBodySize), op)
			return
		}
		h.respondErrorWithOp(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, "missing configuration file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read configuration: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	warnings := cfg.ValidateConfiguration()
	policy, err := cfg.Policy.ToPolicy()
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	evaluator, err := simulator.NewDeterministic(policy, h.logger)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	reports, err := simulator.Simulate(r.Context(), h.logger, *cfg, evaluator)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to run scenarios: %v", err), op)
		return
	}

	runner, err := optimizer.NewRunner(h.logger, policy)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	optimized, err := runner.Run(*cfg)
	if err != nil {
		h.respondErrorWithOp(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	optimized.Apply(reports)

	requestID := requestIDFrom(r.Context())
	response := batchResponse{
		Scenarios: make([]string, 0, len(reports)),
		Reports:   make([]evaluateResponse, 0, len(reports)),
		CSV:       output.CsvString(reports, policy),
		Warnings:  warnings,
	}
	for _, report := range reports {
		response.Scenarios = append(response.Scenarios, report.Name)
		entry := newEvaluateResponse(requestID, report.Outcome, policy)
		entry.Optimizations = report.Optimizations
		response.Reports = append(response.Reports, entry)
	}

	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("batch evaluated",
		zap.String("op", op),
		zap.String("requestId", requestID),
		zap.Int("scenarios", len(reports)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func (h *handler) handlePolicy(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, h.policy)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	requestID := requestIDFrom(r.Context())
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestId", requestID),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg, "requestId": requestID})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
