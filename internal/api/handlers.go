package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcrsim/worldsim/internal/model"
	"github.com/gcrsim/worldsim/internal/scenario"
	"github.com/gcrsim/worldsim/internal/sim"
	"github.com/gcrsim/worldsim/internal/store"
)

// handleRun executes one scenario and returns its full series.
func (s *Server) handleRun(c *gin.Context) {
	var req RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
		return
	}

	sc := scenario.Scenario{}
	if req.XCCPrice != nil {
		sc[model.XCCPriceParam] = *req.XCCPrice
	}

	result, ok := s.runScenario(c, sc)
	if !ok {
		return
	}

	resp := s.runResponse(sc, result)

	if req.Persist && s.store != nil {
		key := scenario.Key(s.engine.ModelVersion(), sc)
		rec, err := s.store.SaveRun(c.Request.Context(), key, s.engine.ModelVersion(), sc, result)
		if err != nil {
			slog.Error("persist run failed", "error", err)
			writeError(c, http.StatusInternalServerError, "PERSIST_FAILED", err.Error(), nil)
			return
		}
		resp.RunID = rec.ID
	}

	c.JSON(http.StatusOK, resp)
}

// handleDashboard runs the baseline and a priced scenario and returns
// both, side by side.
func (s *Server) handleDashboard(c *gin.Context) {
	price := 100.0
	if raw, ok := c.GetQuery("xcc_price"); ok {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST",
				"xcc_price must be a number", nil)
			return
		}
		price = parsed
	}

	baselineScenario := scenario.Scenario{}
	pricedScenario := scenario.Scenario{model.XCCPriceParam: price}

	baseline, ok := s.runScenario(c, baselineScenario)
	if !ok {
		return
	}
	priced, ok := s.runScenario(c, pricedScenario)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, DashboardResponse{
		ModelVersion: s.engine.ModelVersion(),
		XCCPrice:     price,
		Baseline:     s.runResponse(baselineScenario, baseline),
		Priced:       s.runResponse(pricedScenario, priced),
	})
}

// handleGetRun returns a stored run by UUID.
func (s *Server) handleGetRun(c *gin.Context) {
	if s.store == nil {
		writeError(c, http.StatusNotFound, "NO_STORE", "run persistence is not configured", nil)
		return
	}
	rec, result, err := s.store.GetRun(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "RUN_NOT_FOUND", "no run with that id", nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
		return
	}

	resp := RunResponse{
		RunID:        rec.ID,
		ModelVersion: rec.ModelVersion,
		Parameters:   rec.Parameters,
		Times:        result.Times(),
		Series:       seriesMap(result),
	}
	c.JSON(http.StatusOK, resp)
}

// handleListRuns lists stored run records, newest first.
func (s *Server) handleListRuns(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusOK, gin.H{"runs": []store.RunRecord{}})
		return
	}
	recs, err := s.store.ListRuns(c.Request.Context(), 100)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "STORE_ERROR", err.Error(), nil)
		return
	}
	if recs == nil {
		recs = []store.RunRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": recs})
}

// runScenario invokes the engine and maps its typed failures onto HTTP
// responses. Returns false when a response has already been written.
func (s *Server) runScenario(c *gin.Context, sc scenario.Scenario) (*sim.RunResult, bool) {
	result, err := s.engine.Run(c.Request.Context(), sc)
	if err == nil {
		return result, true
	}

	var ve *scenario.ValidationError
	if errors.As(err, &ve) {
		details := map[string]any{"parameter": ve.Param}
		if !ve.Unknown {
			details["min"] = ve.Min
			details["max"] = ve.Max
		}
		writeError(c, http.StatusBadRequest, "INVALID_PARAMETER", ve.Error(), details)
		return nil, false
	}

	var ne *sim.NumericalFailureError
	if errors.As(err, &ne) {
		writeError(c, http.StatusUnprocessableEntity, "NUMERICAL_FAILURE", ne.Error(), map[string]any{
			"variable": ne.Variable,
			"step":     ne.Step,
		})
		return nil, false
	}

	slog.Error("run failed", "error", err)
	writeError(c, http.StatusInternalServerError, "RUN_FAILED", err.Error(), nil)
	return nil, false
}

func (s *Server) runResponse(sc scenario.Scenario, result *sim.RunResult) RunResponse {
	params := map[string]float64(sc)
	if params == nil {
		params = map[string]float64{}
	}
	return RunResponse{
		ModelVersion: s.engine.ModelVersion(),
		Parameters:   params,
		Times:        result.Times(),
		Series:       seriesMap(result),
	}
}

func seriesMap(result *sim.RunResult) map[string][]float64 {
	out := make(map[string][]float64)
	for _, name := range result.Names() {
		vals, err := result.Series(name)
		if err != nil {
			continue
		}
		out[name] = vals
	}
	return out
}

func writeError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, ErrorResponse{Error: ErrorDetail{Code: code, Message: message, Details: details}})
}
