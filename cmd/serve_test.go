package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/admet-cli/internal/config"
	"github.com/sells-group/admet-cli/internal/model"
	"github.com/sells-group/admet-cli/internal/store"
	"github.com/sells-group/admet-cli/internal/triage"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		Port:           8080,
		RateLimitRPS:   1000,
		RateLimitBurst: 1000,
		AllowedOrigins: []string{"*"},
	}
}

func testRouter(st store.Store) http.Handler {
	return buildRouter(triage.NewEngine(triage.DefaultConfig(), 2), st, testServerConfig())
}

func serve(h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBuildRouter_HealthEndpoint(t *testing.T) {
	rr := serve(testRouter(nil), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildRouter_Triage(t *testing.T) {
	payload := `{"compounds":[
		{"identifier":"lig_001","structure_descriptor":"CCO","lipinski_pass":"Pass","pains_alert":"No",
		 "herg_risk":0.1,"dili_risk":"Low","synthetic_accessibility":4.0,"qed":0.8,"molecular_weight":300,
		 "plasma_protein_binding":50},
		{"identifier":"lig_002","structure_descriptor":"c1ccccc1","lipinski_pass":"Fail"},
		{"identifier":"lig_003","structure_descriptor":"CCN","herg_risk":"Medium","qed":"0.5"}
	]}`

	rr := serve(testRouter(nil), http.MethodPost, "/v1/triage", []byte(payload))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp triageResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Decisions, 3)

	assert.Equal(t, "lig_001", resp.Decisions[0].Identifier)
	assert.Equal(t, "ACCEPT", resp.Decisions[0].FinalDecision)
	assert.Equal(t, 100, resp.Decisions[0].DevelopabilityScore)
	assert.Equal(t, "REJECT (Lipinski Fail)", resp.Decisions[1].FinalDecision)
	assert.Equal(t, "REVIEW (hERG Medium Risk; QED 0.4-0.6)", resp.Decisions[2].FinalDecision)

	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.Accepted)
	assert.Equal(t, 1, resp.Summary.Review)
	assert.Equal(t, 1, resp.Summary.Rejected)
}

func TestBuildRouter_TriageEmptyBatch(t *testing.T) {
	rr := serve(testRouter(nil), http.MethodPost, "/v1/triage", []byte(`{"compounds":[]}`))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "no compounds to process", body["error"])
}

func TestBuildRouter_TriageInvalidBody(t *testing.T) {
	rr := serve(testRouter(nil), http.MethodPost, "/v1/triage", []byte(`{not json`))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBuildRouter_MethodNotAllowed(t *testing.T) {
	rr := serve(testRouter(nil), http.MethodGet, "/v1/triage", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestBuildRouter_RunsWithoutStore(t *testing.T) {
	h := testRouter(nil)

	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/v1/runs", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/v1/runs/abc/decisions", nil).Code)
}

func TestBuildRouter_Runs(t *testing.T) {
	ctx := context.Background()
	st := testStore(t)

	run, err := st.CreateRun(ctx, "structures.csv")
	require.NoError(t, err)
	items := []model.TriagedCompound{{
		Compound: model.CompoundRecord{Identifier: "lig_001", StructureDescriptor: "CCO"},
		Decision: model.DecisionRecord{Identifier: "lig_001", DevelopabilityScore: 90, Label: model.OutcomeAccept, FinalDecision: "ACCEPT", Reasons: []string{}},
	}}
	require.NoError(t, st.SaveDecisions(ctx, run.ID, items))
	summary := model.Summarize([]model.DecisionRecord{items[0].Decision}, 0)
	require.NoError(t, st.CompleteRun(ctx, run.ID, model.RunStatusComplete, &summary))

	h := testRouter(st)

	rr := serve(h, http.MethodGet, "/v1/runs?status=complete&limit=10", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list struct {
		Runs []model.Run `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, run.ID, list.Runs[0].ID)

	rr = serve(h, http.MethodGet, "/v1/runs/"+run.ID+"/decisions", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail struct {
		Run       model.Run               `json:"run"`
		Decisions []model.TriagedCompound `json:"decisions"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, model.RunStatusComplete, detail.Run.Status)
	require.Len(t, detail.Decisions, 1)
	assert.Equal(t, "ACCEPT", detail.Decisions[0].Decision.FinalDecision)

	assert.Equal(t, http.StatusNotFound, serve(h, http.MethodGet, "/v1/runs/missing/decisions", nil).Code)
	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/v1/runs?limit=x", nil).Code)
}

func TestBuildRouter_RateLimit(t *testing.T) {
	sc := testServerConfig()
	sc.RateLimitRPS = 0.001
	sc.RateLimitBurst = 2
	h := buildRouter(triage.NewEngine(triage.DefaultConfig(), 1), nil, sc)

	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodGet, "/health", nil).Code)

	rr := serve(h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestBuildRouter_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/v1/triage", nil)
	req.Header.Set("Origin", "https://lab.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	testRouter(nil).ServeHTTP(rr, req)

	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
}
