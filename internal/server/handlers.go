package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/leapstack-labs/bloodline/internal/dag"
	"github.com/leapstack-labs/bloodline/internal/lineage"
	"github.com/leapstack-labs/bloodline/internal/viz"
)

// AnalyzeRequest is the body of every analysis endpoint.
type AnalyzeRequest struct {
	SQL       string `json:"sql"`
	Normalize *bool  `json:"normalize,omitempty"`
	// Statement selects one statement for the diagram endpoints.
	Statement int `json:"statement,omitempty"`
}

// GraphResponse is the body returned by /api/graph.
type GraphResponse struct {
	Tables  []string   `json:"tables"`
	Edges   []dag.Edge `json:"edges"`
	Levels  [][]string `json:"levels"`
	Mermaid string     `json:"mermaid,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLineage(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, s.analyze(req))
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	g := dag.FromStatements(s.analyze(req))
	levels, err := g.Levels()
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	resp := GraphResponse{Levels: levels, Edges: g.Edges()}
	for _, t := range g.Tables() {
		resp.Tables = append(resp.Tables, t.Name)
	}
	if resp.Edges == nil {
		resp.Edges = []dag.Edge{}
	}
	if m, err := viz.MermaidGraph(g); err == nil {
		resp.Mermaid = m
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	stmt, ok := s.statement(w, r)
	if !ok {
		return
	}
	tree, err := viz.TableTree(stmt.TableNames, stmt.Type)
	s.writeDiagram(w, tree, err)
}

func (s *Server) handleSankey(w http.ResponseWriter, r *http.Request) {
	stmt, ok := s.statement(w, r)
	if !ok {
		return
	}
	sankey, err := viz.ColumnSankey(stmt.TableNames, stmt.ColumnNames)
	s.writeDiagram(w, sankey, err)
}

func (s *Server) writeDiagram(w http.ResponseWriter, v any, err error) {
	if errors.Is(err, viz.ErrNoData) {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, v)
}

// statement decodes a request and returns the statement it selects.
func (s *Server) statement(w http.ResponseWriter, r *http.Request) (lineage.StatementLineage, bool) {
	req, ok := s.decode(w, r)
	if !ok {
		return lineage.StatementLineage{}, false
	}

	stmts := s.analyze(req)
	if req.Statement < 0 || req.Statement >= len(stmts) {
		s.writeError(w, http.StatusBadRequest,
			fmt.Errorf("statement %d out of range, script has %d", req.Statement, len(stmts)))
		return lineage.StatementLineage{}, false
	}
	return stmts[req.Statement], true
}

func (s *Server) analyze(req AnalyzeRequest) []lineage.StatementLineage {
	normalize := s.normalize
	if req.Normalize != nil {
		normalize = *req.Normalize
	}
	return lineage.AnalyzeScript(req.SQL, lineage.ScriptOptions{
		Normalize: normalize,
		Logger:    s.logger,
	})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) (AnalyzeRequest, bool) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return req, false
	}
	if req.SQL == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("sql is required"))
		return req, false
	}
	return req, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}
