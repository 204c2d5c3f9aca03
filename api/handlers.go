package api

import (
	"encoding/json"
	"errors"
	"net/http"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/board"
	"github.com/tpt-cnclog/mfg-dashboard/engine"
	"github.com/tpt-cnclog/mfg-dashboard/record"
	"github.com/tpt-cnclog/mfg-dashboard/session"
)

// commandRequest is the terminal POST body. Action selects the command; an
// empty action (or "OPEN") creates a job, matching the legacy terminals that
// send the target status instead of a verb.
type commandRequest struct {
	Action string `json:"action"`

	ProjectNo   string `json:"projectNo"`
	PartName    string `json:"partName"`
	ProcessName string `json:"processName"`
	ProcessNo   string `json:"processNo"`
	StepNo      string `json:"stepNo"`
	MachineNo   string `json:"machineNo"`

	CustomerName    string `json:"customerName"`
	DrawingNo       string `json:"drawingNo"`
	QuantityOrdered string `json:"quantityOrdered"`
	Employee        string `json:"employee"`

	PauseType string `json:"pauseType"`
	Reason    string `json:"reason"`

	FG     string `json:"fg"`
	NG     string `json:"ng"`
	Rework string `json:"rework"`
}

func (c *commandRequest) identity() record.Identity {
	return record.Identity{
		ProjectNo:   c.ProjectNo,
		PartName:    c.PartName,
		ProcessName: c.ProcessName,
		ProcessNo:   c.ProcessNo,
		StepNo:      c.StepNo,
		MachineNo:   c.MachineNo,
	}
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

var okResponse = statusResponse{Status: "OK"}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "ERROR",
			Message: cnclog.UserMessage(err),
		})
		return
	}

	ctx := r.Context()
	var err error
	switch req.Action {
	case "", "CREATE", "OPEN":
		_, err = s.eng.Create(ctx, engine.CreateRequest{
			Identity:        req.identity(),
			CustomerName:    req.CustomerName,
			DrawingNo:       req.DrawingNo,
			QuantityOrdered: req.QuantityOrdered,
			Employee:        req.Employee,
		})
	case "PAUSE":
		typ := session.TypePause
		if req.PauseType == string(session.TypeDowntime) {
			typ = session.TypeDowntime
		}
		err = s.eng.Pause(ctx, req.identity(), typ, req.Reason, req.Employee)
	case "CONTINUE":
		err = s.eng.Continue(ctx, req.identity(), req.Employee)
	case "START_OT":
		err = s.eng.StartOvertime(ctx, req.identity(), req.Employee)
	case "STOP_OT":
		err = s.eng.StopOvertime(ctx, req.identity(), req.Employee)
	case "CLOSE":
		err = s.eng.Close(ctx, engine.CloseRequest{
			Identity: req.identity(),
			Employee: req.Employee,
			FG:       req.FG,
			NG:       req.NG,
			Rework:   req.Rework,
		})
	default:
		s.writeJSON(w, http.StatusBadRequest, statusResponse{
			Status:  "ERROR",
			Message: cnclog.UserMessage(cnclog.ErrInvalidTransition),
		})
		return
	}

	if err != nil {
		s.log.Warn("command rejected", "action", req.Action, "error", err)
		s.writeJSON(w, commandStatus(err), statusResponse{
			Status:  "ERROR",
			Message: cnclog.UserMessage(err),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse)
}

// commandStatus maps engine errors to HTTP codes. The terminals key off the
// body's status field; the code is for proxies and logs.
func commandStatus(err error) int {
	switch {
	case errors.Is(err, cnclog.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, cnclog.ErrWriteFailed),
		errors.Is(err, cnclog.ErrCorruptSessionLog):
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

type stepsResponse struct {
	Status string        `json:"status"`
	Steps  []engine.Step `json:"steps"`
}

// handleSteps lists the active steps of a project/part pair. Fail-soft: a
// store error returns an empty list so the terminal's picker still renders.
func (s *Server) handleSteps(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	steps, err := s.eng.OpenSteps(r.Context(), q.Get("projectNo"), q.Get("partName"))
	if err != nil {
		s.log.Warn("steps read failed, serving empty", "error", err)
		steps = nil
	}
	if steps == nil {
		steps = []engine.Step{}
	}
	s.writeJSON(w, http.StatusOK, stepsResponse{Status: "OK", Steps: steps})
}

type activeResponse struct {
	Status string      `json:"status"`
	Jobs   []board.Job `json:"jobs"`
}

type versionResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleBoardActive(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, activeResponse{
		Status: "OK",
		Jobs:   s.board.ActiveJobs(r.Context()),
	})
}

func (s *Server) handleBoardVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, versionResponse{
		Status:  "OK",
		Version: s.board.Version(r.Context()),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status:  "ERROR",
			Message: err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, okResponse)
}
