package api_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	cnclog "github.com/tpt-cnclog/mfg-dashboard"
	"github.com/tpt-cnclog/mfg-dashboard/api"
	"github.com/tpt-cnclog/mfg-dashboard/board"
	"github.com/tpt-cnclog/mfg-dashboard/calendar"
	"github.com/tpt-cnclog/mfg-dashboard/engine"
	"github.com/tpt-cnclog/mfg-dashboard/rowstore/memory"
)

var bkk = func() *time.Location {
	loc, err := time.LoadLocation("Asia/Bangkok")
	if err != nil {
		loc = time.FixedZone("ICT", 7*3600)
	}
	return loc
}()

type fixture struct {
	store *memory.Store
	srv   *api.Server
	now   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	// Monday 09:00 factory time.
	f := &fixture{
		store: memory.New(),
		now:   time.Date(2024, 1, 8, 9, 0, 0, 0, bkk),
	}
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	cal := calendar.New(calendar.WithLocation(bkk))
	eng := engine.New(f.store, cal,
		engine.WithClock(func() time.Time { return f.now }),
		engine.WithLogger(quiet),
	)
	b := board.New(f.store, board.WithLogger(quiet))
	f.srv = api.New(":0", eng, b, f.store, nil, api.WithLogger(quiet))
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

const createBody = `{
	"projectNo": "P-100", "partName": "Bracket", "processName": "Milling",
	"processNo": "1", "stepNo": "1", "machineNo": "M-01",
	"customerName": "ACME", "employee": "E01"
}`

func TestCommandCreate(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/v1/command", createBody)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if got := decode(t, w)["status"]; got != "OK" {
		t.Fatalf("status field = %v, want OK", got)
	}
	if id := w.Header().Get("X-Request-ID"); id == "" {
		t.Error("missing X-Request-ID header")
	}
}

func TestCommandDuplicateCreate(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/command", createBody)

	w := f.do(t, http.MethodPost, "/v1/command", createBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	out := decode(t, w)
	if out["status"] != "ERROR" {
		t.Errorf("status field = %v, want ERROR", out["status"])
	}
	if out["message"] != cnclog.UserMessage(cnclog.ErrDuplicateOpenJob) {
		t.Errorf("message = %v, want localized duplicate message", out["message"])
	}
}

func TestCommandOnMissingJob(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/v1/command",
		`{"action":"CONTINUE","projectNo":"P-9","partName":"X","processName":"Y","processNo":"1","stepNo":"1","machineNo":"M-9","employee":"E01"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if got := decode(t, w)["message"]; got != cnclog.UserMessage(cnclog.ErrJobNotFound) {
		t.Errorf("message = %v, want localized not-found message", got)
	}
}

func TestCommandUnknownAction(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/v1/command", `{"action":"EXPLODE"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCommandPauseFlow(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/command", createBody)

	f.now = f.now.Add(time.Hour)
	pause := strings.Replace(createBody, `"employee": "E01"`,
		`"employee": "E01", "action": "PAUSE", "pauseType": "DOWNTIME", "reason": "tooling"`, 1)
	if w := f.do(t, http.MethodPost, "/v1/command", pause); w.Code != http.StatusOK {
		t.Fatalf("pause status = %d, body = %s", w.Code, w.Body.String())
	}

	// Closing a paused job is rejected with the localized message.
	closeBody := strings.Replace(createBody, `"employee": "E01"`,
		`"employee": "E01", "action": "CLOSE", "fg": "10"`, 1)
	w := f.do(t, http.MethodPost, "/v1/command", closeBody)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("close status = %d, want 400", w.Code)
	}
	if got := decode(t, w)["message"]; got != cnclog.UserMessage(cnclog.ErrJobPaused) {
		t.Errorf("message = %v, want localized paused message", got)
	}
}

func TestStepsFailSoft(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/command", createBody)
	f.store.FailReads = true

	w := f.do(t, http.MethodGet, "/v1/steps?projectNo=P-100&partName=Bracket", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (reads fail soft)", w.Code)
	}
	out := decode(t, w)
	if out["status"] != "OK" {
		t.Errorf("status field = %v, want OK", out["status"])
	}
	if steps, ok := out["steps"].([]any); !ok || len(steps) != 0 {
		t.Errorf("steps = %v, want empty list", out["steps"])
	}
}

func TestStepsListsActive(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/command", createBody)

	w := f.do(t, http.MethodGet, "/v1/steps?projectNo=p-100&partName=bracket", "")
	out := decode(t, w)
	steps, ok := out["steps"].([]any)
	if !ok || len(steps) != 1 {
		t.Fatalf("steps = %v, want one entry", out["steps"])
	}
}

func TestBoardEndpoints(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/v1/command", createBody)

	w := f.do(t, http.MethodGet, "/v1/board/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("active status = %d", w.Code)
	}
	out := decode(t, w)
	if jobs, ok := out["jobs"].([]any); !ok || len(jobs) != 1 {
		t.Fatalf("jobs = %v, want one entry", out["jobs"])
	}

	w = f.do(t, http.MethodGet, "/v1/board/version", "")
	if w.Code != http.StatusOK {
		t.Fatalf("version status = %d", w.Code)
	}
	if v := decode(t, w)["version"]; v == "" {
		t.Error("empty version fingerprint")
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	if w := f.do(t, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz = %d, want 200", w.Code)
	}

	f.store.Close()
	if w := f.do(t, http.MethodGet, "/healthz", ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("healthz after close = %d, want 503", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodOptions, "/v1/board/active", "")
	if w.Code != http.StatusOK {
		t.Fatalf("preflight = %d, want 200", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS allow-origin header")
	}
}
