package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MickeyElders/pi-control-program/internal/models"
	"github.com/MickeyElders/pi-control-program/internal/service"
)

func get(t *testing.T, r http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestPing(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := get(t, r, "/api/ping")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var resp struct {
		OK bool `json:"ok"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.OK {
		t.Fatalf("body=%s", w.Body.String())
	}
}

func TestStatus_ReturnsSnapshot(t *testing.T) {
	temp := 32.5
	status := &mockStatus{snap: models.StatusSnapshot{
		Relays: []models.RelayStatus{{Index: 0, On: true}},
		Tank: map[string]models.TankReading{
			"soak": {Temp: &temp},
		},
		System: models.SystemStatus{Host: "rig-01"},
	}}
	r := newTestRouter(&service.Service{Status: status})

	w := get(t, r, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var snap models.StatusSnapshot
	if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(snap.Relays) != 1 || !snap.Relays[0].On {
		t.Fatalf("relays: %+v", snap.Relays)
	}
	if snap.Tank["soak"].Temp == nil || *snap.Tank["soak"].Temp != 32.5 {
		t.Fatalf("tank: %+v", snap.Tank)
	}
	if snap.System.Host != "rig-01" {
		t.Fatalf("system: %+v", snap.System)
	}
}

func TestHistory_QueryParams(t *testing.T) {
	hist := &mockHistory{historyResp: service.HistoryResult{Hours: 6}}
	r := newTestRouter(&service.Service{History: hist})

	w := get(t, r, "/api/history?hours=6&limit=500")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if hist.lastHours != 6 || hist.lastLimit != 500 {
		t.Fatalf("params not passed: hours=%v limit=%d", hist.lastHours, hist.lastLimit)
	}
}

func TestHistory_DefaultsOnGarbage(t *testing.T) {
	hist := &mockHistory{}
	r := newTestRouter(&service.Service{History: hist})

	w := get(t, r, "/api/history?hours=abc&limit=xyz")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if hist.lastHours != defaultHistoryHours || hist.lastLimit != defaultHistoryLimit {
		t.Fatalf("defaults not applied: hours=%v limit=%d", hist.lastHours, hist.lastLimit)
	}
}

func TestEvents_Limit(t *testing.T) {
	hist := &mockHistory{eventsResp: service.EventsResult{Events: []models.ControlEvent{{Target: "lift"}}}}
	r := newTestRouter(&service.Service{History: hist})

	w := get(t, r, "/api/events?limit=50")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if hist.lastLimit != 50 {
		t.Fatalf("limit=%d", hist.lastLimit)
	}
	var resp service.EventsResult
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Events) != 1 {
		t.Fatalf("events: %+v", resp.Events)
	}
}

func TestRuntime_Days(t *testing.T) {
	hist := &mockHistory{runtimeResp: service.RuntimeResult{Days: []models.RuntimeDay{{Day: "2026-08-30"}}}}
	r := newTestRouter(&service.Service{History: hist})

	w := get(t, r, "/api/runtime?days=14")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if hist.lastDays != 14 {
		t.Fatalf("days=%d", hist.lastDays)
	}
}
