package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/LeonardoBeccarini/earthing_monitor/internal/model"
)

// StateView is the JSON form of State.
type StateView struct {
	Reading      *model.Reading     `json:"reading"`
	Verdict      *model.Verdict     `json:"verdict"`
	SafetyState  model.SafetyState  `json:"safety_state,omitempty"`
	Connectivity model.Connectivity `json:"connectivity"`
	Series       []float64          `json:"series"`
}

func NewStateView(st State) StateView {
	v := StateView{Connectivity: st.Connectivity, Series: st.Series.Snapshot()}
	if st.Seen {
		r, vd := st.Reading, st.Verdict
		v.Reading, v.Verdict = &r, &vd
		v.SafetyState = vd.State()
	}
	return v
}

// Server groups what the HTTP mux serves.
type Server struct {
	Scheduler *Scheduler
	Frame     *Frame
	Hub       *Hub
	Chart     *TrendChart
	Metrics   *Metrics
}

// NewRouter builds the dashboard routes.
func NewRouter(s Server) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) }).Methods("GET")

	// /readyz: 200 solo se il device risponde
	r.HandleFunc("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		ready := s.Scheduler.State().Connectivity == model.Connected
		w.Header().Set("Content-Type", "application/json")
		if !ready {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(map[string]bool{"ready": ready})
	}).Methods("GET")

	r.HandleFunc("/api/state", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, NewStateView(s.Scheduler.State()))
	}).Methods("GET")
	r.HandleFunc("/api/frame", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, s.Frame.Committed())
	}).Methods("GET")

	if s.Chart != nil {
		r.Handle("/chart.png", s.Chart).Methods("GET")
	}
	if s.Hub != nil {
		r.Handle("/ws", s.Hub.Handler()).Methods("GET")
	}
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics.Handler()).Methods("GET")
	}

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(dashboardHTML))
	}).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(v)
}
