package server

import (
	"encoding/json"
	"net/http"

	"tower-server/internal/engine"
	"tower-server/pkg/api"
)

// DebugHandler предоставляет доступ к последнему снимку сессии
type DebugHandler struct {
	Session *engine.Session
}

func NewDebugHandler(s *engine.Session) *DebugHandler {
	return &DebugHandler{Session: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/session", h.handleSession)
	mux.HandleFunc("/debug/objects", h.handleObjects)
	mux.HandleFunc("/debug/replay", h.handleReplay)
}

// SessionSummary - состояние автомата без карты.
type SessionSummary struct {
	Session     string         `json:"session"`
	Frame       int            `json:"frame"`
	State       string         `json:"state"`
	Waiting     bool           `json:"waiting"`
	Region      string         `json:"region"`
	Room        *api.PointView `json:"room"`
	Objects     int            `json:"objects"`
	Features    int            `json:"features"`
	Projectiles int            `json:"projectiles"`
}

// /debug/session
func (h *DebugHandler) handleSession(w http.ResponseWriter, r *http.Request) {
	snap := h.Session.Snapshot()
	if snap == nil {
		http.Error(w, "Session not started", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, SessionSummary{
		Session:     snap.Session,
		Frame:       snap.Frame,
		State:       snap.State,
		Waiting:     snap.Waiting,
		Region:      snap.Region,
		Room:        snap.Room,
		Objects:     len(snap.Objects),
		Features:    len(snap.Features),
		Projectiles: snap.Projectiles,
	})
}

// /debug/objects - все объекты активной комнаты
func (h *DebugHandler) handleObjects(w http.ResponseWriter, r *http.Request) {
	snap := h.Session.Snapshot()
	if snap == nil {
		http.Error(w, "Session not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, snap.Objects)
}

// /debug/replay - лента принятых команд
func (h *DebugHandler) handleReplay(w http.ResponseWriter, r *http.Request) {
	rec := h.Session.Replay()
	if rec == nil {
		http.Error(w, "Session not started", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, rec)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug-клиента)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}
