package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"zigbee-things/internal/coordinator"
	"zigbee-things/internal/store"
	"zigbee-things/internal/thing"
)

// DeviceView is the list entry for a managed device.
type DeviceView struct {
	IEEEAddress  string         `json:"ieee_address"`
	FriendlyName string         `json:"friendly_name"`
	Type         string         `json:"type"`
	Model        string         `json:"model,omitempty"`
	JoinedAt     time.Time      `json:"joined_at"`
	LastSeen     time.Time      `json:"last_seen"`
	State        map[string]any `json:"state"`
}

func (s *Server) deviceView(ieee string) (DeviceView, error) {
	dm := s.coord.Devices()
	state, err := dm.State(ieee)
	if err != nil {
		return DeviceView{}, err
	}
	v := DeviceView{IEEEAddress: ieee, FriendlyName: ieee, State: state}
	_ = dm.View(ieee, func(td *thing.Device) {
		v.Type = td.Type
		v.Model = td.Model
	})
	if dev, err := s.coord.Store().GetDevice(ieee); err == nil {
		v.FriendlyName = dev.Name()
		v.JoinedAt = dev.JoinedAt
		v.LastSeen = dev.LastSeen
	}
	return v, nil
}

func (s *Server) handleAPIListDevices(w http.ResponseWriter, r *http.Request) {
	ieees := s.coord.Devices().IEEEs()
	views := make([]DeviceView, 0, len(ieees))
	for _, ieee := range ieees {
		v, err := s.deviceView(ieee)
		if err != nil {
			// Removed while listing.
			continue
		}
		views = append(views, v)
	}
	s.writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleAPIGetDevice(w http.ResponseWriter, r *http.Request) {
	data, err := s.coord.Devices().MarshalDevice(r.PathValue("ieee"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.logger.Debug("write device response", "err", err)
	}
}

func (s *Server) handleAPIDeviceState(w http.ResponseWriter, r *http.Request) {
	state, err := s.coord.Devices().State(r.PathValue("ieee"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

type renameDeviceRequest struct {
	FriendlyName string `json:"friendly_name"`
}

func (s *Server) handleAPIRenameDevice(w http.ResponseWriter, r *http.Request) {
	ieee := r.PathValue("ieee")

	var req renameDeviceRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := s.coord.Devices().Rename(ieee, req.FriendlyName); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "friendly_name": req.FriendlyName})
}

func (s *Server) handleAPIDeleteDevice(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Devices().Remove(r.PathValue("ieee")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type writePropertyRequest struct {
	Value any `json:"value"`
}

func (s *Server) handleAPIWriteProperty(w http.ResponseWriter, r *http.Request) {
	var req writePropertyRequest
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	err := s.coord.Devices().WriteProperty(r.Context(), r.PathValue("ieee"), r.PathValue("name"), req.Value)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAPIInvokeAction(w http.ResponseWriter, r *http.Request) {
	if err := s.coord.Devices().InvokeAction(r.Context(), r.PathValue("ieee"), r.PathValue("name")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeError maps device manager errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, coordinator.ErrUnknownDevice),
		errors.Is(err, store.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "device not found"})
	case errors.Is(err, thing.ErrUnknownProperty),
		errors.Is(err, coordinator.ErrUnknownAction):
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, thing.ErrReadOnly):
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		s.logger.Error("api request", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writeJSON encode failed", "err", err)
	}
}
