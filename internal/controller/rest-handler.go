package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// The read-only query surface: room existence and the list of active codes.
// Neither endpoint mutates state.

type roomListResponse struct {
	Rooms []string `json:"rooms"`
}

type roomExistsResponse struct {
	RoomCode string `json:"room_code"`
	Exists   bool   `json:"exists"`
}

func (c controller) listRooms(w http.ResponseWriter, r *http.Request) {
	c.writeJSON(w, http.StatusOK, roomListResponse{Rooms: c.roomService.RoomCodes()})
}

func (c controller) getRoom(w http.ResponseWriter, r *http.Request) {
	roomCode := chi.URLParam(r, "room-code")

	resp := roomExistsResponse{
		RoomCode: roomCode,
		Exists:   c.roomService.RoomExists(roomCode),
	}
	status := http.StatusOK
	if !resp.Exists {
		status = http.StatusNotFound
	}

	c.writeJSON(w, status, resp)
}

func (c controller) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Warn("failed to encode response", "error", err)
	}
}
