package server

// EventPayload is the JSON body of an audit event row. Events are an
// append-only trail beside the snapshot; the engine never reads them.
type EventPayload struct {
	LobbyID  string `json:"lobby_id,omitempty"`
	PlayerID string `json:"player_id,omitempty"`
	TurnID   string `json:"turn_id,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	State    string `json:"game_state,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
