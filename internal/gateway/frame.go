package gateway

import (
	"encoding/json"
	"fmt"

	"github.com/louisbranch/shattered.front/internal/progression/domain"
)

// Wire commands a session host can send.
const (
	CmdConnected = "connected"
	CmdItems     = "items"
	CmdChecked   = "checked"
)

// CmdConnect is the one command the tracker sends: it names the slot this
// tracker follows.
const CmdConnect = "connect"

// WireItem is one received item as it appears on the wire.
type WireItem struct {
	Item     int64 `json:"item"`
	Sender   int   `json:"sender"`
	Location int64 `json:"location"`
	Flags    int   `json:"flags"`
}

// Received converts the wire record into the domain form.
func (w WireItem) Received() domain.ReceivedItem {
	return domain.ReceivedItem{
		Item:     domain.ItemID(w.Item),
		Sender:   w.Sender,
		Location: domain.LocationID(w.Location),
		Flags:    w.Flags,
	}
}

// Frame is one message from the session host. Cmd selects which of the
// remaining fields are meaningful.
type Frame struct {
	Cmd string `json:"cmd"`

	// Index is the stream position of the first entry in Items. Hosts
	// replay from an arbitrary index after reconnects; index 0 is a full
	// replay.
	Index int        `json:"index,omitempty"`
	Items []WireItem `json:"items,omitempty"`

	// Locations carries the checked ids for CmdChecked.
	Locations []int64 `json:"locations,omitempty"`
}

func encodeConnect(slot string) ([]byte, error) {
	data, err := json.Marshal(struct {
		Cmd  string `json:"cmd"`
		Slot string `json:"slot"`
	}{Cmd: CmdConnect, Slot: slot})
	if err != nil {
		return nil, fmt.Errorf("encode connect frame: %w", err)
	}
	return data, nil
}

func decodeFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Cmd == "" {
		return Frame{}, fmt.Errorf("frame has no cmd")
	}
	return frame, nil
}
