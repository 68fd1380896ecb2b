package selection

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnrecognizedFormat is returned by Decode for data that matches none of
// the known persisted shapes.
var ErrUnrecognizedFormat = errors.New("unrecognized selection format")

// Format identifies which persisted shape a value was decoded from.
type Format int

const (
	// FormatIDList is a flat array of seat IDs: ["A-1-1","A-1-2"].
	FormatIDList Format = iota + 1
	// FormatRecords is an array of {seatId, timestamp} records.
	FormatRecords
	// FormatWrapper is an object holding a selectedSeats array.
	FormatWrapper
)

func (f Format) String() string {
	switch f {
	case FormatIDList:
		return "id-list"
	case FormatRecords:
		return "records"
	case FormatWrapper:
		return "wrapper"
	}
	return "unknown"
}

// Decoded is the result of a successful Decode.
type Decoded struct {
	Format Format
	IDs    []string
}

type record struct {
	SeatID    *string         `json:"seatId"`
	Timestamp json.RawMessage `json:"timestamp"`
}

type wrapper struct {
	SelectedSeats *[]json.RawMessage `json:"selectedSeats"`
}

// Decode parses a persisted selection. Only the three documented shapes are
// accepted; everything else, including arrays that mix strings and records,
// fails with ErrUnrecognizedFormat.
func Decode(data []byte) (Decoded, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return Decoded{}, fmt.Errorf("%w: invalid JSON", ErrUnrecognizedFormat)
	}

	switch data[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
		}
		return decodeArray(items)
	case '{':
		var w wrapper
		if err := json.Unmarshal(data, &w); err != nil {
			return Decoded{}, fmt.Errorf("%w: %v", ErrUnrecognizedFormat, err)
		}
		if w.SelectedSeats == nil {
			return Decoded{}, fmt.Errorf("%w: object without selectedSeats", ErrUnrecognizedFormat)
		}
		ids := make([]string, 0, len(*w.SelectedSeats))
		for i, raw := range *w.SelectedSeats {
			id, err := decodeID(raw, i)
			if err != nil {
				return Decoded{}, err
			}
			ids = append(ids, id)
		}
		return Decoded{Format: FormatWrapper, IDs: ids}, nil
	}
	return Decoded{}, fmt.Errorf("%w: top-level %s", ErrUnrecognizedFormat, kind(data))
}

func decodeArray(items []json.RawMessage) (Decoded, error) {
	// An empty array is a valid, empty ID list.
	if len(items) == 0 {
		return Decoded{Format: FormatIDList, IDs: []string{}}, nil
	}

	format := FormatIDList
	if bytes.TrimSpace(items[0])[0] == '{' {
		format = FormatRecords
	}

	ids := make([]string, 0, len(items))
	for i, raw := range items {
		switch format {
		case FormatIDList:
			id, err := decodeID(raw, i)
			if err != nil {
				return Decoded{}, err
			}
			ids = append(ids, id)
		case FormatRecords:
			var r record
			if err := json.Unmarshal(raw, &r); err != nil || r.SeatID == nil || *r.SeatID == "" {
				return Decoded{}, fmt.Errorf("%w: element %d is not a seat record", ErrUnrecognizedFormat, i)
			}
			ids = append(ids, *r.SeatID)
		}
	}
	return Decoded{Format: format, IDs: ids}, nil
}

// decodeID reads one array element as a non-empty seat ID. JSON null would
// otherwise unmarshal into "" without error.
func decodeID(raw json.RawMessage, i int) (string, error) {
	raw = bytes.TrimSpace(raw)
	var id string
	if len(raw) == 0 || raw[0] != '"' || json.Unmarshal(raw, &id) != nil || id == "" {
		return "", fmt.Errorf("%w: element %d is not a seat id", ErrUnrecognizedFormat, i)
	}
	return id, nil
}

// Encode writes ids in the canonical FormatIDList shape.
func Encode(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func kind(data []byte) string {
	switch data[0] {
	case '"':
		return "string"
	case 'n':
		return "null"
	case 't', 'f':
		return "boolean"
	}
	return "number"
}
