package source

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Gagan-341/NeuraSentinel/internal/domain/model"
)

// Packet types sent by the sensor firmware.
const (
	PacketData            = "data"
	PacketDiscover        = "discover"
	PacketAck             = "ack"
	PacketSessionReset    = "session_reset"
	PacketSessionResetAck = "session_reset_ack"
)

// RawPacket is the JSON datagram sent for every sensor sample. TS is the
// device clock in milliseconds.
type RawPacket struct {
	Type string   `json:"type"`
	AX   *float64 `json:"ax"`
	AY   *float64 `json:"ay"`
	AZ   *float64 `json:"az"`
	GX   float64  `json:"gx"`
	GY   float64  `json:"gy"`
	GZ   float64  `json:"gz"`
	TS   *int64   `json:"ts"`
}

// Sample converts a data packet. Acceleration is required, angular rate
// defaults to zero. ok reports whether the packet carried a device clock.
func (p RawPacket) Sample() (s model.MotionSample, device float64, ok bool, err error) {
	for _, f := range []struct {
		name string
		v    *float64
	}{{"ax", p.AX}, {"ay", p.AY}, {"az", p.AZ}} {
		if f.v == nil {
			return model.MotionSample{}, 0, false, &MalformedInputError{Field: f.name}
		}
	}
	s = model.MotionSample{AX: *p.AX, AY: *p.AY, AZ: *p.AZ, GX: p.GX, GY: p.GY, GZ: p.GZ}
	if p.TS != nil {
		return s, float64(*p.TS) / 1000, true, nil
	}
	return s, 0, false, nil
}

// DecodeJSON parses one JSON datagram.
func DecodeJSON(b []byte) (RawPacket, error) {
	var p RawPacket
	if err := json.Unmarshal(b, &p); err != nil {
		return RawPacket{}, &MalformedInputError{Field: "packet", Err: err}
	}
	if p.Type == "" {
		p.Type = PacketData
	}
	return p, nil
}

// FrameSize is the length of a binary sensor frame.
const FrameSize = 20

// Frame is the little-endian binary sample frame. Acceleration is in
// centi-m/s^2, angular rate in deci-deg/s, the timestamp in device ms.
type Frame struct {
	AccX, AccY, AccZ    int16
	GyroX, GyroY, GyroZ int16
	Timestamp           uint32
	Sequence            uint16
	Battery             uint8
	Flags               uint8
}

// DecodeFrame parses a FrameSize-byte binary frame.
func DecodeFrame(b []byte) (Frame, error) {
	if len(b) != FrameSize {
		return Frame{}, &MalformedInputError{Field: "frame", Err: fmt.Errorf("expected %d bytes, got %d", FrameSize, len(b))}
	}
	le := binary.LittleEndian
	return Frame{
		AccX:      int16(le.Uint16(b[0:2])),
		AccY:      int16(le.Uint16(b[2:4])),
		AccZ:      int16(le.Uint16(b[4:6])),
		GyroX:     int16(le.Uint16(b[6:8])),
		GyroY:     int16(le.Uint16(b[8:10])),
		GyroZ:     int16(le.Uint16(b[10:12])),
		Timestamp: le.Uint32(b[12:16]),
		Sequence:  le.Uint16(b[16:18]),
		Battery:   b[18],
		Flags:     b[19],
	}, nil
}

// Sample converts the frame to SI units. The second value is the device
// clock in seconds.
func (f Frame) Sample() (model.MotionSample, float64) {
	return model.MotionSample{
		AX: float64(f.AccX) / 100,
		AY: float64(f.AccY) / 100,
		AZ: float64(f.AccZ) / 100,
		GX: float64(f.GyroX) / 10,
		GY: float64(f.GyroY) / 10,
		GZ: float64(f.GyroZ) / 10,
	}, float64(f.Timestamp) / 1000
}

var lineFields = []string{"ax", "ay", "az", "gx", "gy", "gz", "t"}

// ParseLine parses "ax,ay,az,gx,gy,gz[,t]" with t in seconds.
func ParseLine(line string) (s model.MotionSample, t float64, ok bool, err error) {
	parts := strings.Split(strings.TrimSpace(line), ",")
	if len(parts) < 6 {
		return model.MotionSample{}, 0, false, &MalformedInputError{
			Field: lineFields[len(parts)],
			Err:   fmt.Errorf("expected at least 6 fields, got %d", len(parts)),
		}
	}
	if len(parts) > 7 {
		return model.MotionSample{}, 0, false, &MalformedInputError{
			Field: "line",
			Err:   fmt.Errorf("expected at most 7 fields, got %d", len(parts)),
		}
	}

	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, perr := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if perr != nil {
			return model.MotionSample{}, 0, false, &MalformedInputError{Field: lineFields[i], Err: perr}
		}
		vals[i] = v
	}
	s = model.MotionSample{AX: vals[0], AY: vals[1], AZ: vals[2], GX: vals[3], GY: vals[4], GZ: vals[5]}
	if len(vals) == 7 {
		return s, vals[6], true, nil
	}
	return s, 0, false, nil
}

// isHeader reports whether line looks like a CSV header row.
func isHeader(line string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), "ax")
}
