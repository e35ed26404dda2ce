package events

import (
	"github.com/golang/protobuf/proto"
)

// EventKind tells what happened.
type EventKind int32

// Event kinds
const (
	EventUnknown     EventKind = 0
	EventGameStarted EventKind = 1
	EventClicked     EventKind = 2
	EventGameEnded   EventKind = 3
	EventAborted     EventKind = 4
	EventGameFailed  EventKind = 5
)

var eventKindNames = map[int32]string{
	0: "UNKNOWN",
	1: "GAME_STARTED",
	2: "CLICKED",
	3: "GAME_ENDED",
	4: "ABORTED",
	5: "GAME_FAILED",
}

var eventKindValues = map[string]int32{
	"UNKNOWN":      0,
	"GAME_STARTED": 1,
	"CLICKED":      2,
	"GAME_ENDED":   3,
	"ABORTED":      4,
	"GAME_FAILED":  5,
}

// String implements fmt.Stringer.
func (k EventKind) String() string {
	return proto.EnumName(eventKindNames, int32(k))
}

// GameEvent is the message published for each game transition.
type GameEvent struct {
	Kind       EventKind `protobuf:"varint,1,opt,name=kind,proto3,enum=minefield.events.EventKind" json:"kind,omitempty"`
	DeviceID   string    `protobuf:"bytes,2,opt,name=device_id,json=deviceId,proto3" json:"device_id,omitempty"`
	Difficulty string    `protobuf:"bytes,3,opt,name=difficulty,proto3" json:"difficulty,omitempty"`
	Size       uint32    `protobuf:"varint,4,opt,name=size,proto3" json:"size,omitempty"`
	Mines      uint32    `protobuf:"varint,5,opt,name=mines,proto3" json:"mines,omitempty"`
	Outcome    string    `protobuf:"bytes,6,opt,name=outcome,proto3" json:"outcome,omitempty"`
	Opened     uint32    `protobuf:"varint,7,opt,name=opened,proto3" json:"opened,omitempty"`
	Elapsed    uint32    `protobuf:"varint,8,opt,name=elapsed,proto3" json:"elapsed,omitempty"`
	Row        uint32    `protobuf:"varint,9,opt,name=row,proto3" json:"row,omitempty"`
	Col        uint32    `protobuf:"varint,10,opt,name=col,proto3" json:"col,omitempty"`
	Error      string    `protobuf:"bytes,11,opt,name=error,proto3" json:"error,omitempty"`
	TimeMs     int64     `protobuf:"varint,12,opt,name=time_ms,json=timeMs,proto3" json:"time_ms,omitempty"`

	XXX_NoUnkeyedLiteral struct{} `json:"-"`
	XXX_unrecognized     []byte   `json:"-"`
	XXX_sizecache        int32    `json:"-"`
}

// Reset implements proto.Message.
func (m *GameEvent) Reset() { *m = GameEvent{} }

// String implements proto.Message.
func (m *GameEvent) String() string { return proto.CompactTextString(m) }

// ProtoMessage implements proto.Message.
func (*GameEvent) ProtoMessage() {}

func init() {
	proto.RegisterEnum("minefield.events.EventKind", eventKindNames, eventKindValues)
	proto.RegisterType((*GameEvent)(nil), "minefield.events.GameEvent")
}

// Encode encodes the event to bytes.
func (m *GameEvent) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeEvent decodes bytes into GameEvent.
func DecodeEvent(data []byte) (*GameEvent, error) {
	var ev GameEvent
	if err := proto.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
