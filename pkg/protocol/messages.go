package protocol

// ResizeEntry is one node's box in a resize batch. Present is false when
// the client could not measure the node (for example it left the DOM).
type ResizeEntry struct {
	Node    string
	Present bool
	X       float64
	Y       float64
	Width   float64
	Height  float64
}

// ResizeBatch is one notification batch reported by the client, entries in
// delivery order.
type ResizeBatch struct {
	Entries []ResizeEntry
}

// EncodeResizeBatch encodes a resize batch payload.
func EncodeResizeBatch(b *ResizeBatch) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(len(b.Entries)))
	for _, entry := range b.Entries {
		e.WriteString(entry.Node)
		e.WriteBool(entry.Present)
		if entry.Present {
			e.WriteFloat64(entry.X)
			e.WriteFloat64(entry.Y)
			e.WriteFloat64(entry.Width)
			e.WriteFloat64(entry.Height)
		}
	}
	return e.Bytes()
}

// DecodeResizeBatch decodes a resize batch payload. Bytes left over after
// the last entry are an error.
func DecodeResizeBatch(data []byte) (*ResizeBatch, error) {
	d := NewDecoder(data)
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	b := &ResizeBatch{Entries: make([]ResizeEntry, count)}
	for i := range b.Entries {
		entry := &b.Entries[i]
		if entry.Node, err = d.ReadString(); err != nil {
			return nil, err
		}
		if entry.Present, err = d.ReadBool(); err != nil {
			return nil, err
		}
		if !entry.Present {
			continue
		}
		for _, dst := range []*float64{&entry.X, &entry.Y, &entry.Width, &entry.Height} {
			if *dst, err = d.ReadFloat64(); err != nil {
				return nil, err
			}
		}
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return b, nil
}

// EncodeNodeList encodes the payload of Observe and Unobserve frames.
func EncodeNodeList(nodes []string) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(len(nodes)))
	for _, n := range nodes {
		e.WriteString(n)
	}
	return e.Bytes()
}

// DecodeNodeList decodes the payload of Observe and Unobserve frames.
func DecodeNodeList(data []byte) ([]string, error) {
	d := NewDecoder(data)
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	nodes := make([]string, count)
	for i := range nodes {
		if nodes[i], err = d.ReadString(); err != nil {
			return nil, err
		}
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return nodes, nil
}

// ControlType identifies a control message.
type ControlType uint8

const (
	ControlPing  ControlType = 0x01
	ControlPong  ControlType = 0x02
	ControlClose ControlType = 0x03
)

// String returns the string representation of the control type.
func (ct ControlType) String() string {
	switch ct {
	case ControlPing:
		return "Ping"
	case ControlPong:
		return "Pong"
	case ControlClose:
		return "Close"
	default:
		return "Unknown"
	}
}

// Control is a control message. Timestamp is used by ping and pong,
// Reason by close.
type Control struct {
	Type      ControlType
	Timestamp uint64
	Reason    string
}

// EncodeControl encodes a control payload.
func EncodeControl(c *Control) []byte {
	e := NewEncoder()
	e.WriteByte(byte(c.Type))
	switch c.Type {
	case ControlPing, ControlPong:
		e.WriteUvarint(c.Timestamp)
	case ControlClose:
		e.WriteString(c.Reason)
	}
	return e.Bytes()
}

// DecodeControl decodes a control payload.
func DecodeControl(data []byte) (*Control, error) {
	d := NewDecoder(data)
	b, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	c := &Control{Type: ControlType(b)}
	switch c.Type {
	case ControlPing, ControlPong:
		c.Timestamp, err = d.ReadUvarint()
	case ControlClose:
		c.Reason, err = d.ReadString()
	default:
		err = ErrInvalidControl
	}
	if err == nil {
		err = d.Finish()
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// ErrorCode identifies a protocol error sent to the client.
type ErrorCode uint16

const (
	ErrCodeInvalidFrame ErrorCode = 0x0001
	ErrCodeInvalidBatch ErrorCode = 0x0002
	ErrCodeUnknownNode  ErrorCode = 0x0003
	ErrCodeServer       ErrorCode = 0x00FF
)

// ErrorMessage is the payload of an error frame.
type ErrorMessage struct {
	Code    ErrorCode
	Message string
}

// EncodeErrorMessage encodes an error payload.
func EncodeErrorMessage(m *ErrorMessage) []byte {
	e := NewEncoder()
	e.WriteUvarint(uint64(m.Code))
	e.WriteString(m.Message)
	return e.Bytes()
}

// DecodeErrorMessage decodes an error payload.
func DecodeErrorMessage(data []byte) (*ErrorMessage, error) {
	d := NewDecoder(data)
	code, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	msg, err := d.ReadString()
	if err != nil {
		return nil, err
	}
	if err := d.Finish(); err != nil {
		return nil, err
	}
	return &ErrorMessage{Code: ErrorCode(code), Message: msg}, nil
}
