package protocol

import (
	"errors"
	"io"
	"testing"
)

func TestResizeBatch(t *testing.T) {
	in := &ResizeBatch{Entries: []ResizeEntry{
		{Node: "panel", Present: true, X: 1, Y: 2, Width: 100.5, Height: 200.25},
		{Node: "gone", Present: false},
		{Node: "panel", Present: true, Width: 150, Height: 150},
	}}

	out, err := DecodeResizeBatch(EncodeResizeBatch(in))
	if err != nil {
		t.Fatalf("DecodeResizeBatch: %v", err)
	}
	if len(out.Entries) != len(in.Entries) {
		t.Fatalf("entries = %d, want %d", len(out.Entries), len(in.Entries))
	}
	for i := range in.Entries {
		if out.Entries[i] != in.Entries[i] {
			t.Errorf("entry %d = %+v, want %+v", i, out.Entries[i], in.Entries[i])
		}
	}
}

func TestResizeBatch_AbsentEntryHasNoBox(t *testing.T) {
	data := EncodeResizeBatch(&ResizeBatch{Entries: []ResizeEntry{{Node: "n"}}})
	// count + len("n") + "n" + present flag
	if len(data) != 4 {
		t.Errorf("encoded %d bytes, want 4", len(data))
	}
}

func TestDecodeResizeBatch_Truncated(t *testing.T) {
	data := EncodeResizeBatch(&ResizeBatch{Entries: []ResizeEntry{
		{Node: "panel", Present: true, Width: 1, Height: 1},
	}})
	for cut := 1; cut < len(data); cut++ {
		if _, err := DecodeResizeBatch(data[:cut]); !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Errorf("cut at %d: err = %v, want ErrUnexpectedEOF", cut, err)
		}
	}
}

func TestNodeList(t *testing.T) {
	nodes, err := DecodeNodeList(EncodeNodeList([]string{"a", "b", ""}))
	if err != nil {
		t.Fatalf("DecodeNodeList: %v", err)
	}
	if len(nodes) != 3 || nodes[0] != "a" || nodes[1] != "b" || nodes[2] != "" {
		t.Errorf("nodes = %q", nodes)
	}
}

func TestControl(t *testing.T) {
	tests := []*Control{
		{Type: ControlPing, Timestamp: 1700000000000},
		{Type: ControlPong, Timestamp: 1},
		{Type: ControlClose, Reason: "going away"},
	}
	for _, in := range tests {
		t.Run(in.Type.String(), func(t *testing.T) {
			out, err := DecodeControl(EncodeControl(in))
			if err != nil {
				t.Fatalf("DecodeControl: %v", err)
			}
			if *out != *in {
				t.Errorf("got %+v, want %+v", out, in)
			}
		})
	}

	if _, err := DecodeControl([]byte{0x7F}); !errors.Is(err, ErrInvalidControl) {
		t.Errorf("unknown control err = %v", err)
	}
}

func TestErrorMessage(t *testing.T) {
	in := &ErrorMessage{Code: ErrCodeInvalidBatch, Message: "bad batch"}
	out, err := DecodeErrorMessage(EncodeErrorMessage(in))
	if err != nil {
		t.Fatalf("DecodeErrorMessage: %v", err)
	}
	if *out != *in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestDecode_TrailingBytes(t *testing.T) {
	withTail := func(b []byte) []byte { return append(b, 0x00) }

	tests := []struct {
		name   string
		decode func() error
	}{
		{"resize batch", func() error {
			_, err := DecodeResizeBatch(withTail(EncodeResizeBatch(&ResizeBatch{Entries: []ResizeEntry{
				{Node: "panel", Present: true, Width: 1, Height: 1},
			}})))
			return err
		}},
		{"empty resize batch", func() error {
			_, err := DecodeResizeBatch([]byte{0x00, 0x00})
			return err
		}},
		{"node list", func() error {
			_, err := DecodeNodeList(withTail(EncodeNodeList([]string{"a"})))
			return err
		}},
		{"control", func() error {
			_, err := DecodeControl(withTail(EncodeControl(&Control{Type: ControlPing, Timestamp: 7})))
			return err
		}},
		{"error message", func() error {
			_, err := DecodeErrorMessage(withTail(EncodeErrorMessage(&ErrorMessage{Code: ErrCodeServer, Message: "x"})))
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.decode(); !errors.Is(err, ErrTrailingBytes) {
				t.Errorf("err = %v, want ErrTrailingBytes", err)
			}
		})
	}
}
