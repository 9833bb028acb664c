//go:build linux

package i2cdev

import (
	"errors"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/ardnew/flashlog/pkg"
)

func TestMessageLayout(t *testing.T) {
	want := uintptr(2*3 + 2 + 8)
	if unsafe.Sizeof(uintptr(0)) == 4 {
		want = 2*3 + 2 + 4
	}
	if got := unsafe.Sizeof(i2cMsg{}); got != want {
		t.Errorf("sizeof(i2cMsg) = %d, want %d", got, want)
	}
	if got := unsafe.Offsetof(i2cMsg{}.buf); got != 8 {
		t.Errorf("offsetof(buf) = %d, want 8", got)
	}
}

func TestBuildMessages(t *testing.T) {
	w := []byte{0x00}
	r := make([]byte, 2)

	tests := []struct {
		name  string
		w, r  []byte
		flags []uint16
		lens  []uint16
	}{
		{"probe", nil, nil, []uint16{0}, []uint16{0}},
		{"write", w, nil, []uint16{0}, []uint16{1}},
		{"read", nil, r, []uint16{i2cMRd}, []uint16{2}},
		{"write then read", w, r, []uint16{0, i2cMRd}, []uint16{1, 2}},
	}

	for _, tt := range tests {
		msgs := buildMessages(0x48, tt.w, tt.r)
		if len(msgs) != len(tt.flags) {
			t.Errorf("%s: messages = %d, want %d", tt.name, len(msgs), len(tt.flags))
			continue
		}
		for i, m := range msgs {
			if m.addr != 0x48 || m.flags != tt.flags[i] || m.length != tt.lens[i] {
				t.Errorf("%s: msg[%d] = %+v", tt.name, i, m)
			}
			if m.length > 0 && m.buf == 0 {
				t.Errorf("%s: msg[%d] has no buffer", tt.name, i)
			}
		}
	}
}

func TestOpenMissing(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "i2c-99")); err == nil {
		t.Error("Open() of missing device succeeded")
	}
}

func TestInvalidAddress(t *testing.T) {
	d := &Device{fd: -1, path: "test"}
	if err := d.Tx(0x80, nil, nil); !errors.Is(err, pkg.ErrInvalidParameter) {
		t.Errorf("Tx(0x80) error = %v, want %v", err, pkg.ErrInvalidParameter)
	}
}

func TestClosedDevice(t *testing.T) {
	d := &Device{fd: -1, path: "test"}
	if err := d.Tx(0x48, nil, make([]byte, 2)); err == nil {
		t.Error("Tx() on closed device succeeded")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
