package flash

import (
	"github.com/ardnew/flashlog/flash/hal"
)

// Transport frames flash commands on an SPI bus.
//
// Each call is one chip-select frame: select, command byte, optional
// 24-bit big-endian address, optional payload out, optional response in,
// deselect. Transport has no knowledge of command semantics.
//
// Buses that complete a frame only when chip select is released report the
// outcome through an Err method (see FrameErrer); the frame fails with it.
type Transport struct {
	bus hal.Bus
	cs  hal.Pin

	hdr [4]byte
}

// FrameErrer is implemented by buses that submit a frame on the rising
// chip-select edge. Err returns and clears the error of the last frame.
type FrameErrer interface {
	Err() error
}

// NewTransport returns a transport on bus using cs as chip select.
// A nil cs is replaced with hal.NoPin.
func NewTransport(bus hal.Bus, cs hal.Pin) *Transport {
	if cs == nil {
		cs = hal.NoPin{}
	}
	t := &Transport{bus: bus, cs: cs}
	t.cs.High()
	return t
}

// Command sends cmd without an address, then out, then reads len(in) bytes.
func (t *Transport) Command(cmd byte, out, in []byte) error {
	t.hdr[0] = cmd
	return t.frame(t.hdr[:1], out, in)
}

// AddressCommand sends cmd followed by the 24-bit address addr, then out,
// then reads len(in) bytes.
func (t *Transport) AddressCommand(cmd byte, addr uint32, out, in []byte) error {
	t.hdr[0] = cmd
	t.hdr[1] = byte(addr >> 16)
	t.hdr[2] = byte(addr >> 8)
	t.hdr[3] = byte(addr)
	return t.frame(t.hdr[:4], out, in)
}

// Transfer exchanges a single byte inside its own chip-select frame.
func (t *Transport) Transfer(b byte) (byte, error) {
	t.cs.Low()
	v, err := t.bus.Transfer(b)
	if herr := t.release(); err == nil {
		err = herr
	}
	return v, err
}

func (t *Transport) frame(hdr, out, in []byte) error {
	t.cs.Low()
	err := t.send(hdr, out, in)
	if herr := t.release(); err == nil {
		err = herr
	}
	return err
}

// release deselects the chip and collects a deferred frame error.
func (t *Transport) release() error {
	t.cs.High()
	if fe, ok := t.bus.(FrameErrer); ok {
		return fe.Err()
	}
	return nil
}

func (t *Transport) send(hdr, out, in []byte) error {
	if err := t.bus.Tx(hdr, nil); err != nil {
		return err
	}
	if len(out) > 0 {
		if err := t.bus.Tx(out, nil); err != nil {
			return err
		}
	}
	if len(in) > 0 {
		if err := t.bus.Tx(nil, in); err != nil {
			return err
		}
	}
	return nil
}
