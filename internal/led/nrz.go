package led

import (
	"fmt"
	"strings"
	"sync"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// DefaultFreq is the SPI clock nrzled needs for WS2812 timing.
const DefaultFreq = 2500 * physic.KiloHertz

// NRZ drives a WS2812 chain through nrzled. nrzled puts the green byte first
// on the wire; order is permuted beforehand so the wire carries colorOrder.
type NRZ struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	closer func() error
	count  int
	perm   [3]int
	buf    []byte
}

// NewNRZ wraps an already opened port. colorOrder is the strip's wire
// order, "GRB" for most WS2812 parts.
func NewNRZ(p spi.Port, count int, colorOrder string, freq physic.Frequency) (*NRZ, error) {
	if count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", count)
	}
	perm, err := permutation(colorOrder)
	if err != nil {
		return nil, err
	}
	if freq == 0 {
		freq = DefaultFreq
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: count, Channels: 3, Freq: freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	return &NRZ{dev: d, count: count, perm: perm, buf: make([]byte, 3*count)}, nil
}

// OpenNRZ initializes the host drivers and opens the named SPI port ("" for
// the first one available).
func OpenNRZ(dev string, count int, colorOrder string, speedHz int) (*NRZ, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host: %w", err)
	}
	pc, err := spireg.Open(dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", dev, err)
	}
	n, err := NewNRZ(pc, count, colorOrder, physic.Frequency(speedHz)*physic.Hertz)
	if err != nil {
		_ = pc.Close()
		return nil, err
	}
	n.closer = pc.Close
	return n, nil
}

func (n *NRZ) Write(rgb []byte) error {
	if len(rgb) != 3*n.count {
		return fmt.Errorf("nrz: frame has %d bytes, want %d", len(rgb), 3*n.count)
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	for i := 0; i < n.count; i++ {
		px := rgb[i*3 : i*3+3]
		o := n.buf[i*3 : i*3+3]
		o[0], o[1], o[2] = px[n.perm[0]], px[n.perm[1]], px[n.perm[2]]
	}
	_, err := n.dev.Write(n.buf)
	return err
}

func (n *NRZ) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	err := n.dev.Halt()
	if n.closer != nil {
		if cerr := n.closer(); err == nil {
			err = cerr
		}
		n.closer = nil
	}
	return err
}

// permutation returns, for each byte nrzled reads (R,G,B slots), which input
// channel to put there so that the GRB wire ends up in colorOrder.
func permutation(colorOrder string) ([3]int, error) {
	order := strings.ToUpper(colorOrder)
	if order == "" {
		order = "GRB"
	}
	if len(order) != 3 || !strings.Contains(order, "R") || !strings.Contains(order, "G") || !strings.Contains(order, "B") {
		return [3]int{}, fmt.Errorf("invalid color order %q", colorOrder)
	}
	ch := map[byte]int{'R': 0, 'G': 1, 'B': 2}
	// wire = (slot1, slot0, slot2)
	return [3]int{ch[order[1]], ch[order[0]], ch[order[2]]}, nil
}
