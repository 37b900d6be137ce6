// internal/audio/device.go
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gen2brain/malgo"
)

var (
	ErrNotInitialized = errors.New("audio device not initialized")
	ErrBusy           = errors.New("audio device already in use")
	// ErrInvalidDuration indicates a recording length that is not positive
	ErrInvalidDuration = errors.New("record duration must be positive")
)

// DeviceKind selects playback or capture devices.
type DeviceKind int

const (
	Playback DeviceKind = iota
	Capture
)

func (k DeviceKind) malgoType() malgo.DeviceType {
	if k == Capture {
		return malgo.Capture
	}
	return malgo.Playback
}

// DeviceConfig holds audio device configuration
type DeviceConfig struct {
	DeviceIndex int    // -1 for default device
	SampleRate  uint32 // e.g., 8000
	BufferSize  uint32 // frames per callback
}

// DefaultDeviceConfig returns defaults suited to CW audio
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		DeviceIndex: -1,
		SampleRate:  8000,
		BufferSize:  512,
	}
}

// DeviceInfo describes one available device.
type DeviceInfo struct {
	Index   int
	Name    string
	Default bool
}

// Device plays and records mono float32 audio through miniaudio.
// Only one Play or Record may run at a time.
type Device struct {
	config DeviceConfig
	ctx    *malgo.AllocatedContext
	mu     sync.Mutex
	busy   bool
}

// NewDevice creates a device handle. Call Init before use.
func NewDevice(cfg DeviceConfig) *Device {
	return &Device{config: cfg}
}

// Init initializes the audio backend
func (d *Device) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx != nil {
		return nil
	}
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return fmt.Errorf("init audio context: %w", err)
	}
	d.ctx = ctx
	return nil
}

// ListDevices returns the available devices of the given kind
func (d *Device) ListDevices(kind DeviceKind) ([]DeviceInfo, error) {
	infos, err := d.rawDevices(kind)
	if err != nil {
		return nil, err
	}

	out := make([]DeviceInfo, len(infos))
	for i, info := range infos {
		out[i] = DeviceInfo{Index: i, Name: info.Name(), Default: info.IsDefault != 0}
	}
	return out, nil
}

func (d *Device) rawDevices(kind DeviceKind) ([]malgo.DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx == nil {
		return nil, ErrNotInitialized
	}
	infos, err := d.ctx.Devices(kind.malgoType())
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	return infos, nil
}

// Play sends w to the output device and returns when it has been played
// or ctx is cancelled.
func (d *Device) Play(ctx context.Context, w Waveform) error {
	if err := w.Validate(); err != nil {
		return err
	}

	src := newPlaybackSource(w.Samples)
	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatF32
	cfg.Playback.Channels = 1
	cfg.SampleRate = uint32(w.SampleRate)
	cfg.PeriodSizeInFrames = d.config.BufferSize

	callbacks := malgo.DeviceCallbacks{
		Data: func(output, _ []byte, _ uint32) {
			src.fill(output)
		},
	}
	return d.run(ctx, Playback, cfg, callbacks, src.done)
}

// Record captures duration of audio from the input device into a waveform.
func (d *Device) Record(ctx context.Context, duration time.Duration) (Waveform, error) {
	if duration <= 0 {
		return Waveform{}, ErrInvalidDuration
	}

	frames := int(duration.Seconds() * float64(d.config.SampleRate))
	sink := newRecordSink(frames)
	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = 1
	cfg.SampleRate = d.config.SampleRate
	cfg.PeriodSizeInFrames = d.config.BufferSize

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			sink.add(input)
		},
	}
	if err := d.run(ctx, Capture, cfg, callbacks, sink.done); err != nil {
		return Waveform{}, err
	}
	return NewWaveform(sink.samples(), int(d.config.SampleRate))
}

// run starts a device and blocks until done closes or ctx ends.
func (d *Device) run(ctx context.Context, kind DeviceKind, cfg malgo.DeviceConfig,
	callbacks malgo.DeviceCallbacks, done <-chan struct{}) error {

	if d.config.DeviceIndex >= 0 {
		infos, err := d.rawDevices(kind)
		if err != nil {
			return err
		}
		if d.config.DeviceIndex >= len(infos) {
			return fmt.Errorf("device index %d out of range (have %d devices)",
				d.config.DeviceIndex, len(infos))
		}
		if kind == Capture {
			cfg.Capture.DeviceID = infos[d.config.DeviceIndex].ID.Pointer()
		} else {
			cfg.Playback.DeviceID = infos[d.config.DeviceIndex].ID.Pointer()
		}
	}

	d.mu.Lock()
	if d.ctx == nil {
		d.mu.Unlock()
		return ErrNotInitialized
	}
	if d.busy {
		d.mu.Unlock()
		return ErrBusy
	}
	d.busy = true
	actx := d.ctx
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.busy = false
		d.mu.Unlock()
	}()

	device, err := malgo.InitDevice(actx.Context, cfg, callbacks)
	if err != nil {
		return fmt.Errorf("init device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("start device: %w", err)
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
	_ = device.Stop()
	return ctx.Err()
}

// Close releases all audio resources
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ctx == nil {
		return nil
	}
	if err := d.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninit context: %w", err)
	}
	d.ctx.Free()
	d.ctx = nil
	return nil
}

// playbackSource feeds samples to the output callback and closes done
// once the last frame has been written.
type playbackSource struct {
	mu      sync.Mutex
	samples []float64
	pos     int
	done    chan struct{}
	once    sync.Once
}

func newPlaybackSource(samples []float64) *playbackSource {
	return &playbackSource{samples: samples, done: make(chan struct{})}
}

func (p *playbackSource) fill(out []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	frames := len(out) / 4
	for i := 0; i < frames; i++ {
		var v float32
		if p.pos < len(p.samples) {
			v = float32(p.samples[p.pos])
			p.pos++
		}
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	if p.pos >= len(p.samples) {
		p.once.Do(func() { close(p.done) })
	}
}

// recordSink accumulates captured frames up to a fixed length.
type recordSink struct {
	mu   sync.Mutex
	buf  []float64
	want int
	done chan struct{}
	once sync.Once
}

func newRecordSink(frames int) *recordSink {
	return &recordSink{buf: make([]float64, 0, frames), want: frames, done: make(chan struct{})}
}

func (r *recordSink) add(input []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range bytesToFloat32(input) {
		if len(r.buf) >= r.want {
			break
		}
		r.buf = append(r.buf, float64(s))
	}
	if len(r.buf) >= r.want {
		r.once.Do(func() { close(r.done) })
	}
}

func (r *recordSink) samples() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]float64, len(r.buf))
	copy(out, r.buf)
	return out
}

// bytesToFloat32 converts little-endian float32 frames to samples
func bytesToFloat32(data []byte) []float32 {
	samples := make([]float32, len(data)/4)
	for i := range samples {
		samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return samples
}
