package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/frameclock/engine"
)

const (
	sampleRate = beep.SampleRate(48000)

	clickLength = 40 * time.Millisecond
	clickDecay  = 60.0

	clickFreq  = 880.0
	accentFreq = 1760.0

	// AccentEvery marks every n-th beat with the higher tone
	AccentEvery = 4
)

// ClickStreamer returns one metronome click at linear gain
func ClickStreamer(rate beep.SampleRate, accent bool, gain float64) beep.Streamer {
	freq, wave := clickFreq, WaveSquare
	if accent {
		freq, wave = accentFreq, WaveSine
	}
	osc := NewOscillator(freq, clickLength, wave, clickDecay, rate)
	return beep.Take(rate.N(clickLength), newVolume(osc, gain))
}

// Metronome clicks once per beat of simulated fixed time
// Driven as an engine.FixedUpdater, so its tempo follows real time regardless of time scale
type Metronome struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool

	gain    float64
	beat    time.Duration
	elapsed time.Duration // Fixed time since the last beat
	beats   uint64
}

// NewMetronome creates a metronome beating every beat interval at linear gain
func NewMetronome(beat time.Duration, gain float64) *Metronome {
	if beat <= 0 {
		beat = time.Second
	}
	return &Metronome{
		mixer: &beep.Mixer{},
		gain:  gain,
		beat:  beat,
	}
}

// Initialize opens the speaker and starts the mixer
// Beats are still counted when Initialize fails or is never called, just not heard
func (m *Metronome) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return nil
	}

	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}

	speaker.Play(m.mixer)
	m.initialized = true
	return nil
}

// Cleanup silences pending clicks and closes the speaker
func (m *Metronome) Cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	speaker.Lock()
	m.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	m.initialized = false
}

// Click plays a single click, no-op before Initialize
func (m *Metronome) Click(accent bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.initialized {
		return
	}

	speaker.Lock()
	m.mixer.Add(ClickStreamer(sampleRate, accent, m.gain))
	speaker.Unlock()
}

// FixedUpdate implements engine.FixedUpdater
func (m *Metronome) FixedUpdate(tr *engine.TimeResource) {
	m.elapsed += tr.FixedTime
	for m.elapsed >= m.beat {
		m.elapsed -= m.beat
		m.beats++
		m.Click(m.beats%AccentEvery == 1)
	}
}

// Beats returns the number of beats counted so far
func (m *Metronome) Beats() uint64 {
	return m.beats
}
