package audio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	ebaudio "github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"
)

// DefaultSampleRate is the output sample rate of the ebiten audio context.
const DefaultSampleRate = 44100

// ebitenBackend is the implementation of Backend on ebiten's audio package.
type ebitenBackend struct {
	ctx *ebaudio.Context
}

var _ Backend = &ebitenBackend{}

// NewEbitenBackend creates a Backend playing through ebiten's audio context.
// Ebiten allows one context per process, so an existing context is reused when its sample rate matches.
//
// Parameters:
//   - sampleRate: the output sample rate, DefaultSampleRate when <= 0
//
// Returns:
//   - Backend: the backend
//   - error: if a context with a different sample rate already exists
func NewEbitenBackend(sampleRate int) (Backend, error) {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}

	ctx := ebaudio.CurrentContext()
	if ctx == nil {
		ctx = ebaudio.NewContext(sampleRate)
	} else if ctx.SampleRate() != sampleRate {
		return nil, fmt.Errorf("audio context already running at %d Hz, requested %d Hz", ctx.SampleRate(), sampleRate)
	}
	return &ebitenBackend{ctx: ctx}, nil
}

func (b *ebitenBackend) Open(path string, loop bool) (Player, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	stream, length, err := b.decode(path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	var src io.Reader = stream
	if loop {
		src = ebaudio.NewInfiniteLoop(stream, length)
	}

	p, err := b.ctx.NewPlayer(src)
	if err != nil {
		return nil, fmt.Errorf("failed to create player for %s: %w", path, err)
	}
	return &ebitenPlayer{ctx: b.ctx, player: p}, nil
}

// decode picks a decoder by file extension.
func (b *ebitenBackend) decode(path string, r io.Reader) (io.ReadSeeker, int64, error) {
	rate := b.ctx.SampleRate()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	case ".wav":
		s, err := wav.DecodeWithSampleRate(rate, r)
		if err != nil {
			return nil, 0, err
		}
		return s, s.Length(), nil
	default:
		return nil, 0, fmt.Errorf("%w: %q", ErrUnsupportedAudioFormat, filepath.Ext(path))
	}
}

// ebitenPlayer adapts *ebaudio.Player to Player.
type ebitenPlayer struct {
	ctx    *ebaudio.Context
	player *ebaudio.Player
}

var _ Player = &ebitenPlayer{}

func (p *ebitenPlayer) Play() error {
	if !p.ctx.IsReady() {
		return ErrPlaybackBlocked
	}
	p.player.Play()
	return nil
}

func (p *ebitenPlayer) Pause() {
	p.player.Pause()
}

func (p *ebitenPlayer) IsPlaying() bool {
	return p.player.IsPlaying()
}

func (p *ebitenPlayer) SetVolume(volume float64) {
	p.player.SetVolume(volume)
}

func (p *ebitenPlayer) Close() error {
	return p.player.Close()
}
