package capture

import (
	"context"
	"fmt"
	"log/slog"
)

// SystemDevices grants the desktop video source and the default microphone.
type SystemDevices struct {
	Grab   Grabber
	Logger *slog.Logger
	// OpenAudio defaults to OpenMicrophone.
	OpenAudio func(*slog.Logger) (AudioTrack, error)
}

// GetUserMedia acquires video and, when requested, audio. Either failure
// releases whatever was already acquired and reports ErrDeviceAccessDenied.
func (d SystemDevices) GetUserMedia(ctx context.Context, c Constraints) ([]Track, error) {
	grab := d.Grab
	if grab == nil {
		grab = Grab
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Probe once so an unavailable display fails the request up front.
	if _, err := grab(); err != nil {
		return nil, fmt.Errorf("%w: video: %v", ErrDeviceAccessDenied, err)
	}
	video := NewScreenTrack(grab, c, d.Logger)
	tracks := []Track{video}
	if !c.Audio {
		return tracks, nil
	}
	open := d.OpenAudio
	if open == nil {
		open = func(l *slog.Logger) (AudioTrack, error) {
			m, err := OpenMicrophone(l)
			if err != nil {
				return nil, err
			}
			return m, nil
		}
	}
	mic, err := open(d.Logger)
	if err != nil {
		video.Stop()
		return nil, fmt.Errorf("%w: audio: %v", ErrDeviceAccessDenied, err)
	}
	return append(tracks, mic), nil
}
