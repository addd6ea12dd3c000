package whisper

import (
	"context"

	"github.com/fmueller/autocensor/internal/transcript"
)

type TranscriptionRequest struct {
	AudioPath string
	ModelPath string
	Language  string
}

type Engine interface {
	Transcribe(ctx context.Context, req TranscriptionRequest) (transcript.Transcript, error)
}
