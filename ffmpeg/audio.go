package ffmpeg

import (
	"context"
	"fmt"
	"math"
)

// TranscodeToWAV converts any audio input to 16-bit PCM WAV, the uniform
// format used for duration arithmetic and mixing.
func (e *Executor) TranscodeToWAV(ctx context.Context, input, output string) error {
	return e.Run(ctx, "-i", input, "-ar", "44100", "-ac", "2", "-c:a", "pcm_s16le", output)
}

// Silence writes a WAV of silence with the given duration.
func (e *Executor) Silence(ctx context.Context, duration float64, output string) error {
	return e.Run(ctx,
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=44100:cl=stereo:d=%.2f", duration),
		"-c:a", "pcm_s16le", output)
}

// ConcatAudio joins the files in a concat list into one WAV.
func (e *Executor) ConcatAudio(ctx context.Context, listFile, output string) error {
	return e.Run(ctx, "-f", "concat", "-safe", "0", "-i", listFile,
		"-ar", "44100", "-ac", "2", "-c:a", "pcm_s16le", output)
}

// BackgroundTone synthesizes a low sine tone with a soft upper harmonic,
// scaled to the given volume fraction, for the given duration.
func (e *Executor) BackgroundTone(ctx context.Context, frequency, duration, volume float64, output string) error {
	harmonic := frequency * 1.5
	return e.Run(ctx,
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%.1f:duration=%.2f", frequency, duration),
		"-f", "lavfi", "-i", fmt.Sprintf("sine=frequency=%.1f:duration=%.2f", harmonic, duration),
		"-filter_complex", fmt.Sprintf("[1:a]volume=0.3[h];[0:a][h]amix=inputs=2:duration=first,volume=%.2f", volume),
		"-c:a", "pcm_s16le", output)
}

// ReconcileNarrationArgs builds the ffmpeg arguments that force a narration
// track of length trackDur to exactly targetDur seconds: truncated when
// longer, looped then truncated when shorter.
func ReconcileNarrationArgs(input string, trackDur, targetDur float64, output string) []string {
	if trackDur >= targetDur {
		return []string{"-i", input, "-t", fmt.Sprintf("%.2f", targetDur), "-c:a", "pcm_s16le", output}
	}
	loops := int(math.Ceil(targetDur/trackDur)) - 1
	return []string{
		"-stream_loop", fmt.Sprintf("%d", loops),
		"-i", input,
		"-t", fmt.Sprintf("%.2f", targetDur),
		"-c:a", "pcm_s16le", output,
	}
}

// ReconcileNarration runs ReconcileNarrationArgs.
func (e *Executor) ReconcileNarration(ctx context.Context, input string, trackDur, targetDur float64, output string) error {
	return e.Run(ctx, ReconcileNarrationArgs(input, trackDur, targetDur, output)...)
}

// MixAudio mixes narration and background into one track, keeping the
// length of the first input.
func (e *Executor) MixAudio(ctx context.Context, narration, background, output string) error {
	return e.Run(ctx,
		"-i", narration,
		"-i", background,
		"-filter_complex", "amix=inputs=2:duration=first:dropout_transition=2",
		"-c:a", "pcm_s16le", output)
}

// MuxAudio attaches an audio track to a video, re-encoding audio only.
func (e *Executor) MuxAudio(ctx context.Context, video, audio, output string) error {
	return e.Run(ctx,
		"-i", video,
		"-i", audio,
		"-map", "0:v:0", "-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac", "-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		output)
}
