// Package render exports a scene as a video file: every output frame is the
// scene frozen at one timestamp via a scrub override, captured with a
// headless browser and piped into ffmpeg. The caller supplies the scene
// duration; everything else about timing is derived from it and the frame
// rate.
package render

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// Job describes one export.
type Job struct {
	HTML     string
	CSS      string
	Duration float64 // seconds, from the scene's track model
	FPS      int
	Width    int
	Height   int
}

// FrameCount returns how many frames the job produces, at least one.
func (j Job) FrameCount() int {
	n := int(math.Ceil(j.Duration * float64(j.FPS)))
	if n < 1 {
		n = 1
	}
	return n
}

// FrameTime returns the scene timestamp of frame i.
func (j Job) FrameTime(i int) float64 {
	if j.FPS <= 0 {
		return 0
	}
	return float64(i) / float64(j.FPS)
}

// Capturer renders one composed page to a PNG image.
type Capturer interface {
	Capture(ctx context.Context, pageHTML string, width, height int) ([]byte, error)
}

// Encoder consumes a PNG frame stream and produces video bytes.
type Encoder interface {
	Encode(ctx context.Context, frames io.Reader, job Job) ([]byte, error)
}

// Renderer wires a capturer and an encoder into the export pipeline.
type Renderer struct {
	capturer Capturer
	encoder  Encoder
}

// NewRenderer creates a renderer over the given backends.
func NewRenderer(capturer Capturer, encoder Encoder) *Renderer {
	return &Renderer{capturer: capturer, encoder: encoder}
}

// Render runs capture and encode concurrently and returns the video bytes.
// Any frame or encoder failure cancels the whole job.
func (r *Renderer) Render(ctx context.Context, job Job) ([]byte, error) {
	if job.FPS <= 0 || job.Width <= 0 || job.Height <= 0 {
		return nil, fmt.Errorf("render: invalid job geometry %dx%d@%d", job.Width, job.Height, job.FPS)
	}

	pr, pw := io.Pipe()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer pw.Close()
		total := job.FrameCount()
		for i := 0; i < total; i++ {
			page := ComposePage(job.HTML, job.CSS, job.FrameTime(i))
			frame, err := r.capturer.Capture(ctx, page, job.Width, job.Height)
			if err != nil {
				pw.CloseWithError(err)
				return fmt.Errorf("render: frame %d: %w", i, err)
			}
			if _, err := pw.Write(frame); err != nil {
				return fmt.Errorf("render: frame %d: %w", i, err)
			}
		}
		return nil
	})

	var video []byte
	g.Go(func() error {
		var err error
		video, err = r.encoder.Encode(ctx, pr, job)
		if err != nil {
			pr.CloseWithError(err)
			return fmt.Errorf("render: encode: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return video, nil
}

// ChromiumCapturer shells out to a headless browser binary per frame.
type ChromiumCapturer struct {
	Binary string
}

// Capture writes the page to a temp file, screenshots it and returns the
// PNG bytes.
func (c *ChromiumCapturer) Capture(ctx context.Context, pageHTML string, width, height int) ([]byte, error) {
	dir, err := os.MkdirTemp("", "motionedit_frame_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	pagePath := filepath.Join(dir, "frame.html")
	shotPath := filepath.Join(dir, "frame.png")
	if err := os.WriteFile(pagePath, []byte(pageHTML), 0644); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, c.Binary,
		"--headless",
		"--disable-gpu",
		"--hide-scrollbars",
		fmt.Sprintf("--window-size=%d,%d", width, height),
		"--screenshot="+shotPath,
		"file://"+pagePath,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("headless capture failed: %w: %s", err, out)
	}
	return os.ReadFile(shotPath)
}

// FFmpegEncoder encodes a PNG stream with an external ffmpeg binary.
type FFmpegEncoder struct {
	Binary string
}

// Encode streams frames over stdin and reads the finished file back.
func (e *FFmpegEncoder) Encode(ctx context.Context, frames io.Reader, job Job) ([]byte, error) {
	dir, err := os.MkdirTemp("", "motionedit_video_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	outPath := filepath.Join(dir, "out.mp4")
	cmd := exec.CommandContext(ctx, e.Binary, ffmpegArgs(job, outPath)...)
	cmd.Stdin = frames

	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w: %s", err, out)
	}
	return os.ReadFile(outPath)
}

// ffmpegArgs builds the encoder invocation: PNG frames on stdin, h264 in a
// browser-safe pixel format out.
func ffmpegArgs(job Job, outPath string) []string {
	return []string{
		"-y",
		"-f", "image2pipe",
		"-framerate", fmt.Sprintf("%d", job.FPS),
		"-i", "-",
		"-frames:v", fmt.Sprintf("%d", job.FrameCount()),
		"-vf", fmt.Sprintf("scale=%d:%d", job.Width, job.Height),
		"-pix_fmt", "yuv420p",
		"-c:v", "libx264",
		outPath,
	}
}
