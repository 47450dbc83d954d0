package presenter

import (
	"image"
	"log/slog"
	"sync"

	"github.com/soocke/sentinel-go/ui/images"
)

// RenderJob turns one frame into display-ready PNG bytes.
type RenderJob struct {
	Seq    uint64
	Src    *image.RGBA
	Width  int
	Height int
	// Cover crops to fill Width x Height; otherwise the frame is fitted.
	Cover bool
	Night bool
	Tint  bool
}

type RenderResult struct {
	Seq uint64
	PNG []byte
}

// FrameRenderer accepts render jobs and hands back finished results.
type FrameRenderer interface {
	Submit(job RenderJob)
	Poll() (RenderResult, bool)
}

// Render performs job synchronously.
func Render(job RenderJob) RenderResult {
	if job.Src == nil {
		return RenderResult{Seq: job.Seq}
	}
	var img image.Image = job.Src
	if job.Cover {
		img = images.Cover(job.Src, job.Width, job.Height)
	} else {
		img = images.ScaleToFit(job.Src, job.Width, job.Height)
	}
	if job.Night {
		img = images.NightVision(img, job.Tint)
	}
	return RenderResult{Seq: job.Seq, PNG: images.EncodePNG(img)}
}

// AsyncRenderer renders on a background goroutine. Both the job slot and the
// result slot hold one entry; newer entries replace older ones.
type AsyncRenderer struct {
	logger   *slog.Logger
	once     sync.Once
	workCh   chan RenderJob
	resultCh chan RenderResult
}

func NewAsyncRenderer(logger *slog.Logger) *AsyncRenderer {
	return &AsyncRenderer{
		logger:   logger,
		workCh:   make(chan RenderJob, 1),
		resultCh: make(chan RenderResult, 1),
	}
}

func (r *AsyncRenderer) Submit(job RenderJob) {
	r.once.Do(func() { go r.run() })
	replace(r.workCh, job)
}

func (r *AsyncRenderer) Poll() (RenderResult, bool) {
	select {
	case res := <-r.resultCh:
		return res, true
	default:
		return RenderResult{}, false
	}
}

// Close stops the worker. Submit must not be called afterwards.
func (r *AsyncRenderer) Close() {
	r.once.Do(func() {})
	close(r.workCh)
}

func (r *AsyncRenderer) run() {
	for job := range r.workCh {
		res := Render(job)
		if len(res.PNG) == 0 && r.logger != nil {
			r.logger.Debug("render.empty", "seq", job.Seq)
		}
		replace(r.resultCh, res)
	}
}

// replace performs a non-blocking send, dropping the queued value if the
// channel is full.
func replace[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}

// SyncRenderer renders inside Submit.
type SyncRenderer struct {
	pending *RenderResult
	Jobs    int
}

func (r *SyncRenderer) Submit(job RenderJob) {
	res := Render(job)
	r.pending = &res
	r.Jobs++
}

func (r *SyncRenderer) Poll() (RenderResult, bool) {
	if r.pending == nil {
		return RenderResult{}, false
	}
	res := *r.pending
	r.pending = nil
	return res, true
}
