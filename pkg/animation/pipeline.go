// Package animation renders manim code requested by the model and attaches
// the resulting video to the assistant message, outside the request cycle.
package animation

import (
	"context"
	"fmt"
	"sync"

	"github.com/ASHISH26940/manim-chat-api/pkg/db"
	"github.com/ASHISH26940/manim-chat-api/pkg/renderer"
	"github.com/ASHISH26940/manim-chat-api/pkg/storage"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// MessageStore is the slice of the store the pipeline writes to.
type MessageStore interface {
	TransitionMessage(ctx context.Context, id uuid.UUID, to db.MessageStatus, videoURL *string) error
}

// Renderer turns manim source into a video.
type Renderer interface {
	Generate(ctx context.Context, code, sceneName string) (*renderer.Video, error)
}

// Pipeline step names reported in PipelineError.
const (
	StepStart     = "start"
	StepRender    = "render"
	StepUpload    = "upload"
	StepPublicURL = "public_url"
	StepComplete  = "complete"
)

// PipelineError records which step of a run failed.
type PipelineError struct {
	Step string
	Err  error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("animation %s: %v", e.Step, e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

type Pipeline struct {
	store     MessageStore
	renderer  Renderer
	objects   storage.ObjectStore
	sceneName string

	wg sync.WaitGroup
}

func NewPipeline(store MessageStore, r Renderer, objects storage.ObjectStore) *Pipeline {
	return &Pipeline{
		store:     store,
		renderer:  r,
		objects:   objects,
		sceneName: renderer.DefaultSceneName,
	}
}

// Launch starts a detached run for messageID and returns immediately.
// The run is not tied to any request context and cannot be cancelled.
func (p *Pipeline) Launch(messageID uuid.UUID, code string) *Run {
	r := &Run{messageID: messageID, done: make(chan struct{})}
	p.wg.Add(1)
	go p.execute(r, code)
	return r
}

// Wait blocks until every launched run has finished.
func (p *Pipeline) Wait() {
	p.wg.Wait()
}

func (p *Pipeline) execute(r *Run, code string) {
	ctx := context.Background()
	logger := log.WithField("message_id", r.messageID.String())

	defer p.wg.Done()
	defer close(r.done)
	defer func() {
		if rec := recover(); rec != nil {
			r.err = &PipelineError{Step: "panic", Err: fmt.Errorf("%v", rec)}
			logger.Errorf("Animation pipeline panicked: %v", rec)
			p.markFailed(ctx, r.messageID, logger)
		}
	}()

	r.err = p.process(ctx, r.messageID, code, logger)
}

func (p *Pipeline) process(ctx context.Context, messageID uuid.UUID, code string, logger *log.Entry) error {
	logger.Info("Setting status to generating")
	if err := p.store.TransitionMessage(ctx, messageID, db.StatusGenerating, nil); err != nil {
		// Nothing was rendered yet; leave the message as pending.
		logger.Errorf("Could not mark message as generating, aborting: %v", err)
		return &PipelineError{Step: StepStart, Err: err}
	}

	url, step, err := p.renderAndStore(ctx, messageID, code, logger)
	if err == nil {
		if err = p.store.TransitionMessage(ctx, messageID, db.StatusCompleted, &url); err != nil {
			step = StepComplete
			logger.Errorf("Error updating message with video URL: %v", err)
		}
	}
	if err != nil {
		logger.Errorf("Error generating animation at %s: %v", step, err)
		p.markFailed(ctx, messageID, logger)
		return &PipelineError{Step: step, Err: err}
	}

	logger.WithField("video_url", url).Info("Animation generation completed")
	return nil
}

func (p *Pipeline) renderAndStore(ctx context.Context, messageID uuid.UUID, code string, logger *log.Entry) (string, string, error) {
	logger.Info("Generating animation")
	video, err := p.renderer.Generate(ctx, code, p.sceneName)
	if err != nil {
		return "", StepRender, err
	}

	filename := ObjectName(messageID, video.Filename)
	logger.WithField("filename", filename).Infof("Uploading video to storage (%d bytes)", len(video.Data))
	if err := p.objects.Upload(ctx, filename, video.Data, storage.VideoContentType, true); err != nil {
		return "", StepUpload, err
	}

	url, err := p.objects.PublicURL(ctx, filename)
	if err != nil {
		return "", StepPublicURL, err
	}
	return url, "", nil
}

// markFailed is best effort; a failure here is only visible in the logs.
func (p *Pipeline) markFailed(ctx context.Context, messageID uuid.UUID, logger *log.Entry) {
	if err := p.store.TransitionMessage(ctx, messageID, db.StatusFailed, nil); err != nil {
		logger.Errorf("Could not mark message as failed: %v", err)
	}
}

// ObjectName is the storage key for a rendered video.
func ObjectName(messageID uuid.UUID, serviceFilename string) string {
	return messageID.String() + "-" + serviceFilename
}

// Run is the handle for one launched pipeline run.
type Run struct {
	messageID uuid.UUID
	done      chan struct{}
	err       error
}

func (r *Run) MessageID() uuid.UUID { return r.messageID }

// Done is closed when the run has finished.
func (r *Run) Done() <-chan struct{} { return r.done }

// Err returns the run's outcome; it is nil until Done is closed.
func (r *Run) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

// Wait blocks until the run finishes or ctx ends.
func (r *Run) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
