// Package pipeline sequences the four generation stages (trend
// research, prompt synthesis, render submission, render polling) into
// one strictly sequential run per job. Retry lives below this layer,
// one HTTP call at a time; stage failures propagate unchanged so the
// caller sees exactly which stage gave up.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adreel/adreel-api/internal/kling"
	"github.com/adreel/adreel-api/internal/openai"
	"github.com/adreel/adreel-api/internal/tavily"
)

// Static validation errors, checked before any network call.
var (
	// ErrSubjectRequired is returned when the request has no subject.
	ErrSubjectRequired = errors.New("pipeline: subject is required")
	// ErrImageURLRequired is returned when the request has no source image.
	ErrImageURLRequired = errors.New("pipeline: image url is required")
)

// Style selects the creative direction of the synthesized prompt.
type Style string

const (
	// StyleHandheld directs an authentic, UGC-style shot.
	StyleHandheld Style = "handheld"
	// StyleCinematic directs a polished, studio-grade shot.
	StyleCinematic Style = "cinematic"
)

// Stage labels used in StageError.
const (
	StageResearch   = "trend research"
	StageSynthesis  = "prompt synthesis"
	StageSubmission = "render submission"
	StagePolling    = "render polling"
)

// StageError wraps a stage failure with the stage that produced it.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Request is one generation job's input.
type Request struct {
	Subject  string
	ImageURL string
	Style    Style
}

// Result is the aggregate pipeline output, mapped 1:1 into the job
// record's terminal fields.
type Result struct {
	VideoURL     string
	ThumbnailURL string
	Prompt       string
	TaskID       string
}

// Runner defines the interface the job launcher drives.
type Runner interface {
	Run(ctx context.Context, req Request) (*Result, error)
}

// Pipeline composes the provider clients. Poll pacing is three
// independent knobs: interval, attempt cap, and wall-clock cap.
// Whichever cap is hit first terminates polling.
type Pipeline struct {
	search   tavily.Searcher
	complete openai.Completer
	render   kling.Renderer
	logger   *slog.Logger

	pollInterval    time.Duration
	pollMaxAttempts int
	pollTimeout     time.Duration
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithPollInterval sets the delay between render status polls.
func WithPollInterval(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithPollMaxAttempts caps the number of render status polls.
func WithPollMaxAttempts(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.pollMaxAttempts = n
		}
	}
}

// WithPollTimeout caps the total wall-clock time spent polling.
func WithPollTimeout(d time.Duration) Option {
	return func(p *Pipeline) {
		if d > 0 {
			p.pollTimeout = d
		}
	}
}

// New creates a Pipeline with the default poll budget: 15s interval,
// 30 attempts, 7 minutes wall clock.
func New(search tavily.Searcher, complete openai.Completer, render kling.Renderer, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		search:          search,
		complete:        complete,
		render:          render,
		logger:          logger,
		pollInterval:    15 * time.Second,
		pollMaxAttempts: 30,
		pollTimeout:     7 * time.Minute,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes research → synthesis → submission → polling for one
// request. Each stage strictly depends on the previous stage's output;
// there is no fan-out within a job.
//
// On failure after prompt synthesis, Run returns the partial result
// accumulated so far (the prompt, and the task id once submitted)
// alongside the stage error, so the caller can persist them for
// observability.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	if req.Subject == "" {
		return nil, ErrSubjectRequired
	}
	if req.ImageURL == "" {
		return nil, ErrImageURLRequired
	}
	style := req.Style
	if style == "" {
		style = StyleHandheld
	}

	insights, err := p.search.Search(ctx, researchQuery(req.Subject))
	if err != nil {
		return nil, &StageError{Stage: StageResearch, Err: err}
	}
	p.logger.Info("trend research complete",
		slog.String("subject", req.Subject),
		slog.Int("results", len(insights.Results)),
	)

	prompt, err := p.complete.Complete(ctx,
		systemInstruction(style),
		synthesisMessage(req.Subject, style, insights.Serialize()),
		maxPromptTokens,
	)
	if err != nil {
		return nil, &StageError{Stage: StageSynthesis, Err: err}
	}
	p.logger.Info("prompt synthesized",
		slog.String("subject", req.Subject),
		slog.Int("prompt_len", len(prompt)),
	)

	taskID, err := p.render.Submit(ctx, prompt, req.ImageURL, kling.DefaultSubmitOptions())
	if err != nil {
		return &Result{Prompt: prompt}, &StageError{Stage: StageSubmission, Err: err}
	}
	p.logger.Info("render task submitted",
		slog.String("task_id", taskID),
	)

	poll, err := p.awaitRender(ctx, taskID)
	if err != nil {
		return &Result{Prompt: prompt, TaskID: taskID}, &StageError{Stage: StagePolling, Err: err}
	}

	return &Result{
		VideoURL:     poll.VideoURL,
		ThumbnailURL: poll.ThumbnailURL,
		Prompt:       prompt,
		TaskID:       taskID,
	}, nil
}

// awaitRender polls the render task until it terminates or a budget is
// exhausted. Individual poll failures are logged and absorbed; a
// dropped poll must not fail the whole job.
func (p *Pipeline) awaitRender(ctx context.Context, taskID string) (kling.PollResult, error) {
	start := time.Now()
	for attempt := 1; attempt <= p.pollMaxAttempts; attempt++ {
		result, err := p.render.Poll(ctx, taskID)
		if err != nil {
			p.logger.Warn("render status poll failed",
				slog.String("task_id", taskID),
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()),
			)
		} else {
			switch result.State {
			case kling.StateSuccess:
				return result, nil
			case kling.StateError:
				return kling.PollResult{}, fmt.Errorf("render failed: %s", result.Error)
			}
		}

		// Wall-clock budget is independent of the attempt counter: a slow
		// provider can exhaust time before attempts.
		elapsed := time.Since(start)
		if elapsed+p.pollInterval > p.pollTimeout {
			return kling.PollResult{}, p.timeoutError(taskID, attempt, elapsed)
		}

		select {
		case <-ctx.Done():
			return kling.PollResult{}, fmt.Errorf("render polling cancelled: %w", ctx.Err())
		case <-time.After(p.pollInterval):
		}
	}

	return kling.PollResult{}, p.timeoutError(taskID, p.pollMaxAttempts, time.Since(start))
}

func (p *Pipeline) timeoutError(taskID string, attempts int, elapsed time.Duration) error {
	return fmt.Errorf("render polling timed out for task %s after %d attempts (%s elapsed)",
		taskID, attempts, elapsed.Round(time.Second))
}
