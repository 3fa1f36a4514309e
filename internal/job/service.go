package job

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adreel/adreel-api/internal/job/id"
	"github.com/adreel/adreel-api/internal/pipeline"
	"github.com/adreel/adreel-api/internal/storage"
)

// Service is the job launcher. Submit creates the ledger entry and
// returns the task id before any external call is made; the pipeline
// then runs in a supervised background goroutine whose only output is
// one terminal ledger write.
type Service struct {
	ledger    Ledger
	pipeline  pipeline.Runner
	artifacts storage.Publisher // optional; nil keeps provider URLs
	logger    *slog.Logger
}

// ServiceOption is a function that configures a Service.
type ServiceOption func(*Service)

// WithArtifactPublisher enables mirroring of rendered artifacts into
// owned storage after a successful run.
func WithArtifactPublisher(p storage.Publisher) ServiceOption {
	return func(s *Service) {
		s.artifacts = p
	}
}

// NewService creates a job launcher.
func NewService(ledger Ledger, p pipeline.Runner, logger *slog.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		ledger:   ledger,
		pipeline: p,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates the job record and starts the pipeline in the
// background. The record exists before Submit returns, so a client
// polling immediately afterwards observes "processing", never
// "not found".
func (s *Service) Submit(ctx context.Context, req pipeline.Request) (string, error) {
	taskID := id.Generate()
	if err := s.ledger.Create(ctx, NewRecord(taskID)); err != nil {
		return "", fmt.Errorf("create job record: %w", err)
	}

	s.logger.Info("job submitted",
		slog.String("task_id", taskID),
		slog.String("subject", req.Subject),
		slog.String("style", string(req.Style)),
	)

	// Detached from the request context: the caller's disconnect must not
	// cancel a running render.
	go s.runPipeline(context.WithoutCancel(ctx), taskID, req)

	return taskID, nil
}

// Poll returns the current ledger state for the task. It performs no
// side effects and is safe at arbitrary call frequency.
func (s *Service) Poll(ctx context.Context, taskID string) (*Record, error) {
	ok, err := s.ledger.Has(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("check job record: %w", err)
	}
	if !ok {
		return nil, ErrJobNotFound
	}
	return s.ledger.Get(ctx, taskID)
}

// runPipeline drives one job to a terminal ledger state. Every failure
// path, including a panic in a stage, ends in exactly one terminal
// write attempt; nothing propagates past this goroutine.
func (s *Service) runPipeline(ctx context.Context, taskID string, req pipeline.Request) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("pipeline panic recovered",
				slog.String("task_id", taskID),
				slog.Any("panic", r),
			)
			s.writeFailure(ctx, taskID, fmt.Sprintf("internal error: %v", r), nil)
		}
	}()

	result, err := s.pipeline.Run(ctx, req)
	if err != nil {
		s.logger.Error("pipeline failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		s.writeFailure(ctx, taskID, err.Error(), result)
		return
	}

	videoURL, thumbURL := s.publishArtifacts(ctx, taskID, result)

	metadata := map[string]string{
		"provenance": "ai-generated",
		"style":      string(styleOrDefault(req.Style)),
	}
	if videoURL != result.VideoURL {
		metadata["storage"] = "s3"
	}

	update := Update{
		Status:   StatusPtr(StatusReady),
		VideoURL: StringPtr(videoURL),
		Prompt:   StringPtr(result.Prompt),
		Metadata: metadata,
	}
	if thumbURL != "" {
		update.ThumbnailURL = StringPtr(thumbURL)
	}
	if err := s.ledger.Update(ctx, taskID, update); err != nil {
		s.logger.Error("terminal ledger write failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return
	}

	s.logger.Info("job ready",
		slog.String("task_id", taskID),
		slog.String("video_url", videoURL),
	)
}

// publishArtifacts mirrors the rendered video (and thumbnail) into
// owned storage when a publisher is configured. Mirroring is
// best-effort: on failure the provider URLs are kept and the job still
// completes.
func (s *Service) publishArtifacts(ctx context.Context, taskID string, result *pipeline.Result) (videoURL, thumbURL string) {
	videoURL = result.VideoURL
	thumbURL = result.ThumbnailURL
	if s.artifacts == nil {
		return videoURL, thumbURL
	}

	mirrored, err := s.artifacts.Publish(ctx, result.VideoURL, taskID+".mp4")
	if err != nil {
		s.logger.Warn("artifact mirror failed, keeping provider url",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
		return videoURL, thumbURL
	}
	videoURL = mirrored

	if result.ThumbnailURL != "" {
		mirroredThumb, err := s.artifacts.Publish(ctx, result.ThumbnailURL, taskID+"-thumb.jpg")
		if err != nil {
			s.logger.Warn("thumbnail mirror failed, keeping provider url",
				slog.String("task_id", taskID),
				slog.String("error", err.Error()),
			)
		} else {
			thumbURL = mirroredThumb
		}
	}

	return videoURL, thumbURL
}

// writeFailure records the terminal error state, keeping whatever
// partial result the pipeline produced for observability.
func (s *Service) writeFailure(ctx context.Context, taskID, message string, partial *pipeline.Result) {
	update := Update{
		Status: StatusPtr(StatusError),
		Error:  StringPtr(message),
	}
	if partial != nil && partial.Prompt != "" {
		update.Prompt = StringPtr(partial.Prompt)
	}
	if err := s.ledger.Update(ctx, taskID, update); err != nil {
		s.logger.Error("terminal ledger write failed",
			slog.String("task_id", taskID),
			slog.String("error", err.Error()),
		)
	}
}

func styleOrDefault(style pipeline.Style) pipeline.Style {
	if style == "" {
		return pipeline.StyleHandheld
	}
	return style
}
