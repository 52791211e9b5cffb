package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	domain "github.com/delus-studio/storefront/internal/domain/catalog"
	"github.com/delus-studio/storefront/internal/observability"
	"github.com/delus-studio/storefront/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	catalogService    = "catalog-service"
	useCaseUpload     = "catalog.upload_track"
	spanPrefix        = "UC."
	defaultTitle      = "Untitled"
	defaultArtist     = "Unknown"
	defaultCoverImage = "default-cover.jpg"
)

// MediaStore persists uploaded audio. Save returns the reference relative to the static root.
type MediaStore interface {
	Save(ctx context.Context, filename string, content io.Reader) (string, error)
}

type UploadTrackInput struct {
	FileName string
	Content  io.Reader
	Title    string
	Artist   string
	CoverURL string
}

type UploadTrackResult struct {
	Track *domain.Track
}

type UploadTrackUseCase struct {
	tracks domain.TrackRepository
	media  MediaStore

	log          observability.Logger
	tracer       observability.Tracer
	reqCounter   observability.Counter
	durHistogram observability.Histogram
}

func NewUploadTrackUseCase(tracks domain.TrackRepository, media MediaStore, tel observability.Observability) *UploadTrackUseCase {
	log, tracer, metrics := observability.Resolve(tel)
	return &UploadTrackUseCase{
		tracks:       tracks,
		media:        media,
		log:          log.With(observability.F("service", catalogService)),
		tracer:       tracer,
		reqCounter:   metrics.Counter(observability.MUsecaseRequests),
		durHistogram: metrics.Histogram(observability.MUsecaseDuration),
	}
}

// Execute stores the audio file and registers it as a local track.
func (uc *UploadTrackUseCase) Execute(ctx context.Context, cmd UploadTrackInput) (_ *UploadTrackResult, err error) {
	logger := logctx.FromOr(ctx, uc.log).With(
		observability.F("use_case", useCaseUpload),
		observability.F("file_name", cmd.FileName),
	)
	ctx, span := uc.tracer.Start(ctx, spanPrefix+"UploadTrack",
		attribute.String("use_case", useCaseUpload),
	)
	start := time.Now()
	outcome, statusText := "success", "OK"
	var track *domain.Track

	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, statusText)
		} else {
			span.SetStatus(codes.Ok, statusText)
		}
		span.End()

		latency := time.Since(start).Seconds()
		uc.reqCounter.Add(1,
			observability.L("use_case", useCaseUpload),
			observability.L("outcome", outcome),
		)
		uc.durHistogram.Observe(latency, observability.L("use_case", useCaseUpload))

		fields := []observability.Field{
			observability.F("outcome", outcome),
			observability.F("status", statusText),
			observability.F("latency_seconds", latency),
		}
		if track != nil {
			fields = append(fields,
				observability.F("track_id", track.ID),
				observability.F("audio_url", track.AudioURL),
			)
		}
		if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
		if err != nil {
			fields = append(fields, observability.F("error", err.Error()))
		}
		logger.Info("use_case_done", fields...)
	}()

	if cmd.Content == nil || cmd.FileName == "" {
		outcome, statusText = "rejected", "NO_FILE"
		return nil, domain.ErrMissingFile
	}

	ref, err := uc.media.Save(ctx, cmd.FileName, cmd.Content)
	if err != nil {
		outcome, statusText = "error", "MEDIA_SAVE_FAILED"
		if errors.Is(err, domain.ErrUnsupportedFile) {
			outcome, statusText = "rejected", "FILE_TYPE_NOT_ALLOWED"
		}
		return nil, fmt.Errorf("catalog: save media: %w", err)
	}

	track = &domain.Track{
		Title:      orDefault(cmd.Title, defaultTitle),
		Artist:     orDefault(cmd.Artist, defaultArtist),
		CoverURL:   orDefault(cmd.CoverURL, defaultCoverImage),
		AudioURL:   ref,
		SourceType: domain.SourceLocal,
		CreatedAt:  time.Now().UTC(),
	}
	if err = uc.tracks.Create(ctx, track); err != nil {
		outcome, statusText = "error", "TRACK_SAVE_FAILED"
		return nil, fmt.Errorf("catalog: create track: %w", err)
	}

	return &UploadTrackResult{Track: track}, nil
}

func orDefault(v, d string) string {
	if v == "" {
		return d
	}
	return v
}
