package job

import (
	"context"
	stderrors "errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/kbukum/clipscribe/errors"
	"github.com/kbukum/clipscribe/logger"
	"github.com/kbukum/clipscribe/media"
	"github.com/kbukum/clipscribe/observability"
	"github.com/kbukum/clipscribe/session"
	"github.com/kbukum/clipscribe/transcript"
)

// Processor executes requests. It is safe for concurrent use; each request
// runs sequentially on the caller's goroutine.
type Processor struct {
	extractor   Extractor
	splitter    Splitter
	transcriber Transcriber
	workspaces  Workspaces
	metrics     *observability.Metrics
	log         *logger.Logger
}

// NewProcessor wires a Processor. metrics may be nil.
func NewProcessor(extractor Extractor, splitter Splitter, transcriber Transcriber, workspaces Workspaces, metrics *observability.Metrics) *Processor {
	return &Processor{
		extractor:   extractor,
		splitter:    splitter,
		transcriber: transcriber,
		workspaces:  workspaces,
		metrics:     metrics,
		log:         logger.WithComponent("job"),
	}
}

// Process runs req to completion. Every file it creates lives in the
// request's workspace, which is removed before Process returns, whatever
// the outcome. Errors are *errors.AppError values carrying the user-facing
// message; nothing is retried at this level.
func (p *Processor) Process(ctx context.Context, req Request, sink Sink) (res *Result, err error) {
	ctx = logger.ContextWithRequestID(ctx, req.ID)
	log := p.log.WithContext(ctx).WithFields(logger.Fields(logger.FieldChatID, req.ChatID, logger.FieldMode, req.Mode.Key()))

	oc := observability.NewOperationContext(req.ID, req.ChatID, req.Mode.Key(), p.metrics)
	ctx, span := oc.Start(ctx)
	defer func() {
		code := ""
		if err != nil {
			appErr := asAppError(err)
			err, code = appErr, string(appErr.Code)
			log.Error("request failed", logger.Fields(logger.FieldCode, code, logger.FieldError, err.Error(), logger.FieldDuration, oc.Duration().Milliseconds()))
		} else {
			log.Info("request completed", logger.Fields(logger.FieldDuration, oc.Duration().Milliseconds(), "chunks", res.Chunks, "chars", res.Chars))
		}
		oc.End(ctx, span, code, err)
	}()

	dir, err := p.workspaces.Create(req.ID)
	if err != nil {
		return nil, errors.Internal(err)
	}
	defer func() { _ = dir.Cleanup() }()

	log.Info("request started")
	res = &Result{}
	deliver := req.Mode.Deliverables()

	videoPath := dir.Path("input" + videoExt(req.Video))
	err = oc.Stage(ctx, observability.SpanDownload, string(StageDownloading), func(ctx context.Context) error {
		sink.Status(ctx, Status{Stage: StageDownloading})
		return sink.FetchVideo(ctx, req.Video, videoPath)
	})
	if err != nil {
		return nil, err
	}

	err = oc.Stage(ctx, observability.SpanExtract, string(StageExtracting), func(ctx context.Context) error {
		sink.Status(ctx, Status{Stage: StageExtracting})
		audio, err := p.extractor.Extract(ctx, videoPath, dir.Path("audio.mp3"))
		res.Audio = audio
		return err
	})
	if err != nil {
		return nil, err
	}

	if deliver.Audio {
		err = oc.Stage(ctx, observability.SpanDeliver, string(StageSendingAudio), func(ctx context.Context) error {
			sink.Status(ctx, Status{Stage: StageSendingAudio})
			return sink.DeliverAudio(ctx, res.Audio.Path)
		})
		if err != nil {
			return nil, err
		}
	}
	if !deliver.Transcript {
		return res, nil
	}

	var chunks []media.Chunk
	err = oc.Stage(ctx, observability.SpanSplit, string(StageSplitting), func(ctx context.Context) error {
		var err error
		chunks, err = p.splitter.Split(ctx, res.Audio, dir.Path())
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Chunks = len(chunks)
	p.metrics.RecordChunks(ctx, len(chunks))

	var tr *transcript.Transcript
	transcribeErr := oc.Stage(ctx, observability.SpanTranscribe, string(StageTranscribing), func(ctx context.Context) error {
		var err error
		tr, err = p.transcriber.Transcribe(ctx, chunks, func(part, total int) {
			sink.Status(ctx, Status{Stage: StageTranscribing, Part: part, Total: total})
		})
		return err
	})
	if transcribeErr != nil && tr == nil {
		return nil, transcribeErr
	}
	res.Transcript = tr

	var text string
	err = oc.Stage(ctx, observability.SpanFormat, string(StageFormatting), func(context.Context) error {
		var err error
		text, err = transcript.Format(tr)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errors.Transcription(stderrors.New("no speech recognized"))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	res.Chars = transcript.CharCount(text)

	err = oc.Stage(ctx, observability.SpanDeliver, string(StageSendingTranscript), func(ctx context.Context) error {
		sink.Status(ctx, Status{Stage: StageSendingTranscript})
		return sink.DeliverTranscript(ctx, text, tr.Partial)
	})
	if err != nil {
		return nil, err
	}
	if transcribeErr != nil {
		// partial transcript delivered, the request still failed
		log.Warn("delivered partial transcript", logger.Fields("segments", len(tr.Segments)))
		return res, transcribeErr
	}
	return res, nil
}

func asAppError(err error) *errors.AppError {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr
	}
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Timeout("processing").WithCause(err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Internal(fmt.Errorf("request cancelled: %w", err))
	}
	return errors.Internal(err)
}

// videoExt keeps the container extension so ffmpeg can sniff the input.
func videoExt(ref session.VideoRef) string {
	if ext := strings.ToLower(filepath.Ext(ref.FileName)); ext != "" && len(ext) <= 6 {
		return ext
	}
	if exts, _ := mime.ExtensionsByType(ref.MimeType); len(exts) > 0 {
		return exts[0]
	}
	return ".mp4"
}
