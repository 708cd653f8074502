// FILE: stripchess/internal/processor/processor.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"stripchess/internal/board"
	"stripchess/internal/core"
	"stripchess/internal/rules"
	"stripchess/internal/service"
)

const (
	shutdownTimeout = 5 * time.Second
	// matches the request validation bound
	maxRecordLength = 64
)

// Processor handles command execution and coordinates between the service and
// the analysis queue
type Processor struct {
	svc   *service.Service
	queue *AnalysisQueue
	log   zerolog.Logger
}

// New creates a processor with its own analysis worker pool
func New(svc *service.Service, workers int, logger zerolog.Logger) (*Processor, error) {
	queue, err := NewAnalysisQueue(svc, workers, logger)
	if err != nil {
		return nil, err
	}
	return &Processor{
		svc:   svc,
		queue: queue,
		log:   logger.With().Str("component", "processor").Logger(),
	}, nil
}

func (p *Processor) Execute(ctx context.Context, cmd Command) ProcessorResponse {
	switch cmd.Type {
	case CmdLegalMoves:
		return p.handleLegalMoves(cmd)
	case CmdClassify:
		return p.handleClassify(cmd)
	case CmdApplyMove:
		return p.handleApplyMove(cmd)
	case CmdAnalyze:
		return p.handleAnalyze(ctx, cmd)
	case CmdSubmitAnalysis:
		return p.handleSubmitAnalysis(cmd)
	case CmdGetAnalysis:
		return p.handleGetAnalysis(cmd)
	default:
		return p.errorResponse("unknown command", core.ErrCodeInvalidRequest)
	}
}

// isRecordSafe rejects oversized records and control characters. Shape
// errors are left to the parser so callers see its reason.
func (p *Processor) isRecordSafe(record string) bool {
	if len(record) > maxRecordLength {
		return false
	}
	for _, r := range record {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

func (p *Processor) handleLegalMoves(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.PositionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrCodeInvalidRequest)
	}
	if !p.isRecordSafe(args.Record) {
		return p.errorResponse("invalid record length or characters", core.ErrCodeInvalidPosition)
	}

	pos, moves, err := p.svc.LegalMoves(args.Record)
	if err != nil {
		return p.positionError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.MovesResponse{
			Record:  pos.String(),
			Turn:    pos.Turn.String(),
			InCheck: rules.InCheck(pos.Board, pos.Turn),
			Moves:   movePayloads(moves),
		},
	}
}

func (p *Processor) handleClassify(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.PositionRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrCodeInvalidRequest)
	}
	if !p.isRecordSafe(args.Record) {
		return p.errorResponse("invalid record length or characters", core.ErrCodeInvalidPosition)
	}

	pos, outcome, reason, err := p.svc.Classify(args.Record)
	if err != nil {
		return p.positionError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.ClassifyResponse{
			Record:   pos.String(),
			Terminal: outcome != core.OutcomeNone,
			Outcome:  outcome.String(),
			Reason:   string(reason),
		},
	}
}

func (p *Processor) handleApplyMove(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.ApplyRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrCodeInvalidRequest)
	}
	if !p.isRecordSafe(args.Record) {
		return p.errorResponse("invalid record length or characters", core.ErrCodeInvalidPosition)
	}

	move := board.Move{From: args.Move.From, To: args.Move.To}
	next, outcome, reason, err := p.svc.Apply(args.Record, move)
	if errors.Is(err, core.ErrIllegalMove) {
		return p.errorResponse(err.Error(), core.ErrCodeInvalidMove)
	}
	if err != nil {
		return p.positionError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data: core.ApplyResponse{
			Record:   next.String(),
			Board:    next.Board.ToASCII(),
			Terminal: outcome != core.OutcomeNone,
			Outcome:  outcome.String(),
			Reason:   string(reason),
		},
	}
}

func (p *Processor) handleAnalyze(ctx context.Context, cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.AnalyzeRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrCodeInvalidRequest)
	}
	if !p.isRecordSafe(args.Record) {
		return p.errorResponse("invalid record length or characters", core.ErrCodeInvalidPosition)
	}

	analysis, err := p.svc.AnalyzeRecord(ctx, args.Record, args.Depth)
	if err != nil {
		return p.analysisError(err)
	}

	return ProcessorResponse{
		Success: true,
		Data:    analysisResponse(analysis),
	}
}

func (p *Processor) handleSubmitAnalysis(cmd Command) ProcessorResponse {
	args, ok := cmd.Args.(core.AnalyzeRequest)
	if !ok {
		return p.errorResponse("invalid arguments", core.ErrCodeInvalidRequest)
	}
	if !p.isRecordSafe(args.Record) {
		return p.errorResponse("invalid record length or characters", core.ErrCodeInvalidPosition)
	}
	// reject bad input now rather than as a failed job
	if _, err := board.ParseRecord(args.Record); err != nil {
		return p.positionError(err)
	}
	if args.Depth < 0 || args.Depth > p.svc.MaxDepth() {
		return p.errorResponse(
			fmt.Sprintf("depth %d outside [0,%d]", args.Depth, p.svc.MaxDepth()),
			core.ErrCodeInvalidRequest)
	}

	job, err := p.queue.Submit(args.Record, args.Depth)
	if errors.Is(err, ErrQueueFull) {
		return p.errorResponse("analysis queue is full", core.ErrCodeQueueFull)
	}
	if err != nil {
		return p.errorResponse(err.Error(), core.ErrCodeInternalError)
	}

	return ProcessorResponse{
		Success: true,
		Pending: true,
		Data:    jobResponse(job),
	}
}

func (p *Processor) handleGetAnalysis(cmd Command) ProcessorResponse {
	job, ok := p.queue.Get(cmd.JobID)
	if !ok {
		return p.errorResponse("job not found", core.ErrCodeJobNotFound)
	}

	return ProcessorResponse{
		Success: true,
		Pending: job.Status == JobPending || job.Status == JobRunning,
		Data:    jobResponse(job),
	}
}

// WaitAnalysis blocks until a job finishes; used by long-polling clients
func (p *Processor) WaitAnalysis(ctx context.Context, jobID string) ProcessorResponse {
	job, err := p.queue.Wait(ctx, jobID)
	if errors.Is(err, ErrJobNotFound) {
		return p.errorResponse("job not found", core.ErrCodeJobNotFound)
	}
	return ProcessorResponse{
		Success: true,
		Pending: err != nil,
		Data:    jobResponse(job),
	}
}

func (p *Processor) positionError(err error) ProcessorResponse {
	var mpe *core.MalformedPositionError
	if errors.As(err, &mpe) {
		resp := p.errorResponse("malformed position", core.ErrCodeInvalidPosition)
		resp.Error.Details = mpe.Reason
		return resp
	}
	p.log.Error().Err(err).Msg("unexpected position error")
	return p.errorResponse("internal error", core.ErrCodeInternalError)
}

func (p *Processor) analysisError(err error) ProcessorResponse {
	switch {
	case errors.Is(err, service.ErrDepthExceeded):
		return p.errorResponse(err.Error(), core.ErrCodeInvalidRequest)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return p.errorResponse("analysis cancelled", core.ErrCodeInternalError)
	default:
		return p.positionError(err)
	}
}

func (p *Processor) errorResponse(message, code string) ProcessorResponse {
	return ProcessorResponse{
		Success: false,
		Error: &core.ErrorResponse{
			Error: message,
			Code:  code,
		},
	}
}

func movePayloads(moves []board.Move) []core.MovePayload {
	out := make([]core.MovePayload, len(moves))
	for i, m := range moves {
		out[i] = core.MovePayload{From: m.From, To: m.To}
	}
	return out
}

func analysisResponse(a *service.Analysis) *core.AnalysisResponse {
	if a == nil {
		return nil
	}
	return &core.AnalysisResponse{
		Record: a.Record,
		Depth:  a.Depth,
		Score:  a.Score,
		Line:   movePayloads(a.Line),
		Nodes:  a.Nodes,
		Source: a.Source,
	}
}

func jobResponse(job Job) core.JobResponse {
	resp := core.JobResponse{
		JobID:    job.ID,
		Status:   string(job.Status),
		Analysis: analysisResponse(job.Analysis),
	}
	if job.Err != nil {
		resp.Error = job.Err.Error()
	}
	return resp
}

// Close drains the analysis queue and closes the service
func (p *Processor) Close() error {
	var errs []error
	if err := p.queue.Shutdown(shutdownTimeout); err != nil {
		errs = append(errs, fmt.Errorf("analysis queue: %w", err))
	}
	if err := p.svc.Close(); err != nil {
		errs = append(errs, fmt.Errorf("service: %w", err))
	}
	return errors.Join(errs...)
}
