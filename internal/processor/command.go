// FILE: stripchess/internal/processor/command.go
package processor

import (
	"stripchess/internal/core"
)

// CommandType defines the type of command being executed
type CommandType int

const (
	CmdLegalMoves CommandType = iota
	CmdClassify
	CmdApplyMove
	CmdAnalyze
	CmdSubmitAnalysis
	CmdGetAnalysis
)

// Command is a unified structure for all processor operations
type Command struct {
	Type  CommandType
	JobID string // For job lookups
	Args  any    // Command-specific arguments
}

// ProcessorResponse wraps the response with metadata
type ProcessorResponse struct {
	Success bool                `json:"success"`
	Pending bool                `json:"pending,omitempty"` // For async operations
	Data    any                 `json:"data,omitempty"`
	Error   *core.ErrorResponse `json:"error,omitempty"`
}

func NewLegalMovesCommand(req core.PositionRequest) Command {
	return Command{
		Type: CmdLegalMoves,
		Args: req,
	}
}

func NewClassifyCommand(req core.PositionRequest) Command {
	return Command{
		Type: CmdClassify,
		Args: req,
	}
}

func NewApplyMoveCommand(req core.ApplyRequest) Command {
	return Command{
		Type: CmdApplyMove,
		Args: req,
	}
}

func NewAnalyzeCommand(req core.AnalyzeRequest) Command {
	return Command{
		Type: CmdAnalyze,
		Args: req,
	}
}

func NewSubmitAnalysisCommand(req core.AnalyzeRequest) Command {
	return Command{
		Type: CmdSubmitAnalysis,
		Args: req,
	}
}

func NewGetAnalysisCommand(jobID string) Command {
	return Command{
		Type:  CmdGetAnalysis,
		JobID: jobID,
	}
}
