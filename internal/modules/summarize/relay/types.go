package relay

import (
	"fmt"
	"net/http"
)

// Stage identifies which step of the relay chain rejected a request.
type Stage int

const (
	StageConfig Stage = iota + 1
	StageRequest
	StageTransport
	StageStatus
	StageParse
	StageSummary
)

func (s Stage) String() string {
	switch s {
	case StageConfig:
		return "config"
	case StageRequest:
		return "request"
	case StageTransport:
		return "transport"
	case StageStatus:
		return "status"
	case StageParse:
		return "parse"
	case StageSummary:
		return "summary"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// MissingSummaryMessage is returned when the backend answers JSON without a summary.
const MissingSummaryMessage = "No summary returned from the server"

// Failure is the tagged error produced by a relay step. Status is the HTTP status
// the browser receives and Message goes into the {"error": ...} body.
type Failure struct {
	Stage   Stage
	Status  int
	Message string
	Err     error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("relay %s: %s", f.Stage, f.Message)
}

func (f *Failure) Unwrap() error { return f.Err }

func configFailure(setting string) *Failure {
	return &Failure{
		Stage:   StageConfig,
		Status:  http.StatusInternalServerError,
		Message: fmt.Sprintf("summarizer backend URL is not configured (set %s)", setting),
	}
}

func requestFailure(status int, err error) *Failure {
	return &Failure{Stage: StageRequest, Status: status, Message: err.Error(), Err: err}
}

func transportFailure(err error) *Failure {
	return &Failure{Stage: StageTransport, Status: http.StatusInternalServerError, Message: err.Error(), Err: err}
}

func statusFailure(status int, body []byte) *Failure {
	return &Failure{
		Stage:   StageStatus,
		Status:  status,
		Message: "Flask backend error: " + string(body),
	}
}

func parseFailure(body []byte, err error) *Failure {
	return &Failure{
		Stage:   StageParse,
		Status:  http.StatusInternalServerError,
		Message: "Failed to parse Flask backend response: " + string(body),
		Err:     err,
	}
}

func summaryFailure() *Failure {
	return &Failure{Stage: StageSummary, Status: http.StatusInternalServerError, Message: MissingSummaryMessage}
}

// Result is a successful backend exchange: the JSON body is relayed verbatim.
type Result struct {
	Body    []byte
	Summary string
}
