// Package form models the summary form as a single state record. Every user
// action is a method returning the next state; nothing here performs I/O.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	MsgInvalidFile    = "Please select a valid .docx file."
	MsgMissingInput   = "Please select a file and enter a prompt."
	MsgNoResult       = "No summary or error returned from the server"
	errorPrefix       = "An error occurred while generating the summary: "
	labelIdle         = "Generate Summary"
	labelProcessing   = "Processing..."
	acceptedExtension = ".docx"
)

// State is everything the form shows at one moment.
type State struct {
	FileName     string
	FileSelected bool
	Prompt       string
	Summary      string
	Processing   bool
	Error        string
}

// SelectFile records a chosen file. Names without the .docx extension are
// rejected and leave the previous selection in place.
func (s State) SelectFile(name string) State {
	if !strings.HasSuffix(name, acceptedExtension) {
		s.Error = MsgInvalidFile
		return s
	}
	s.FileName = name
	s.FileSelected = true
	s.Error = ""
	return s
}

// ChangePrompt records the prompt text.
func (s State) ChangePrompt(prompt string) State {
	s.Prompt = prompt
	s.Error = ""
	return s
}

// Submit validates the inputs. ok is false when the request must not be sent.
func (s State) Submit() (next State, ok bool) {
	if !s.FileSelected || s.Prompt == "" {
		s.Error = MsgMissingInput
		return s, false
	}
	return s, true
}

// Begin marks a request as in flight.
func (s State) Begin() State {
	s.Processing = true
	s.Error = ""
	s.Summary = ""
	return s
}

// Complete applies the proxy's response.
func (s State) Complete(status int, body string) State {
	s.Processing = false
	summary, err := interpret(status, body)
	if err != nil {
		s.Summary = ""
		s.Error = errorPrefix + err.Error()
		return s
	}
	s.Summary = summary
	s.Error = ""
	return s
}

// Fail records a request that never produced a response.
func (s State) Fail(err error) State {
	s.Processing = false
	s.Summary = ""
	s.Error = errorPrefix + err.Error()
	return s
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return s.FileSelected && s.Prompt != "" && !s.Processing
}

// SubmitLabel is the text of the submit control.
func (s State) SubmitLabel() string {
	if s.Processing {
		return labelProcessing
	}
	return labelIdle
}

func interpret(status int, body string) (string, error) {
	if status < 200 || status > 299 {
		return "", fmt.Errorf("HTTP error! status: %d. Response: %s", status, body)
	}

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return "", fmt.Errorf("Failed to parse server response: %s", body)
	}

	obj, _ := doc.(map[string]any)
	if summary, ok := obj["summary"]; ok && truthy(summary) {
		return display(summary), nil
	}
	if msg, ok := obj["error"]; ok && truthy(msg) {
		return "", errors.New(display(msg))
	}
	return "", errors.New(MsgNoResult)
}

func display(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		return val != ""
	default:
		return true
	}
}
