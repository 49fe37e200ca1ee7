package datarecording

import (
	"os"
	"strings"
	"time"
)

const execTableName = "exec_info"

const timeLayout = "2006-01-02 15:04:05.000000000"

type execInfo struct {
	Property string
	Value    string
}

// ExecRecorder records how and when a program ran.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []execInfo
}

// NewExecRecorder creates the exec_info table in recorder.
func NewExecRecorder(recorder DataRecorder) (*ExecRecorder, error) {
	if err := recorder.CreateTable(execTableName, execInfo{}); err != nil {
		return nil, err
	}

	return &ExecRecorder{recorder: recorder}, nil
}

// Start notes the start time, command line, and working directory.
func (e *ExecRecorder) Start() {
	e.Note("Start Time", time.Now().Format(timeLayout))
	e.Note("Command", strings.Join(os.Args, " "))

	if cwd, err := os.Getwd(); err == nil {
		e.Note("Working Directory", cwd)
	}
}

// Note adds a property.
func (e *ExecRecorder) Note(property, value string) {
	e.entries = append(e.entries, execInfo{Property: property, Value: value})
}

// End notes the end time and writes all properties.
func (e *ExecRecorder) End() error {
	e.Note("End Time", time.Now().Format(timeLayout))

	for _, entry := range e.entries {
		if err := e.recorder.InsertData(execTableName, entry); err != nil {
			return err
		}
	}

	e.entries = nil

	return e.recorder.Flush()
}
