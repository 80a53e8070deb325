package datarecording

import (
	"os"
	"strings"
	"sync"
	"time"
)

// ExecTable holds how and when the recorded program was run.
const ExecTable = "exec_info"

// ExecInfo is a property of the program execution that produced a
// recording.
type ExecInfo struct {
	Property string
	Value    string
}

// execRecorder records when and how the program was executed.
type execRecorder struct {
	recorder DataRecorder
	endOnce  sync.Once
}

func newExecRecorder(recorder DataRecorder) *execRecorder {
	recorder.CreateTable(ExecTable, ExecInfo{})

	return &execRecorder{recorder: recorder}
}

// Start records the start time, the command and the working directory.
func (e *execRecorder) Start() {
	e.recorder.InsertData(ExecTable, ExecInfo{"Start Time", timestamp()})
	e.recorder.InsertData(ExecTable,
		ExecInfo{"Command", strings.Join(os.Args, " ")})

	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	e.recorder.InsertData(ExecTable, ExecInfo{"Working Directory", cwd})
}

// End records the end time. Only the first call has an effect.
func (e *execRecorder) End() {
	e.endOnce.Do(func() {
		e.recorder.InsertData(ExecTable, ExecInfo{"End Time", timestamp()})
	})
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05.000000000")
}
