package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "history", "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sampleRun() *Run {
	return &Run{
		SchemaPath:    "schema.json",
		InputPattern:  "docs/*.md",
		OutputPath:    "out.json",
		OutputFormat:  "json",
		Strategy:      "derivation-rules",
		DocumentCount: 3,
		FinalState:    "completed",
		StartedAt:     time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC),
		TotalMS:       42,
	}
}

func TestRecordAndGetRun(t *testing.T) {
	st := openTestStore(t)

	id, err := st.RecordRun(sampleRun(), []CommandRecord{
		{Command: "Initialize", DurationMS: 1},
		{Command: "LoadSchema", DurationMS: 5},
	})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := st.GetRun(id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetRun returned nil for a recorded run")
	}
	if got.Strategy != "derivation-rules" || got.DocumentCount != 3 || got.FinalState != "completed" {
		t.Errorf("run = %+v", got)
	}
	if !got.StartedAt.Equal(sampleRun().StartedAt) {
		t.Errorf("started at = %v", got.StartedAt)
	}

	cmds, err := st.ListCommands(id)
	if err != nil {
		t.Fatalf("ListCommands: %v", err)
	}
	if len(cmds) != 2 || cmds[0].Command != "Initialize" || cmds[1].Position != 1 {
		t.Errorf("commands = %+v", cmds)
	}
}

func TestGetRunAbsent(t *testing.T) {
	st := openTestStore(t)
	got, err := st.GetRun(999)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got != nil {
		t.Errorf("run = %+v, want nil", got)
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	st := openTestStore(t)
	for i := 0; i < 3; i++ {
		run := sampleRun()
		run.TotalMS = int64(i)
		if _, err := st.RecordRun(run, nil); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := st.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("runs = %d, want limit applied", len(runs))
	}
	if runs[0].ID < runs[1].ID {
		t.Errorf("runs not newest first: %d then %d", runs[0].ID, runs[1].ID)
	}
}
