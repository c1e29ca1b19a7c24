package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kestrelio/apiary/internal/store"
)

func TestCliErrorExitCode(t *testing.T) {
	err := notFound(errors.New("nope"))
	ce, ok := err.(*cliError)
	if !ok || ce.code != 2 {
		t.Fatalf("expected exit code 2, got %+v", err)
	}
}

func TestListResultRenderText(t *testing.T) {
	var buf bytes.Buffer
	result := &ListResult{Sessions: []ListRow{
		{Name: "demo", Kind: store.KindSolo, Status: store.StatusWorking, Members: 1},
	}}
	if err := result.RenderText(&buf); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("demo")) {
		t.Errorf("output missing session name: %s", buf.String())
	}
}

func TestStatusResultRenderText(t *testing.T) {
	var buf bytes.Buffer
	result := &StatusResult{Total: 2, Working: 1, Idle: 1}
	if err := result.RenderText(&buf); err != nil {
		t.Fatalf("RenderText: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("2 sessions")) {
		t.Errorf("output missing summary: %s", buf.String())
	}
}
