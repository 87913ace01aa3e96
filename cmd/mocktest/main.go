package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/ibreez3/pixel-ai/chat"
	"github.com/ibreez3/pixel-ai/service"
)

// MockGateway rate-limits the balanced model and answers from the fast one,
// so a single submission walks the whole fallback path offline.
type MockGateway struct {
	mu    sync.Mutex
	calls []string
}

func (m *MockGateway) CheckKeyStatus(ctx context.Context) (chat.KeyProbe, error) {
	return chat.KeyProbe{Configured: true, KeyPrefix: "sk-mock"}, nil
}

func (m *MockGateway) Complete(ctx context.Context, turns []chat.Turn, model string) chat.Outcome {
	m.mu.Lock()
	m.calls = append(m.calls, model)
	m.mu.Unlock()
	if model == chat.DefaultCatalog().Balanced.ID {
		return chat.Failed(chat.KindQuota, "mock quota exceeded", true)
	}
	last := turns[len(turns)-1].Content
	return chat.Succeeded(fmt.Sprintf("[%s] you said: %s", model, last))
}

func main() {
	log, err := service.NewLogger("mocktest", "", "debug")
	if err != nil {
		fmt.Println("logger:", err)
		os.Exit(1)
	}
	gw := &MockGateway{}
	orch := chat.New(gw, chat.WithLogger(log))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status := orch.Initialize(ctx)
	fmt.Println("key:", status.Message)

	states, stop := orch.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for s := range states {
			fmt.Printf("phase=%s model=%s messages=%d error=%q\n", s.Phase, s.Model, len(s.Messages), s.Error)
		}
	}()

	if !orch.Submit(ctx, "hello pixel") {
		fmt.Println("submission rejected")
		os.Exit(1)
	}
	stop()
	<-done

	s := orch.Snapshot()
	if len(gw.calls) != 2 {
		fmt.Println("expected 2 gateway calls, got", len(gw.calls))
		os.Exit(2)
	}
	if len(s.Messages) != 2 || s.Messages[1].Role != chat.RoleAssistant {
		fmt.Println("assistant reply missing")
		os.Exit(3)
	}
	fmt.Println("fallback verified:", s.Model, "->", s.Messages[1].Content)
}
