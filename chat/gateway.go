package chat

import "context"

//go:generate mockgen -destination=mocks/mock_gateway.go -package=mocks github.com/ibreez3/pixel-ai/chat Gateway

// Gateway is the server-side boundary to the completion API. Complete never
// returns a Go error; every failure is folded into the Outcome.
type Gateway interface {
	CheckKeyStatus(ctx context.Context) (KeyProbe, error)
	Complete(ctx context.Context, turns []Turn, model string) Outcome
}
