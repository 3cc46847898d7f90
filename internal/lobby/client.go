package lobby

import (
	"context"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
)

func (l *Lobby) Start(ctx context.Context, runnerA, runnerB string) (Result, error) {
	return l.Do(ctx, engine.Command{Type: engine.CmdStart, RunnerA: runnerA, RunnerB: runnerB})
}

func (l *Lobby) SubmitBan(ctx context.Context, input string) (Result, error) {
	return l.Do(ctx, engine.Command{Type: engine.CmdBan, Stage: input})
}

// BanAndPublish submits a ban and, when that ban concludes the draft,
// publishes the artifacts in the same lobby step. pub is nil unless a
// publish was attempted.
func (l *Lobby) BanAndPublish(ctx context.Context, input string) (res Result, pub *PublishResult, err error) {
	res, err = l.request(ctx, FromClient{Cmd: engine.Command{Type: engine.CmdBan, Stage: input}, Publish: true})
	if err != nil || res.Published == nil {
		return res, nil, err
	}
	return res, res.Published, res.Published.Err
}

func (l *Lobby) Reset(ctx context.Context) (Result, error) {
	return l.Do(ctx, engine.Command{Type: engine.CmdReset})
}

// Do applies cmd and waits for the outcome. The returned error is the
// engine's rejection, ctx's error, or ErrClosed.
func (l *Lobby) Do(ctx context.Context, cmd engine.Command) (Result, error) {
	return l.request(ctx, FromClient{Cmd: cmd})
}

func (l *Lobby) request(ctx context.Context, m FromClient) (Result, error) {
	reply := make(chan Result, 1)
	m.Reply = reply
	if err := l.post(ctx, m); err != nil {
		return Result{}, err
	}
	res, err := await(ctx, l, reply)
	if err != nil {
		return Result{}, err
	}
	return res, res.Err
}

func (l *Lobby) Publish(ctx context.Context) (PublishResult, error) {
	reply := make(chan PublishResult, 1)
	if err := l.post(ctx, Publish{Reply: reply}); err != nil {
		return PublishResult{}, err
	}
	res, err := await(ctx, l, reply)
	if err != nil {
		return PublishResult{}, err
	}
	return res, res.Err
}

func (l *Lobby) Rewrite(ctx context.Context) (PublishResult, error) {
	reply := make(chan PublishResult, 1)
	if err := l.post(ctx, Rewrite{Reply: reply}); err != nil {
		return PublishResult{}, err
	}
	res, err := await(ctx, l, reply)
	if err != nil {
		return PublishResult{}, err
	}
	return res, res.Err
}

func (l *Lobby) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := l.post(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	return await(ctx, l, reply)
}

// Subscribe registers an outbox for snapshots; the current snapshot is sent
// first. The channel is closed if the client falls behind or the lobby
// shuts down.
func (l *Lobby) Subscribe(ctx context.Context, clientID string, buffer int) (<-chan Snapshot, error) {
	if buffer < 1 {
		buffer = 1
	}
	out := make(chan Snapshot, buffer)
	if err := l.post(ctx, Join{ClientID: clientID, Outbox: out}); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Lobby) Unsubscribe(ctx context.Context, clientID string) error {
	return l.post(ctx, Leave{ClientID: clientID})
}

func (l *Lobby) post(ctx context.Context, m Msg) error {
	select {
	case l.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.ctx.Done():
		return ErrClosed
	}
}

func await[T any](ctx context.Context, l *Lobby, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-l.ctx.Done():
		return zero, ErrClosed
	}
}
