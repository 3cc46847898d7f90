package lobby

import (
	"context"
	"errors"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/artifact"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/engine"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

var ErrClosed = errors.New("lobby closed")
var ErrNotConcluded = errors.New("draft not concluded")
var ErrNotPublished = errors.New("no artifacts published")

type Msg interface{ isLobbyMsg() }

// FromClient applies one engine command. Reply may be nil for
// fire-and-forget callers. With Publish set, a command that concludes the
// draft also publishes before any other message is handled.
type FromClient struct {
	Cmd     engine.Command
	Publish bool
	Reply   chan Result
}

func (FromClient) isLobbyMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Snapshot // where this client wants to receive snapshots
}

func (Join) isLobbyMsg() {}

type Leave struct{ ClientID string }

func (Leave) isLobbyMsg() {}

// Publish generates a fresh ordering for the concluded draft, serializes
// both artifacts and writes them. Calling it again re-randomizes.
type Publish struct {
	Reply chan PublishResult
}

func (Publish) isLobbyMsg() {}

// Rewrite writes the last published artifacts again without re-randomizing.
type Rewrite struct {
	Reply chan PublishResult
}

func (Rewrite) isLobbyMsg() {}

type Shutdown struct{}

func (Shutdown) isLobbyMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isLobbyMsg() {}

// Export fields
type Snapshot struct {
	Version  int
	State    engine.State
	Events   []engine.Event
	Ordering *order.Ordering // set on the snapshot that follows a publish
}

type View struct {
	Version    int
	NumClients int
	State      engine.State
	Ordering   *order.Ordering
	Bundle     *artifact.Bundle
	Files      *artifact.Files
}

type Result struct {
	Version int
	Events  []engine.Event
	State   engine.State
	Err     error
	// Published is set when the command concluded the draft and
	// FromClient.Publish was requested.
	Published *PublishResult
}

type PublishResult struct {
	Version  int
	Ordering order.Ordering
	Bundle   artifact.Bundle
	Files    artifact.Files
	Err      error
}

// ArtifactWriter persists a bundle. *artifact.Writer implements it.
type ArtifactWriter interface {
	Write(ctx context.Context, b artifact.Bundle) (artifact.Files, error)
}

type Options struct {
	Catalog *stage.Catalog
	// Rand drives the coin flip and the stage ordering. It is only touched
	// from the lobby goroutine.
	Rand   *rand.Rand
	Writer ArtifactWriter // nil serializes without writing files
	Splits artifact.SplitsOptions
	Seed   func() (int64, error)
	Log    *zap.Logger
}

type Lobby struct {
	inbox   chan Msg
	state   engine.State
	version int
	clients map[string]chan Snapshot
	ctx     context.Context
	cancel  context.CancelFunc

	cat    *stage.Catalog
	rng    *rand.Rand
	writer ArtifactWriter
	splits artifact.SplitsOptions
	seed   func() (int64, error)
	log    *zap.Logger

	published *PublishResult
}

func NewLobby(parent context.Context, initial engine.State, opts Options) *Lobby {
	ctx, cancel := context.WithCancel(parent)

	if opts.Catalog == nil {
		opts.Catalog = stage.Hunting()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Seed == nil {
		opts.Seed = artifact.NewSeed
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}

	l := &Lobby{
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial,
		version: 0,
		clients: make(map[string]chan Snapshot),
		ctx:     ctx,
		cancel:  cancel,
		cat:     opts.Catalog,
		rng:     opts.Rand,
		writer:  opts.Writer,
		splits:  opts.Splits,
		seed:    opts.Seed,
		log:     opts.Log,
	}

	go l.loop()
	return l
}

func (l *Lobby) loop() {
	for {
		select {
		case <-l.ctx.Done():
			l.shutdown()
			return

		case m := <-l.inbox:
			switch msg := m.(type) {
			case Join:
				// Register client + send current snapshot immediately
				l.clients[msg.ClientID] = msg.Outbox
				l.send(msg.ClientID, msg.Outbox, Snapshot{Version: l.version, State: l.state})

			case Leave:
				delete(l.clients, msg.ClientID)

			case FromClient:
				res := l.apply(msg.Cmd)
				if msg.Publish && res.Err == nil && res.State.Phase == engine.PhaseConcluded {
					pub := l.publish()
					res.Published = &pub
				}
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case Publish:
				msg.Reply <- l.publish()

			case Rewrite:
				msg.Reply <- l.rewrite()

			case GetState:
				v := View{
					Version:    l.version,
					NumClients: len(l.clients),
					State:      l.state,
				}
				if l.published != nil {
					ord, bundle, files := l.published.Ordering, l.published.Bundle, l.published.Files
					v.Ordering = &ord
					v.Bundle = &bundle
					if l.published.Err == nil && l.writer != nil {
						v.Files = &files
					}
				}
				msg.Reply <- v

			case Shutdown:
				l.shutdown()
				return
			}
		}
	}
}

func (l *Lobby) apply(cmd engine.Command) Result {
	if cmd.Type == engine.CmdStart {
		// Fair coin for who bans first.
		cmd.FirstIsA = l.rng.IntN(2) == 0
	}

	events, newState, err := engine.Apply(l.cat, l.state, cmd)
	if err != nil {
		l.log.Info("command rejected", zap.String("cmd", string(cmd.Type)), zap.String("stage", cmd.Stage), zap.Error(err))
		return Result{Version: l.version, State: l.state, Err: err}
	}

	l.state = newState
	l.version++
	if cmd.Type == engine.CmdStart || cmd.Type == engine.CmdReset {
		l.published = nil
	}
	for _, e := range events {
		l.log.Info("draft event", zap.String("event", string(e.Type)), zap.String("runner", e.Runner), zap.String("stage", e.Stage), zap.Int("version", l.version))
	}
	l.broadcast(Snapshot{Version: l.version, State: l.state, Events: events})
	return Result{Version: l.version, Events: events, State: l.state}
}

func (l *Lobby) publish() PublishResult {
	if l.state.Phase != engine.PhaseConcluded {
		return PublishResult{Version: l.version, Err: ErrNotConcluded}
	}

	ord, err := order.Generate(l.cat, l.state.Bans, l.rng)
	if err != nil {
		return PublishResult{Version: l.version, Err: err}
	}
	seed, err := l.seed()
	if err != nil {
		return PublishResult{Version: l.version, Err: err}
	}
	bundle, err := artifact.Build(l.cat, ord, l.state.RunnerA, l.state.RunnerB, seed, l.splits)
	if err != nil {
		return PublishResult{Version: l.version, Err: err}
	}

	l.version++
	res := PublishResult{Version: l.version, Ordering: ord, Bundle: bundle}
	res.Files, res.Err = l.write(bundle)
	l.published = &res

	l.log.Info("ordering generated", zap.Strings("active", ord.Active), zap.Int64("seed", seed), zap.Int("version", l.version))
	l.broadcast(Snapshot{Version: l.version, State: l.state, Ordering: &ord})
	return res
}

func (l *Lobby) rewrite() PublishResult {
	if l.published == nil {
		return PublishResult{Version: l.version, Err: ErrNotPublished}
	}
	res := *l.published
	res.Files, res.Err = l.write(res.Bundle)
	l.published = &res
	return res
}

func (l *Lobby) write(b artifact.Bundle) (artifact.Files, error) {
	if l.writer == nil {
		return artifact.Files{}, nil
	}
	files, err := l.writer.Write(l.ctx, b)
	if err != nil {
		l.log.Error("artifacts not written", zap.Error(err))
	}
	return files, err
}

func (l *Lobby) shutdown() {
	for id, ch := range l.clients {
		close(ch) // Tell client no more snapshots
		delete(l.clients, id)
	}
	l.cancel()
}

func (l *Lobby) broadcast(snap Snapshot) {
	for id, ch := range l.clients {
		l.send(id, ch, snap)
	}
}

func (l *Lobby) send(id string, ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		//ok
	default:
		// Client is slow/full - drop them.
		l.log.Warn("dropping slow client", zap.String("client", id))
		close(ch)
		delete(l.clients, id)
	}
}

// Expose the inbox so tests or WS layer can send messages.
func (l *Lobby) Inbox() chan<- Msg { return l.inbox }

// Done is closed once the lobby has shut down.
func (l *Lobby) Done() <-chan struct{} { return l.ctx.Done() }
