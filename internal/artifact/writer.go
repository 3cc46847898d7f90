package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/order"
	"github.com/ILikeEggsToo/HuntingTourneyBot/internal/stage"
)

// WriteError is returned when an artifact cannot be written. The draft is
// unaffected; the same Bundle can be written again.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write artifact %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Bundle is both serialized artifacts for one ordering.
type Bundle struct {
	Seed       int64
	Config     []byte
	Splits     []byte
	SplitsName string
}

func Build(cat *stage.Catalog, ord order.Ordering, runnerA, runnerB string, seed int64, opts SplitsOptions) (Bundle, error) {
	splits, err := Splits(ord, opts)
	if err != nil {
		return Bundle{}, err
	}
	return Bundle{
		Seed:       seed,
		Config:     Config(cat, ord, seed),
		Splits:     splits,
		SplitsName: SplitsFileName(runnerA, runnerB),
	}, nil
}

type Files struct {
	ConfigPath string `json:"config_path"`
	SplitsPath string `json:"splits_path"`
}

type Writer struct {
	Dir string
	Log *zap.Logger
}

func NewWriter(dir string, log *zap.Logger) *Writer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Writer{Dir: dir, Log: log}
}

// Write stores both files under Dir, creating it if needed.
func (w *Writer) Write(ctx context.Context, b Bundle) (Files, error) {
	if err := os.MkdirAll(w.Dir, 0o755); err != nil {
		return Files{}, &WriteError{Path: w.Dir, Err: err}
	}

	files := Files{
		ConfigPath: filepath.Join(w.Dir, ConfigFileName),
		SplitsPath: filepath.Join(w.Dir, b.SplitsName),
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.writeFile(ctx, files.SplitsPath, b.Splits) })
	g.Go(func() error { return w.writeFile(ctx, files.ConfigPath, b.Config) })
	if err := g.Wait(); err != nil {
		return Files{}, err
	}
	return files, nil
}

func (w *Writer) writeFile(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		w.Log.Error("artifact write failed", zap.String("path", path), zap.Error(err))
		return &WriteError{Path: path, Err: err}
	}
	w.Log.Info("artifact written", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}
