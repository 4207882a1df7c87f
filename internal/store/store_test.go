package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"PlayBoard/internal/board"
	"PlayBoard/internal/geometry"
	"PlayBoard/internal/state"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFileStore(t *testing.T) *FileStore {
	t.Helper()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	s := NewRedisStore(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func backends(t *testing.T) map[string]Store {
	rs, _ := newRedisStore(t)
	return map[string]Store{
		"file":  newFileStore(t),
		"redis": rs,
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, KindPlay, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Delete(ctx, KindPlay, "missing"), ErrNotFound)
			assert.Error(t, s.Put(ctx, KindPlay, "", []byte("{}")))

			require.NoError(t, s.Put(ctx, KindPlay, "b", []byte(`{"n":1}`)))
			require.NoError(t, s.Put(ctx, KindPlay, "a", []byte(`{"n":2}`)))
			require.NoError(t, s.Put(ctx, KindLineup, "Trips Right/Left", []byte(`{}`)))
			require.NoError(t, s.Put(ctx, KindLineup, ".Trips", []byte(`{}`)))
			require.NoError(t, s.Put(ctx, KindLineup, "..", []byte(`{}`)))
			require.NoError(t, s.Put(ctx, KindPlay, "b", []byte(`{"n":3}`)))

			got, err := s.Get(ctx, KindPlay, "b")
			require.NoError(t, err)
			assert.JSONEq(t, `{"n":3}`, string(got))

			keys, err := s.Keys(ctx, KindPlay)
			require.NoError(t, err)
			assert.Equal(t, []string{"a", "b"}, keys)

			keys, err = s.Keys(ctx, KindLineup)
			require.NoError(t, err)
			assert.Equal(t, []string{"..", ".Trips", "Trips Right/Left"}, keys)

			got, err = s.Get(ctx, KindLineup, ".Trips")
			require.NoError(t, err)
			assert.JSONEq(t, `{}`, string(got))

			require.NoError(t, s.Delete(ctx, KindPlay, "a"))
			keys, err = s.Keys(ctx, KindPlay)
			require.NoError(t, err)
			assert.Equal(t, []string{"b"}, keys)
		})
	}
}

func TestFileStoreIgnoresStrayFiles(t *testing.T) {
	s := newFileStore(t)
	dir := filepath.Join(s.Dir(), string(KindPlay))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-123"), []byte("x"), 0o644))

	keys, err := s.Keys(context.Background(), KindPlay)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func waitChange(t *testing.T, ch <-chan Change, want Change) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case c, ok := <-ch:
			require.True(t, ok, "watch closed before %+v", want)
			if c == want {
				return
			}
		case <-deadline:
			t.Fatalf("no change %+v", want)
		}
	}
}

func TestFileStoreWatch(t *testing.T) {
	s := newFileStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, KindPlay, "p1", []byte("{}")))
	waitChange(t, ch, Change{Kind: KindPlay, Key: "p1"})

	require.NoError(t, s.Delete(ctx, KindPlay, "p1"))
	waitChange(t, ch, Change{Kind: KindPlay, Key: "p1", Deleted: true})
}

func TestRedisStoreWatch(t *testing.T) {
	s, _ := newRedisStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := s.Watch(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, KindLineup, "Trips", []byte("{}")))
	waitChange(t, ch, Change{Kind: KindLineup, Key: "Trips"})

	require.NoError(t, s.Delete(ctx, KindLineup, "Trips"))
	waitChange(t, ch, Change{Kind: KindLineup, Key: "Trips", Deleted: true})

	cancel()
	done := make(chan struct{})
	go func() {
		for range ch {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestOpenPicksBackend(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	s, err := Open(ctx, Options{Dir: t.TempDir(), RedisAddr: mr.Addr()})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)
	_ = s.Close()

	dir := t.TempDir()
	s, err = Open(ctx, Options{Dir: dir, RedisAddr: "127.0.0.1:1", PingTimeout: 200 * time.Millisecond})
	require.NoError(t, err)
	require.IsType(t, &FileStore{}, s)
	assert.Equal(t, dir, s.(*FileStore).Dir())
	_ = s.Close()

	s, err = Open(ctx, Options{Dir: dir})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)
	_ = s.Close()
}

func testSnapshot(positions int) state.Snapshot {
	snap := state.Snapshot{CanvasSize: geometry.NewSize(800, 600)}
	for i := 0; i < positions; i++ {
		snap.Elements = append(snap.Elements, &state.Position{
			ID: string(rune('a' + i)), X: float64(40 + i*60), Y: 300,
			Shape: state.ShapeCircle, Color: "#ffffff", Label: "P",
		})
	}
	return snap
}

func TestDetectFormation(t *testing.T) {
	cases := []struct {
		positions int
		want      string
	}{
		{0, FormationCustom},
		{4, FormationCustom},
		{5, FormationI},
		{7, FormationShotgun},
		{10, FormationShotgun},
		{11, FormationFull},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, DetectFormation(testSnapshot(c.positions)), "%d positions", c.positions)
	}
}

func TestExtractTags(t *testing.T) {
	assert.Equal(t, []string{"pass", "slant"}, ExtractTags("Quick Slant PASS"))
	assert.Equal(t, []string{"run", "sweep"}, ExtractTags("Toss Sweep Run"))
	assert.Empty(t, ExtractTags("Hail Mary"))
}

func TestLibraryPlays(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			lib := NewLibrary(s)
			clock := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
			lib.now = func() time.Time {
				clock = clock.Add(time.Minute)
				return clock
			}

			_, err := lib.SavePlay(ctx, "  ", testSnapshot(1))
			assert.Error(t, err)

			first, err := lib.SavePlay(ctx, "Power Run", testSnapshot(11))
			require.NoError(t, err)
			second, err := lib.SavePlay(ctx, "Screen Pass", testSnapshot(3))
			require.NoError(t, err)

			p, err := lib.LoadPlay(ctx, first)
			require.NoError(t, err)
			assert.Equal(t, "Power Run", p.Name)
			assert.Equal(t, FormationFull, p.Formation)
			assert.Equal(t, []string{"run"}, p.Tags)
			assert.Len(t, p.Data.Elements, 11)
			assert.Equal(t, geometry.NewSize(800, 600), p.Data.CanvasSize)

			names, err := lib.ListNames(ctx, KindPlay)
			require.NoError(t, err)
			assert.Equal(t, []string{"Screen Pass", "Power Run"}, names)

			require.NoError(t, lib.UpdatePlay(ctx, first, testSnapshot(5)))
			plays, err := lib.Plays(ctx)
			require.NoError(t, err)
			require.Len(t, plays, 2)
			assert.Equal(t, first, plays[0].ID, "updated play moves to the front")
			assert.Equal(t, FormationI, plays[0].Formation)
			assert.True(t, plays[0].Modified.After(plays[0].Created))

			require.NoError(t, lib.RenamePlay(ctx, second, "Slant"))
			found, err := lib.Search(ctx, Filter{Tag: "slant"})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, second, found[0].ID)

			found, err = lib.Search(ctx, Filter{Query: "power", Formation: FormationI})
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, first, found[0].ID)

			require.NoError(t, lib.DeletePlay(ctx, first))
			_, err = lib.LoadPlay(ctx, first)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, lib.UpdatePlay(ctx, first, testSnapshot(1)), ErrNotFound)
		})
	}
}

func TestLibrarySkipsCorruptPlay(t *testing.T) {
	ctx := context.Background()
	s := newFileStore(t)
	lib := NewLibrary(s)

	id, err := lib.SavePlay(ctx, "Dive", testSnapshot(2))
	require.NoError(t, err)
	require.NoError(t, s.Put(ctx, KindPlay, "broken", []byte("{not json")))

	plays, err := lib.Plays(ctx)
	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, id, plays[0].ID)
}

func TestLibraryLineups(t *testing.T) {
	ctx := context.Background()
	lib := NewLibrary(newFileStore(t))
	size := geometry.NewSize(800, 400)

	positions := []state.Position{
		{X: 400, Y: 200, Shape: state.ShapeSquare, Color: "#007BFF", Label: "C"},
		{X: 400, Y: 240, Shape: state.ShapeCircle, Color: "#32CD32", Label: "QB"},
	}
	assert.Error(t, lib.SaveLineup(ctx, "Empty", nil, size))
	assert.Error(t, lib.SaveLineup(ctx, "No canvas", positions, geometry.Size{}))
	require.NoError(t, lib.SaveLineup(ctx, "Mine", positions, size))
	require.NoError(t, lib.SaveLineup(ctx, "Mine", positions[:1], size))

	got, err := lib.LoadLineup(ctx, "Mine")
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Name)
	require.Len(t, got.Positions, 1, "same name replaces")
	assert.Equal(t, 0.5, got.Positions[0].X)
	assert.Equal(t, positions[:1], got.Expand(size))

	all, err := lib.Lineups(ctx)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, "Mine", all[6].Key)

	names, err := lib.ListNames(ctx, KindLineup)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mine"}, names)

	require.NoError(t, lib.DeleteLineup(ctx, "Mine"))
	_, err = lib.LoadLineup(ctx, "Mine")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = lib.ListNames(ctx, Kind("teams"))
	assert.Error(t, err)
}

// brokenStore serves reads from the wrapped store and fails every write.
type brokenStore struct {
	Store
	err error
}

func (s brokenStore) Put(context.Context, Kind, string, []byte) error { return s.err }

func TestFailedWritesLeaveSceneUntouched(t *testing.T) {
	ctx := context.Background()
	files := newFileStore(t)
	id, err := NewLibrary(files).SavePlay(ctx, "Slant Right", testSnapshot(3))
	require.NoError(t, err)

	down := errors.New("disk full")
	lib := NewLibrary(brokenStore{Store: files, err: down})

	b := board.New(geometry.NewSize(800, 600), board.DefaultSettings())
	b.LoadSnapshot(testSnapshot(5))
	var ops []state.Op
	b.OnChange(func(op state.Op) { ops = append(ops, op) })
	before := b.Snapshot()

	_, err = lib.SavePlay(ctx, "Power", b.Snapshot())
	assert.ErrorIs(t, err, down)
	assert.ErrorIs(t, lib.UpdatePlay(ctx, id, b.Snapshot()), down)
	assert.ErrorIs(t, lib.RenamePlay(ctx, id, "Power"), down)
	snap := b.Snapshot()
	assert.ErrorIs(t, lib.SaveLineup(ctx, "Mine", snap.Positions(), snap.CanvasSize), down)

	assert.Equal(t, before, b.Snapshot())
	assert.Empty(t, ops)

	stored, err := lib.LoadPlay(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Slant Right", stored.Name)
	assert.Len(t, stored.Data.Positions(), 3)
}
