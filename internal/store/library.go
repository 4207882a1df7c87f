package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"PlayBoard/internal/geometry"
	"PlayBoard/internal/lineup"
	"PlayBoard/internal/state"

	"github.com/segmentio/ksuid"
)

// Formation names assigned to saved plays.
const (
	FormationFull    = "Full Formation"
	FormationShotgun = "Shotgun"
	FormationI       = "I-Formation"
	FormationCustom  = "Custom"
)

var playTags = []string{"run", "pass", "screen", "sweep", "slant"}

// Play is a saved scene with library metadata.
type Play struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Data      state.Snapshot `json:"data"`
	Formation string         `json:"formation"`
	Tags      []string       `json:"tags"`
	Created   time.Time      `json:"created"`
	Modified  time.Time      `json:"modified"`
}

// Filter narrows Search results. Empty fields match everything.
type Filter struct {
	Query     string
	Formation string
	Tag       string
}

func (f Filter) match(p Play) bool {
	if f.Query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Query)) {
		return false
	}
	if f.Formation != "" && p.Formation != f.Formation {
		return false
	}
	if f.Tag != "" {
		for _, t := range p.Tags {
			if t == f.Tag {
				return true
			}
		}
		return false
	}
	return true
}

// Library stores plays and custom lineups on top of a Store.
type Library struct {
	store Store
	now   func() time.Time
}

func NewLibrary(s Store) *Library {
	return &Library{store: s, now: time.Now}
}

func (l *Library) Store() Store {
	return l.store
}

// DetectFormation classifies a play by how many positions it holds.
func DetectFormation(snap state.Snapshot) string {
	n := len(snap.Positions())
	switch {
	case n >= 11:
		return FormationFull
	case n >= 7:
		return FormationShotgun
	case n >= 5:
		return FormationI
	default:
		return FormationCustom
	}
}

// ExtractTags returns the play keywords found in name.
func ExtractTags(name string) []string {
	lower := strings.ToLower(name)
	tags := []string{}
	for _, t := range playTags {
		if strings.Contains(lower, t) {
			tags = append(tags, t)
		}
	}
	return tags
}

// SavePlay stores snap as a new play and returns its ID.
func (l *Library) SavePlay(ctx context.Context, name string, snap state.Snapshot) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("store: save play: empty name")
	}

	now := l.now().UTC()
	p := Play{
		ID:        ksuid.New().String(),
		Name:      name,
		Data:      snap,
		Formation: DetectFormation(snap),
		Tags:      ExtractTags(name),
		Created:   now,
		Modified:  now,
	}
	if err := l.putPlay(ctx, p); err != nil {
		return "", fmt.Errorf("store: save play %s: %w", name, err)
	}
	log.Printf("[STORE] Saved play %q as %s", name, p.ID)
	return p.ID, nil
}

// UpdatePlay overwrites the scene of an existing play.
func (l *Library) UpdatePlay(ctx context.Context, id string, snap state.Snapshot) error {
	p, err := l.LoadPlay(ctx, id)
	if err != nil {
		return err
	}
	p.Data = snap
	p.Formation = DetectFormation(snap)
	p.Modified = l.now().UTC()
	if err := l.putPlay(ctx, p); err != nil {
		return fmt.Errorf("store: update play %s: %w", id, err)
	}
	return nil
}

// RenamePlay changes a play's name and recomputes its tags.
func (l *Library) RenamePlay(ctx context.Context, id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: rename play %s: empty name", id)
	}
	p, err := l.LoadPlay(ctx, id)
	if err != nil {
		return err
	}
	p.Name = name
	p.Tags = ExtractTags(name)
	p.Modified = l.now().UTC()
	if err := l.putPlay(ctx, p); err != nil {
		return fmt.Errorf("store: rename play %s: %w", id, err)
	}
	return nil
}

func (l *Library) putPlay(ctx context.Context, p Play) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return l.store.Put(ctx, KindPlay, p.ID, data)
}

func (l *Library) LoadPlay(ctx context.Context, id string) (Play, error) {
	data, err := l.store.Get(ctx, KindPlay, id)
	if err != nil {
		return Play{}, err
	}
	var p Play
	if err := json.Unmarshal(data, &p); err != nil {
		return Play{}, fmt.Errorf("store: load play %s: %w", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

// Plays returns every play, most recently modified first. Unreadable records
// are logged and skipped.
func (l *Library) Plays(ctx context.Context) ([]Play, error) {
	keys, err := l.store.Keys(ctx, KindPlay)
	if err != nil {
		return nil, err
	}
	plays := make([]Play, 0, len(keys))
	for _, k := range keys {
		p, err := l.LoadPlay(ctx, k)
		if err != nil {
			log.Printf("[STORE] Skipping play %s: %v", k, err)
			continue
		}
		plays = append(plays, p)
	}
	sort.SliceStable(plays, func(i, j int) bool {
		if !plays[i].Modified.Equal(plays[j].Modified) {
			return plays[i].Modified.After(plays[j].Modified)
		}
		return plays[i].ID > plays[j].ID
	})
	return plays, nil
}

// Search returns the plays matching f, newest first.
func (l *Library) Search(ctx context.Context, f Filter) ([]Play, error) {
	plays, err := l.Plays(ctx)
	if err != nil {
		return nil, err
	}
	out := plays[:0]
	for _, p := range plays {
		if f.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListNames returns display names: play names newest first, or lineup names
// in alphabetical order.
func (l *Library) ListNames(ctx context.Context, kind Kind) ([]string, error) {
	switch kind {
	case KindPlay:
		plays, err := l.Plays(ctx)
		if err != nil {
			return nil, err
		}
		names := make([]string, len(plays))
		for i, p := range plays {
			names[i] = p.Name
		}
		return names, nil
	case KindLineup:
		return l.store.Keys(ctx, KindLineup)
	default:
		return nil, fmt.Errorf("store: list: unknown kind %q", kind)
	}
}

func (l *Library) DeletePlay(ctx context.Context, id string) error {
	return l.store.Delete(ctx, KindPlay, id)
}

// SaveLineup stores the positions as a custom lineup, replacing any lineup
// with the same name.
func (l *Library) SaveLineup(ctx context.Context, name string, positions []state.Position, size geometry.Size) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("store: save lineup: empty name")
	}
	if len(positions) == 0 {
		return fmt.Errorf("store: save lineup %s: no positions", name)
	}
	if size.Empty() {
		return fmt.Errorf("store: save lineup %s: empty canvas", name)
	}

	data, err := json.Marshal(lineup.FromPositions(name, positions, size))
	if err != nil {
		return fmt.Errorf("store: save lineup %s: %w", name, err)
	}
	if err := l.store.Put(ctx, KindLineup, name, data); err != nil {
		return fmt.Errorf("store: save lineup %s: %w", name, err)
	}
	log.Printf("[STORE] Saved lineup %q with %d positions", name, len(positions))
	return nil
}

func (l *Library) LoadLineup(ctx context.Context, name string) (lineup.Lineup, error) {
	data, err := l.store.Get(ctx, KindLineup, name)
	if err != nil {
		return lineup.Lineup{}, err
	}
	var out lineup.Lineup
	if err := json.Unmarshal(data, &out); err != nil {
		return lineup.Lineup{}, fmt.Errorf("store: load lineup %s: %w", name, err)
	}
	return out, nil
}

func (l *Library) DeleteLineup(ctx context.Context, name string) error {
	return l.store.Delete(ctx, KindLineup, name)
}

// Lineups returns the built-in formations followed by the custom ones.
func (l *Library) Lineups(ctx context.Context) ([]lineup.Lineup, error) {
	builtin, err := lineup.Defaults()
	if err != nil {
		return nil, err
	}
	out := append([]lineup.Lineup(nil), builtin...)

	names, err := l.store.Keys(ctx, KindLineup)
	if err != nil {
		return out, err
	}
	for _, name := range names {
		custom, err := l.LoadLineup(ctx, name)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			log.Printf("[STORE] Skipping lineup %s: %v", name, err)
			continue
		}
		out = append(out, custom)
	}
	return out, nil
}

// Watch forwards backend changes.
func (l *Library) Watch(ctx context.Context) (<-chan Change, error) {
	return l.store.Watch(ctx)
}
