package state

import (
	"encoding/json"
	"fmt"
	"log"

	"PlayBoard/internal/geometry"
)

// Snapshot is the serializable form of a scene ("play data"). Coordinates are
// absolute pixels relative to CanvasSize.
type Snapshot struct {
	Elements   []Element     `json:"elements"`
	CanvasSize geometry.Size `json:"canvasSize"`
}

// Snapshot exports copies of all elements together with the canvas size.
func (s *Scene) Snapshot() Snapshot {
	return Snapshot{Elements: s.Elements(), CanvasSize: s.Size()}
}

// Restore replaces the scene with the snapshot's elements, rescaling them when
// the snapshot was taken on a differently sized surface. A scene without a size
// adopts the snapshot's.
func (s *Scene) Restore(snap Snapshot) {
	size := s.Size()
	if size.Empty() {
		s.mu.Lock()
		s.size = snap.CanvasSize
		s.mu.Unlock()
		size = snap.CanvasSize
	}
	s.Replace(snap.ScaledTo(size).Elements)
}

// ScaledTo returns a copy of the snapshot with coordinates mapped onto size.
func (snap Snapshot) ScaledTo(size geometry.Size) Snapshot {
	sx, sy := snap.CanvasSize.ScaleTo(size)
	out := Snapshot{Elements: make([]Element, 0, len(snap.Elements)), CanvasSize: size}
	if size.Empty() {
		out.CanvasSize = snap.CanvasSize
	}
	for _, e := range snap.Elements {
		if e == nil {
			continue
		}
		c := e.clone()
		c.scale(sx, sy)
		out.Elements = append(out.Elements, c)
	}
	return out
}

// Positions returns the positions held in the snapshot.
func (snap Snapshot) Positions() []Position {
	var out []Position
	for _, e := range snap.Elements {
		if p, ok := e.(*Position); ok {
			out = append(out, *p)
		}
	}
	return out
}

type positionJSON struct {
	Type Kind `json:"type"`
	*Position
}

type pathJSON struct {
	Type Kind `json:"type"`
	*Path
}

// MarshalElement encodes one element with its "type" tag.
func MarshalElement(e Element) ([]byte, error) {
	switch v := e.(type) {
	case *Position:
		return json.Marshal(positionJSON{Type: KindPosition, Position: v})
	case *Route:
		return json.Marshal(pathJSON{Type: KindRoute, Path: &v.Path})
	case *Block:
		return json.Marshal(pathJSON{Type: KindBlock, Path: &v.Path})
	}
	return nil, fmt.Errorf("state: marshal element: unsupported type %T", e)
}

// UnmarshalElement decodes one tagged element. Paths with fewer than two points
// are rejected.
func UnmarshalElement(data []byte) (Element, error) {
	var tag struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("state: unmarshal element: %w", err)
	}

	switch tag.Type {
	case KindPosition:
		var p Position
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("state: unmarshal position: %w", err)
		}
		if !p.Shape.Valid() {
			p.Shape = ShapeCircle
		}
		return &p, nil
	case KindRoute, KindBlock:
		var p Path
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("state: unmarshal %s: %w", tag.Type, err)
		}
		if len(p.Points) < 2 {
			return nil, fmt.Errorf("state: unmarshal %s: %d points", tag.Type, len(p.Points))
		}
		e, _ := NewPath(tag.Type, p.Points, p.Color, p.Origin)
		e.setID(p.ID)
		return e, nil
	}
	return nil, fmt.Errorf("state: unmarshal element: unknown type %q", tag.Type)
}

func (snap Snapshot) MarshalJSON() ([]byte, error) {
	elements := make([]json.RawMessage, 0, len(snap.Elements))
	for _, e := range snap.Elements {
		data, err := MarshalElement(e)
		if err != nil {
			return nil, err
		}
		elements = append(elements, data)
	}
	return json.Marshal(struct {
		Elements   []json.RawMessage `json:"elements"`
		CanvasSize geometry.Size     `json:"canvasSize"`
	}{elements, snap.CanvasSize})
}

// UnmarshalJSON is lenient: a missing or malformed elements array yields an
// empty snapshot and undecodable elements are skipped.
func (snap *Snapshot) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("state: unmarshal snapshot: %w", err)
	}

	*snap = Snapshot{Elements: make([]Element, 0)}
	if sizeData, ok := raw["canvasSize"]; ok {
		if err := json.Unmarshal(sizeData, &snap.CanvasSize); err != nil {
			log.Printf("[SCENE] Ignoring malformed canvasSize: %v", err)
		}
	}

	var elements []json.RawMessage
	if elementsData, ok := raw["elements"]; ok {
		if err := json.Unmarshal(elementsData, &elements); err != nil {
			log.Printf("[SCENE] Ignoring malformed elements: %v", err)
			return nil
		}
	}
	for _, data := range elements {
		e, err := UnmarshalElement(data)
		if err != nil {
			log.Printf("[SCENE] Skipping element: %v", err)
			continue
		}
		snap.Elements = append(snap.Elements, e)
	}
	return nil
}
