package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrUnknownItemType is returned when an item's "type" member names no known variant.
var ErrUnknownItemType = errors.New("unknown item type")

// Decode reads a WhiteboardPlan from JSON.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - *WhiteboardPlan: the decoded plan
//   - error: a decode error, wrapping ErrUnknownItemType for unrecognized items
func Decode(r io.Reader) (*WhiteboardPlan, error) {
	var p WhiteboardPlan
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	return &p, nil
}

// Load reads and decodes the plan stored at path.
func Load(path string) (*WhiteboardPlan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plan: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes p as indented JSON.
func Encode(w io.Writer, p *WhiteboardPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p)
}

// NewItem returns a zero value of the variant named by kind.
//
// Parameters:
//   - kind: the item discriminant
//
// Returns:
//   - Item: a pointer to a fresh variant
//   - error: ErrUnknownItemType if kind is not recognized
func NewItem(kind Kind) (Item, error) {
	switch kind {
	case KindCircle:
		return &Circle{}, nil
	case KindRectangle:
		return &Rectangle{}, nil
	case KindPath:
		return &Path{}, nil
	case KindArrow:
		return &Arrow{}, nil
	case KindText:
		return &Text{}, nil
	case KindStrikethrough:
		return &Strikethrough{}, nil
	case KindSoftBody:
		return &SoftBody{}, nil
	case KindRigidBody:
		return &RigidBody{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownItemType, kind)
}

// DecodeItem decodes a single item, dispatching on its "type" member.
func DecodeItem(data []byte) (Item, error) {
	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	it, err := NewItem(head.Type)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, it); err != nil {
		return nil, fmt.Errorf("decode %s item: %w", head.Type, err)
	}
	return it, nil
}

func decodeItems(raw []json.RawMessage) ([]Item, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]Item, 0, len(raw))
	for i, r := range raw {
		it, err := DecodeItem(r)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
		out = append(out, it)
	}
	return out, nil
}

// stepAlias has Step's fields without its methods, so the JSON hooks below do not recurse.
type stepAlias Step

// UnmarshalJSON decodes the item lists through DecodeItem.
func (s *Step) UnmarshalJSON(data []byte) error {
	var aux struct {
		*stepAlias
		DrawingCommands []json.RawMessage `json:"drawingCommands"`
		Annotations     []json.RawMessage `json:"annotations"`
	}
	aux.stepAlias = (*stepAlias)(s)
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	var err error
	if s.DrawingCommands, err = decodeItems(aux.DrawingCommands); err != nil {
		return fmt.Errorf("drawingCommands: %w", err)
	}
	if s.Annotations, err = decodeItems(aux.Annotations); err != nil {
		return fmt.Errorf("annotations: %w", err)
	}
	return nil
}

// The MarshalJSON methods below write the "type" discriminant ahead of the variant's
// fields. Each declares a local alias so the embedded value does not recurse.

func (c *Circle) MarshalJSON() ([]byte, error) {
	type alias Circle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindCircle, (*alias)(c)})
}

func (r *Rectangle) MarshalJSON() ([]byte, error) {
	type alias Rectangle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindRectangle, (*alias)(r)})
}

func (p *Path) MarshalJSON() ([]byte, error) {
	type alias Path
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindPath, (*alias)(p)})
}

func (a *Arrow) MarshalJSON() ([]byte, error) {
	type alias Arrow
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindArrow, (*alias)(a)})
}

func (t *Text) MarshalJSON() ([]byte, error) {
	type alias Text
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindText, (*alias)(t)})
}

func (s *Strikethrough) MarshalJSON() ([]byte, error) {
	type alias Strikethrough
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindStrikethrough, (*alias)(s)})
}

func (s *SoftBody) MarshalJSON() ([]byte, error) {
	type alias SoftBody
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindSoftBody, (*alias)(s)})
}

func (r *RigidBody) MarshalJSON() ([]byte, error) {
	type alias RigidBody
	return json.Marshal(struct {
		Type Kind `json:"type"`
		*alias
	}{KindRigidBody, (*alias)(r)})
}
