package typesystem

import (
	"encoding/json"
	"fmt"
)

// The codec serializes schemes and ADT metadata for the module summary
// cache. Holes are not meaningful across runs; they decode to an
// Incomplete-provenance hole if one ever round-trips.

type typeDTO struct {
	Kind   string     `json:"k"`
	ID     int        `json:"id,omitempty"`
	Prim   string     `json:"prim,omitempty"`
	Name   string     `json:"name,omitempty"`
	Args   []*typeDTO `json:"args,omitempty"`
	From   *typeDTO   `json:"from,omitempty"`
	To     *typeDTO   `json:"to,omitempty"`
	Fields []fieldDTO `json:"fields,omitempty"`
	Cases  []caseDTO  `json:"cases,omitempty"`
	Tail   *typeDTO   `json:"tail,omitempty"`
}

type fieldDTO struct {
	Name string   `json:"name"`
	Type *typeDTO `json:"type"`
}

type caseDTO struct {
	Label   string   `json:"label"`
	Payload *typeDTO `json:"payload,omitempty"`
}

type schemeDTO struct {
	Vars []int    `json:"vars,omitempty"`
	Body *typeDTO `json:"body"`
}

// SchemeJSON encodes a scheme for cache storage.
func SchemeJSON(s Scheme) ([]byte, error) {
	dto, err := toDTO(s.Body)
	if err != nil {
		return nil, err
	}
	return json.Marshal(schemeDTO{Vars: s.Vars, Body: dto})
}

// SchemeFromJSON decodes a cached scheme.
func SchemeFromJSON(data []byte) (Scheme, error) {
	var dto schemeDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return Scheme{}, err
	}
	body, err := fromDTO(dto.Body)
	if err != nil {
		return Scheme{}, err
	}
	return Scheme{Vars: dto.Vars, Body: body}, nil
}

func toDTO(t Type) (*typeDTO, error) {
	if t == nil {
		return nil, nil
	}
	switch typ := t.(type) {
	case TVar:
		return &typeDTO{Kind: "var", ID: typ.ID}, nil
	case TPrim:
		return &typeDTO{Kind: "prim", Prim: typ.String()}, nil
	case TFunc:
		from, err := toDTO(typ.From)
		if err != nil {
			return nil, err
		}
		to, err := toDTO(typ.To)
		if err != nil {
			return nil, err
		}
		return &typeDTO{Kind: "func", From: from, To: to}, nil
	case TCon:
		args := make([]*typeDTO, len(typ.Args))
		for i, a := range typ.Args {
			dto, err := toDTO(a)
			if err != nil {
				return nil, err
			}
			args[i] = dto
		}
		return &typeDTO{Kind: "con", Name: typ.Name, Args: args}, nil
	case TTuple:
		args := make([]*typeDTO, len(typ.Elems))
		for i, e := range typ.Elems {
			dto, err := toDTO(e)
			if err != nil {
				return nil, err
			}
			args[i] = dto
		}
		return &typeDTO{Kind: "tuple", Args: args}, nil
	case TRecord:
		fields := make([]fieldDTO, len(typ.Fields))
		for i, f := range typ.Fields {
			dto, err := toDTO(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = fieldDTO{Name: f.Name, Type: dto}
		}
		return &typeDTO{Kind: "record", Fields: fields}, nil
	case TRow:
		cases := make([]caseDTO, len(typ.Cases))
		for i, c := range typ.Cases {
			payload, err := toDTO(c.Payload)
			if err != nil {
				return nil, err
			}
			cases[i] = caseDTO{Label: c.Label, Payload: payload}
		}
		tail, err := toDTO(typ.Tail)
		if err != nil {
			return nil, err
		}
		return &typeDTO{Kind: "row", Cases: cases, Tail: tail}, nil
	case THole:
		return &typeDTO{Kind: "hole"}, nil
	default:
		return nil, fmt.Errorf("codec: unknown type %T", t)
	}
}

var primByName = map[string]TPrim{
	"Unit":   Unit,
	"Int":    Int,
	"Bool":   Bool,
	"Char":   Char,
	"String": String,
}

func fromDTO(dto *typeDTO) (Type, error) {
	if dto == nil {
		return nil, nil
	}
	switch dto.Kind {
	case "var":
		return TVar{ID: dto.ID}, nil
	case "prim":
		p, ok := primByName[dto.Prim]
		if !ok {
			return nil, fmt.Errorf("codec: unknown primitive %q", dto.Prim)
		}
		return p, nil
	case "func":
		from, err := fromDTO(dto.From)
		if err != nil {
			return nil, err
		}
		to, err := fromDTO(dto.To)
		if err != nil {
			return nil, err
		}
		return TFunc{From: from, To: to}, nil
	case "con":
		args := make([]Type, len(dto.Args))
		for i, a := range dto.Args {
			t, err := fromDTO(a)
			if err != nil {
				return nil, err
			}
			args[i] = t
		}
		return TCon{Name: dto.Name, Args: args}, nil
	case "tuple":
		elems := make([]Type, len(dto.Args))
		for i, a := range dto.Args {
			t, err := fromDTO(a)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return TTuple{Elems: elems}, nil
	case "record":
		fields := make([]Field, len(dto.Fields))
		for i, f := range dto.Fields {
			t, err := fromDTO(f.Type)
			if err != nil {
				return nil, err
			}
			fields[i] = Field{Name: f.Name, Type: t}
		}
		return TRecord{Fields: fields}, nil
	case "row":
		cases := make([]RowCase, len(dto.Cases))
		for i, c := range dto.Cases {
			payload, err := fromDTO(c.Payload)
			if err != nil {
				return nil, err
			}
			cases[i] = RowCase{Label: c.Label, Payload: payload}
		}
		tail, err := fromDTO(dto.Tail)
		if err != nil {
			return nil, err
		}
		return TRow{Cases: cases, Tail: tail}, nil
	case "hole":
		return THole{Origin: Incomplete{Reason: "restored from cache"}}, nil
	default:
		return nil, fmt.Errorf("codec: unknown kind %q", dto.Kind)
	}
}
