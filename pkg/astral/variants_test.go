package astral

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/megaverse/megaverse/pkg/engine"
)

type request struct {
	method   string
	resource string
	body     map[string]any
}

// mockTransport records requests and returns err for every call.
type mockTransport struct {
	requests []request
	err      error
}

func (m *mockTransport) Create(ctx context.Context, resource string, body any) error {
	m.requests = append(m.requests, request{method: "create", resource: resource, body: body.(map[string]any)})
	return m.err
}

func (m *mockTransport) Delete(ctx context.Context, resource string, body any) error {
	m.requests = append(m.requests, request{method: "delete", resource: resource, body: body.(map[string]any)})
	return m.err
}

func TestPlaceSendsDeclaredFields(t *testing.T) {
	tests := []struct {
		name      string
		build     func(Transport) engine.Placeable
		attribute string
		resource  string
		want      map[string]any
	}{
		{
			name:     "polyanet",
			build:    func(t Transport) engine.Placeable { return NewPolyanet("cand", t) },
			resource: "polyanets",
			want:     map[string]any{"candidateId": "cand", "row": 1, "column": 2},
		},
		{
			name:      "soloon",
			build:     func(t Transport) engine.Placeable { return NewSoloon("cand", t) },
			attribute: "purple",
			resource:  "soloons",
			want:      map[string]any{"candidateId": "cand", "row": 1, "column": 2, "color": "purple"},
		},
		{
			name:      "cometh",
			build:     func(t Transport) engine.Placeable { return NewCometh("cand", t) },
			attribute: "left",
			resource:  "comeths",
			want:      map[string]any{"candidateId": "cand", "row": 1, "column": 2, "direction": "left"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mockTransport{}
			if err := tt.build(transport).Place(context.Background(), 1, 2, tt.attribute); err != nil {
				t.Fatalf("Place failed: %v", err)
			}
			if len(transport.requests) != 1 {
				t.Fatalf("expected 1 request, got %d", len(transport.requests))
			}
			req := transport.requests[0]
			if req.method != "create" || req.resource != tt.resource {
				t.Errorf("got %s %s, want create %s", req.method, req.resource, tt.resource)
			}
			if !reflect.DeepEqual(req.body, tt.want) {
				t.Errorf("body = %v, want %v", req.body, tt.want)
			}
		})
	}
}

func TestPlaceAcceptsWholeDomain(t *testing.T) {
	for _, desc := range []Descriptor{SoloonDescriptor, ComethDescriptor} {
		for _, attr := range desc.Attributes {
			transport := &mockTransport{}
			r := NewRegistry("cand", transport)
			p, err := r.Resolve(desc.Name)
			if err != nil {
				t.Fatal(err)
			}
			if err := p.Place(context.Background(), 0, 0, attr); err != nil {
				t.Errorf("%s %s: unexpected error %v", desc.Name, attr, err)
			}
			if got := transport.requests[0].body[desc.AttributeField]; got != attr {
				t.Errorf("%s: %s = %v, want %s", desc.Name, desc.AttributeField, got, attr)
			}
		}
	}
}

func TestPlaceRejectsBeforeNetwork(t *testing.T) {
	tests := []struct {
		name      string
		build     func(Transport) engine.Placeable
		row       int
		attribute string
	}{
		{name: "soloon bad color", build: func(t Transport) engine.Placeable { return NewSoloon("c", t) }, attribute: "green"},
		{name: "soloon uppercase color", build: func(t Transport) engine.Placeable { return NewSoloon("c", t) }, attribute: "BLUE"},
		{name: "soloon missing color", build: func(t Transport) engine.Placeable { return NewSoloon("c", t) }},
		{name: "cometh bad direction", build: func(t Transport) engine.Placeable { return NewCometh("c", t) }, attribute: "north"},
		{name: "cometh missing direction", build: func(t Transport) engine.Placeable { return NewCometh("c", t) }},
		{name: "polyanet with attribute", build: func(t Transport) engine.Placeable { return NewPolyanet("c", t) }, attribute: "blue"},
		{name: "negative row", build: func(t Transport) engine.Placeable { return NewPolyanet("c", t) }, row: -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := &mockTransport{}
			err := tt.build(transport).Place(context.Background(), tt.row, 0, tt.attribute)
			if !errors.Is(err, engine.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(transport.requests) != 0 {
				t.Errorf("expected no network call, got %v", transport.requests)
			}
		})
	}
}

func TestRemoveSendsPosition(t *testing.T) {
	transport := &mockTransport{}
	if err := NewSoloon("cand", transport).Remove(context.Background(), 3, 4); err != nil {
		t.Fatal(err)
	}
	want := request{
		method:   "delete",
		resource: "soloons",
		body:     map[string]any{"candidateId": "cand", "row": 3, "column": 4},
	}
	if !reflect.DeepEqual(transport.requests[0], want) {
		t.Errorf("request = %+v, want %+v", transport.requests[0], want)
	}
}

func TestTransportErrorsPropagate(t *testing.T) {
	transport := &mockTransport{err: engine.NewRateLimitedError(nil)}
	err := NewPolyanet("cand", transport).Place(context.Background(), 0, 0, "")
	if !engine.IsRateLimited(err) {
		t.Fatalf("expected rate limit to propagate, got %v", err)
	}
}
