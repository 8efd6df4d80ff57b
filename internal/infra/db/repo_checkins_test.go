package db

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/roshannn-07/fairpass/internal/domain"
)

func TestCheckInModelMapping(t *testing.T) {
	in := domain.CheckIn{
		ID:            "7f1c8a52-7f6e-4c4b-9d1e-3a1f2b3c4d5e",
		EventID:       domain.EventIDFromInt(999),
		AssetID:       12345,
		HolderAddress: "ADDR1",
		Gate:          "north",
		CheckedInAt:   time.Date(2025, 1, 1, 20, 0, 0, 0, time.FixedZone("X", 3600)),
	}
	model, err := toCheckInModel(in)
	if err != nil {
		t.Fatalf("to model: %v", err)
	}
	if model.EventID != "999" || !model.EventIDNumeric || model.CheckedInAt.Location() != time.UTC {
		t.Fatalf("unexpected model: %+v", model)
	}
	out, err := fromCheckInModel(model)
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	if out.EventID != in.EventID || out.AssetID != in.AssetID || !out.CheckedInAt.Equal(in.CheckedInAt) {
		t.Fatalf("mapping mismatch: %+v", out)
	}

	in.EventID = domain.EventIDFromString("999")
	model, _ = toCheckInModel(in)
	out, _ = fromCheckInModel(model)
	if out.EventID.IsNumeric() {
		t.Fatalf("string event id must stay a string")
	}
}

func TestCheckInModelRejects(t *testing.T) {
	cases := []domain.CheckIn{
		{EventID: domain.EventIDFromInt(1), AssetID: 1},
		{ID: "x", AssetID: 1},
		{ID: "x", EventID: domain.EventIDFromInt(1)},
		{ID: "x", EventID: domain.EventIDFromInt(1), AssetID: math.MaxUint64},
	}
	for _, c := range cases {
		if _, err := toCheckInModel(c); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument for %+v, got %v", c, err)
		}
	}
}

func TestNoDBMode(t *testing.T) {
	store, err := NewStore("", nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Enabled() {
		t.Fatalf("expected no-db mode")
	}
	if err := store.Migrate(context.Background()); !errors.Is(err, errDBUnavailable) {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
	repo := NewCheckInRepository(store.DB)
	if _, err := repo.Record(context.Background(), domain.CheckIn{}); !errors.Is(err, errDBUnavailable) {
		t.Fatalf("expected errDBUnavailable, got %v", err)
	}
}
