package models

import "testing"

func TestResolveStage(t *testing.T) {
	stage, ok := ResolveStage("5f1a2b3c4d5e6f7a8b9c0d03")
	if !ok || stage != StagePrinting {
		t.Fatalf("expected printing, got %q ok=%v", stage, ok)
	}

	if _, ok := ResolveStage("not-a-tracked-list"); ok {
		t.Fatal("expected no mapping for unknown list id")
	}
}
