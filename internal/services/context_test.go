package services

import (
	"context"
	"testing"
)

func TestJobIDRoundTrip(t *testing.T) {
	ctx := WithJobID(context.Background(), "job-123")
	got, ok := JobIDFromContext(ctx)
	if !ok || got != "job-123" {
		t.Fatalf("got %q ok=%v", got, ok)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := context.Background()
	if out := WithJobID(ctx, ""); out != ctx {
		t.Fatal("empty job id should not allocate a new context")
	}
	if out := WithStage(ctx, ""); out != ctx {
		t.Fatal("empty stage should not allocate a new context")
	}
	if _, ok := SceneIDFromContext(ctx); ok {
		t.Fatal("scene id should be absent")
	}
}

func TestStageAndSceneRoundTrip(t *testing.T) {
	ctx := WithStage(context.Background(), "scene_resolution")
	ctx = WithSceneID(ctx, "scene_2")
	ctx = WithRequestID(ctx, "req-1")

	if stage, ok := StageFromContext(ctx); !ok || stage != "scene_resolution" {
		t.Fatalf("stage round trip failed: %q ok=%v", stage, ok)
	}
	if scene, ok := SceneIDFromContext(ctx); !ok || scene != "scene_2" {
		t.Fatalf("scene round trip failed: %q ok=%v", scene, ok)
	}
	if rid, ok := RequestIDFromContext(ctx); !ok || rid != "req-1" {
		t.Fatalf("request id round trip failed: %q ok=%v", rid, ok)
	}
}
