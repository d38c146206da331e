package services

import (
	"context"
	"testing"

	"github.com/sonahq/sona-backend/internal/apierr"
	"github.com/sonahq/sona-backend/internal/types"
)

func TestMethodologyUnknownSectionRejected(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.methodology.GetSection(context.Background(), "bogus"); !apierr.IsKind(err, apierr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMethodologyUpdateCreatesVersion(t *testing.T) {
	env := newTestEnv(t)
	section := types.MethodologySectionVoiceCloning

	settings, err := env.methodology.UpdateSection(context.Background(), section, "v1 text")
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if settings.CurrentContent != "v1 text" {
		t.Fatalf("content not stored")
	}

	versions, err := env.methodology.ListVersions(context.Background(), section, 0)
	if err != nil {
		t.Fatalf("list versions failed: %v", err)
	}
	if len(versions) != 1 || versions[0].Trigger != types.TriggerManualEdit {
		t.Fatalf("expected one manual_edit version, got %+v", versions)
	}
}

func TestMethodologyIdenticalUpdateIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	section := types.MethodologySectionVoiceCloning

	if _, err := env.methodology.UpdateSection(context.Background(), section, "same text"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := env.methodology.UpdateSection(context.Background(), section, "same text"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	versions, _ := env.methodology.ListVersions(context.Background(), section, 0)
	if len(versions) != 1 {
		t.Fatalf("identical update must not snapshot, got %d versions", len(versions))
	}
}

func TestMethodologyRevert(t *testing.T) {
	env := newTestEnv(t)
	section := types.MethodologySectionVoiceCloning

	if _, err := env.methodology.UpdateSection(context.Background(), section, "first"); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if _, err := env.methodology.UpdateSection(context.Background(), section, "second"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	settings, err := env.methodology.Revert(context.Background(), section, 1)
	if err != nil {
		t.Fatalf("revert failed: %v", err)
	}
	if settings.CurrentContent != "first" {
		t.Fatalf("expected reverted content, got %q", settings.CurrentContent)
	}

	versions, _ := env.methodology.ListVersions(context.Background(), section, 0)
	if len(versions) != 3 || versions[0].Trigger != types.TriggerRevert {
		t.Fatalf("expected revert version on top, got %+v", versions)
	}
}

func TestMethodologyRetentionCap(t *testing.T) {
	env := newTestEnv(t)
	section := types.MethodologySectionVoiceCloningInstructions

	for i := 0; i < types.MaxMethodologyVersions+2; i++ {
		content := string(rune('a' + i))
		if _, err := env.methodology.UpdateSection(context.Background(), section, content); err != nil {
			t.Fatalf("update %d failed: %v", i, err)
		}
	}

	versions, err := env.methodology.ListVersions(context.Background(), section, 0)
	if err != nil {
		t.Fatalf("list versions failed: %v", err)
	}
	if len(versions) != types.MaxMethodologyVersions {
		t.Fatalf("expected %d retained versions, got %d", types.MaxMethodologyVersions, len(versions))
	}
	if versions[0].VersionNumber != 12 || versions[len(versions)-1].VersionNumber != 3 {
		t.Fatalf("unexpected retained window %d..%d",
			versions[len(versions)-1].VersionNumber, versions[0].VersionNumber)
	}
}
