package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Jostyn07/Asesoriasth-backend/model"
	"github.com/Jostyn07/Asesoriasth-backend/service"
)

func TestDraftStoreSaveAndLoad(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	payload := json.RawMessage(`{"nombre":"Ana","apellidos":"Lopez","telefono":"555-0101"}`)
	draftID, savedAt, err := store.Save(ctx, "", payload)
	if err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	cleanupDraft(t, db, draftID)

	if draftID == "" {
		t.Fatal("Expected a generated draftId")
	}
	if savedAt.IsZero() {
		t.Error("Expected a save timestamp")
	}

	draft, err := store.Load(ctx, draftID)
	if err != nil {
		t.Fatalf("Failed to load draft: %v", err)
	}
	if draft.Status != model.DraftActive {
		t.Errorf("Expected active status, got %q", draft.Status)
	}
	if draft.GivenName != "Ana" || draft.FamilyName != "Lopez" {
		t.Errorf("Summary fields not extracted: %+v", draft)
	}

	var roundTrip map[string]string
	if err := json.Unmarshal(draft.Payload, &roundTrip); err != nil {
		t.Fatalf("Stored payload is not valid JSON: %v", err)
	}
	if roundTrip["telefono"] != "555-0101" {
		t.Errorf("Payload not stored verbatim: %v", roundTrip)
	}
}

func TestDraftStoreLastWriteWins(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	draftID, _, err := store.Save(ctx, "", json.RawMessage(`{"nombre":"Primera"}`))
	if err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	cleanupDraft(t, db, draftID)

	if _, _, err := store.Save(ctx, draftID, json.RawMessage(`{"nombre":"Segunda"}`)); err != nil {
		t.Fatalf("Failed to re-save draft: %v", err)
	}

	draft, err := store.Load(ctx, draftID)
	if err != nil {
		t.Fatalf("Failed to load draft: %v", err)
	}
	if draft.GivenName != "Segunda" {
		t.Errorf("Expected second save to win, got %q", draft.GivenName)
	}
}

func TestDraftStoreMalformedSummaryTolerated(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	// Summary extraction is best-effort; a payload whose fields have the
	// wrong shape must still save.
	draftID, _, err := store.Save(ctx, "", json.RawMessage(`{"nombre":123,"extra":[1,2]}`))
	if err != nil {
		t.Fatalf("Expected save to tolerate odd payload shapes: %v", err)
	}
	cleanupDraft(t, db, draftID)

	draft, err := store.Load(ctx, draftID)
	if err != nil {
		t.Fatalf("Failed to load draft: %v", err)
	}
	if draft.GivenName != "" {
		t.Errorf("Expected empty summary field, got %q", draft.GivenName)
	}
}

func TestDraftStoreSoftDelete(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	draftID, _, err := store.Save(ctx, "", json.RawMessage(`{"nombre":"Ana"}`))
	if err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	cleanupDraft(t, db, draftID)

	if err := store.Delete(ctx, draftID); err != nil {
		t.Fatalf("Failed to delete draft: %v", err)
	}

	// Deleted drafts read as not found
	if _, err := store.Load(ctx, draftID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Expected ErrDraftNotFound after delete, got %v", err)
	}

	// Deleting again also reads as not found
	if err := store.Delete(ctx, draftID); !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Expected ErrDraftNotFound on second delete, got %v", err)
	}

	// The row is still there, only hidden
	var status string
	if err := db.QueryRow(`SELECT estado_borrador FROM borrador WHERE draft_id = $1`, draftID).Scan(&status); err != nil {
		t.Fatalf("Soft-deleted row should still exist: %v", err)
	}
	if status != model.DraftDeleted {
		t.Errorf("Expected status deleted, got %q", status)
	}
}

func TestDraftStoreSaveResurrects(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	draftID, _, err := store.Save(ctx, "", json.RawMessage(`{"nombre":"Ana"}`))
	if err != nil {
		t.Fatalf("Failed to save draft: %v", err)
	}
	cleanupDraft(t, db, draftID)

	if err := store.Delete(ctx, draftID); err != nil {
		t.Fatalf("Failed to delete draft: %v", err)
	}

	// Saving under the same id brings the draft back
	if _, _, err := store.Save(ctx, draftID, json.RawMessage(`{"nombre":"Ana de nuevo"}`)); err != nil {
		t.Fatalf("Failed to re-save deleted draft: %v", err)
	}

	draft, err := store.Load(ctx, draftID)
	if err != nil {
		t.Fatalf("Expected resurrected draft to load: %v", err)
	}
	if draft.GivenName != "Ana de nuevo" {
		t.Errorf("Expected re-saved payload, got %q", draft.GivenName)
	}
}

func TestDraftStoreListExcludesDeleted(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		id, _, err := store.Save(ctx, "", json.RawMessage(`{"nombre":"Ana"}`))
		if err != nil {
			t.Fatalf("Failed to save draft: %v", err)
		}
		cleanupDraft(t, db, id)
		ids = append(ids, id)
	}

	if err := store.Delete(ctx, ids[1]); err != nil {
		t.Fatalf("Failed to delete draft: %v", err)
	}

	summaries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("Failed to list drafts: %v", err)
	}
	for _, s := range summaries {
		if s.DraftID == ids[1] {
			t.Error("Deleted draft must not appear in listings")
		}
	}
}

func TestDraftStoreLoadMissing(t *testing.T) {
	db := testDB(t)
	store := NewDraftStore(db, 100, service.NewDraftID)

	_, err := store.Load(context.Background(), "DRAFT-0-NOPE")
	if !errors.Is(err, ErrDraftNotFound) {
		t.Errorf("Expected ErrDraftNotFound, got %v", err)
	}
}
