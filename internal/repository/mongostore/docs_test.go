package mongostore

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/todotofu/todotofu/backend/internal/models"
	"github.com/todotofu/todotofu/backend/internal/repository"
)

func TestTaskDocCategory(t *testing.T) {
	uid := primitive.NewObjectID()
	cid := primitive.NewObjectID()
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		ref      models.CategoryRef
		wantKind models.CategoryRefKind
		wantID   string
	}{
		{"no category", models.NoCategory(), models.CategoryNone, ""},
		{"object id", models.UnresolvedCategory(cid.Hex()), models.CategoryUnresolved, cid.Hex()},
		{"resolved keeps id only", models.ResolvedCategory(cid.Hex(), "Work"), models.CategoryUnresolved, cid.Hex()},
		{"malformed id dropped", models.UnresolvedCategory("not-an-id"), models.CategoryNone, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := &models.Task{Title: "write", Category: tt.ref, Start: &start}

			got := taskToDoc(task, uid).toModel()

			if got.Category.Kind != tt.wantKind || got.Category.ID != tt.wantID {
				t.Errorf("Category = %+v, want kind %v id %q", got.Category, tt.wantKind, tt.wantID)
			}
			if got.UserID != uid.Hex() {
				t.Errorf("UserID = %q, want %q", got.UserID, uid.Hex())
			}
			if got.Start == nil || !got.Start.Equal(start) {
				t.Errorf("Start = %v, want %v", got.Start, start)
			}
		})
	}
}

func TestEventDocToModelIsUTC(t *testing.T) {
	loc := time.FixedZone("ICT", 7*3600)
	doc := eventDoc{
		ID:    primitive.NewObjectID(),
		Start: time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
		End:   time.Date(2025, 3, 10, 10, 0, 0, 0, loc),
	}

	got := doc.toModel()

	if got.Start.Location() != time.UTC || got.Start.Hour() != 2 {
		t.Errorf("Start = %v, want 02:00 UTC", got.Start)
	}
}

func TestOwnedFilterRejectsMalformedIDs(t *testing.T) {
	valid := primitive.NewObjectID().Hex()

	if _, err := ownedFilter("bad", valid); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("bad user id: error = %v, want ErrNotFound", err)
	}
	if _, err := ownedFilter(valid, "bad"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("bad record id: error = %v, want ErrNotFound", err)
	}

	filter, err := ownedFilter(valid, valid)
	if err != nil || len(filter) != 2 {
		t.Errorf("ownedFilter() = %v, %v", filter, err)
	}
}

func TestPreferencesDocRoundTrip(t *testing.T) {
	prefs := models.Preferences{Timezone: "UTC", DailyBudgetMin: 480, WeekStart: "monday", Theme: "dark"}
	if got := preferencesFromDoc(preferencesToDoc(prefs)); got != prefs {
		t.Errorf("round trip = %+v, want %+v", got, prefs)
	}
}
