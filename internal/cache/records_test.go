package cache

import (
	"testing"
	"time"

	"github.com/veritriage/veritriage/internal/model"
)

func TestKey_Deterministic(t *testing.T) {
	a := Key("CH0012032048", model.VerificationOutstandingShares, 703040000)
	b := Key("CH0012032048", model.VerificationOutstandingShares, 703040000)
	if a != b {
		t.Error("same inputs must derive the same key")
	}
}

func TestKey_ExpectedSharesChangesKey(t *testing.T) {
	a := Key("CH0012032048", model.VerificationOutstandingShares, 703040000)
	b := Key("CH0012032048", model.VerificationOutstandingShares, 703040001)
	if a == b {
		t.Error("a changed system figure must force a fresh comparison")
	}
}

func TestKey_VerificationTypeChangesKey(t *testing.T) {
	a := Key("DE0007664039", model.VerificationMarketType, 0)
	b := Key("DE0007664039", model.VerificationOutstandingShares, 0)
	if a == b {
		t.Error("verification mode must be part of the key")
	}
}

func TestRecords_SetGet(t *testing.T) {
	r := NewRecords(time.Minute)
	key := Key("DE0007664039", model.VerificationMarketType, 0)

	if _, found := r.Get(key); found {
		t.Fatal("unexpected hit on empty cache")
	}

	rec := &model.DecisionRecord{AlertID: "A1", Decision: model.DecisionTruePositive}
	r.Set(key, rec)

	got, found := r.Get(key)
	if !found {
		t.Fatal("expected hit")
	}
	if got.AlertID != "A1" || got.Decision != model.DecisionTruePositive {
		t.Errorf("got %+v", got)
	}
}

func TestRecords_DisabledWhenTTLZero(t *testing.T) {
	r := NewRecords(0)
	key := Key("DE0007664039", model.VerificationMarketType, 0)

	r.Set(key, &model.DecisionRecord{AlertID: "A1"})
	if _, found := r.Get(key); found {
		t.Error("zero TTL must disable caching")
	}
}
