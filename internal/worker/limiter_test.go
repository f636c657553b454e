package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_Wait_AllowsWithinBudget(t *testing.T) {
	l := NewLimiter(100, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	for i := 0; i < 5; i++ {
		if err := l.Wait(ctx, "https://www.zefix.ch/en/search/entity/list"); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}

func TestLimiter_Allow_ExhaustsBurst(t *testing.T) {
	l := NewLimiter(0.001, 2)
	url := "https://www.boerse-frankfurt.de/aktie/DE0007664039"

	if !l.Allow(url) || !l.Allow(url) {
		t.Fatal("burst capacity should admit the first two navigations")
	}
	if l.Allow(url) {
		t.Error("third navigation should be throttled")
	}
}

func TestLimiter_IndependentPerHost(t *testing.T) {
	l := NewLimiter(0.001, 1)

	if !l.Allow("https://www.boerse-frankfurt.de/aktie/DE0007664039") {
		t.Fatal("first host should have capacity")
	}
	if !l.Allow("https://live.euronext.com/en/product/equities/FR0000120271-XPAR/market-information") {
		t.Error("a second registry must not share the first one's bucket")
	}
}

func TestLimiter_Wait_RespectsCancellation(t *testing.T) {
	l := NewLimiter(0.001, 1)
	url := "https://www.zefix.ch/en/search/entity/list"

	if err := l.Wait(context.Background(), url); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Wait(ctx, url); err == nil {
		t.Error("second wait should fail once the context expires")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	l := NewLimiter(1, 1)
	if err := l.Wait(context.Background(), "://bad"); err == nil {
		t.Error("expected error for unparseable URL")
	}
	if l.Allow("://bad") {
		t.Error("unparseable URL must not be admitted")
	}
}
