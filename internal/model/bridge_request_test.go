package model

import (
	"testing"
)

func newTestRequest() *BridgeRequest {
	return NewBridgeRequest("req-1", "0xUser", "0xDest", &Web3BigInt{Value: "4000000000000000000", Decimal: 18})
}

func TestBridgeRequest_HappyPathTransitions(t *testing.T) {
	r := newTestRequest()

	if r.StateOrdinal != 1 {
		t.Fatalf("new request ordinal = %d, want 1", r.StateOrdinal)
	}
	if r.SourceLegStatus != SourceLegStatusPending {
		t.Fatalf("new request source leg = %s, want pending", r.SourceLegStatus)
	}
	if r.DestinationLegStatus != DestinationLegStatusNotStarted {
		t.Fatalf("new request destination leg = %s, want not_started", r.DestinationLegStatus)
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"source submitted", func() error { return r.MarkSourceSubmitted("0xsrc") }},
		{"source confirmed", r.MarkSourceConfirmed},
		{"destination pending", r.MarkDestinationPending},
		{"destination submitted", func() error { return r.MarkDestinationSubmitted("0xdst") }},
		{"destination confirmed", r.MarkDestinationConfirmed},
	}

	for i, step := range steps {
		if err := step.fn(); err != nil {
			t.Fatalf("step %q: unexpected error: %v", step.name, err)
		}
		if r.StateOrdinal != i+2 {
			t.Errorf("step %q: ordinal = %d, want %d", step.name, r.StateOrdinal, i+2)
		}
	}

	if r.TerminalOutcome != TerminalOutcomeCompleted {
		t.Errorf("terminal outcome = %s, want completed", r.TerminalOutcome)
	}
	if r.SourceTxHash != "0xsrc" || r.DestinationTxHash != "0xdst" {
		t.Errorf("tx hashes not recorded: %q %q", r.SourceTxHash, r.DestinationTxHash)
	}
	if r.CompletedAt == nil {
		t.Error("completed_at not set")
	}
}

func TestBridgeRequest_DestinationRequiresConfirmedSource(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *BridgeRequest)
	}{
		{
			name:  "source still pending",
			setup: func(r *BridgeRequest) {},
		},
		{
			name: "source submitted but unconfirmed",
			setup: func(r *BridgeRequest) {
				_ = r.MarkSourceSubmitted("0xsrc")
			},
		},
		{
			name: "source failed",
			setup: func(r *BridgeRequest) {
				_ = r.MarkSourceFailed("reverted")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRequest()
			tt.setup(r)
			if err := r.MarkDestinationPending(); err == nil {
				t.Error("MarkDestinationPending succeeded, want error")
			}
		})
	}
}

func TestBridgeRequest_SourceFailureIsTerminal(t *testing.T) {
	r := newTestRequest()
	if err := r.MarkSourceSubmitted("0xsrc"); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkSourceFailed("timed out"); err != nil {
		t.Fatal(err)
	}

	if r.TerminalOutcome != TerminalOutcomeFailed {
		t.Errorf("terminal outcome = %s, want failed", r.TerminalOutcome)
	}
	if r.DestinationLegStatus != DestinationLegStatusNotStarted {
		t.Errorf("destination leg = %s, want not_started", r.DestinationLegStatus)
	}

	// terminal records refuse further transitions
	if err := r.MarkSourceConfirmed(); err == nil {
		t.Error("transition on terminal request succeeded, want error")
	}
}

func TestBridgeRequest_PartialCompletionAndReopen(t *testing.T) {
	r := newTestRequest()
	_ = r.MarkSourceSubmitted("0xsrc")
	_ = r.MarkSourceConfirmed()
	_ = r.MarkDestinationPending()
	_ = r.MarkDestinationSubmitted("0xdst")
	if err := r.MarkDestinationFailed("relayer timeout"); err != nil {
		t.Fatal(err)
	}

	if r.TerminalOutcome != TerminalOutcomePartiallyCompleted {
		t.Fatalf("terminal outcome = %s, want partially_completed", r.TerminalOutcome)
	}
	if r.SourceLegStatus != SourceLegStatusConfirmed {
		t.Errorf("source leg = %s, want confirmed", r.SourceLegStatus)
	}

	ordinalBefore := r.StateOrdinal
	if err := r.Reopen(); err != nil {
		t.Fatal(err)
	}
	if r.TerminalOutcome != TerminalOutcomeNone {
		t.Errorf("reopened outcome = %s, want none", r.TerminalOutcome)
	}
	if r.DestinationLegStatus != DestinationLegStatusPending {
		t.Errorf("reopened destination leg = %s, want pending", r.DestinationLegStatus)
	}
	if r.StateOrdinal <= ordinalBefore {
		t.Error("reopen did not advance ordinal")
	}
	if r.SourceTxHash != "0xsrc" {
		t.Error("reopen must not touch the source leg")
	}
}

func TestBridgeRequest_ReopenRefusedForOtherOutcomes(t *testing.T) {
	completed := newTestRequest()
	_ = completed.MarkSourceSubmitted("0xsrc")
	_ = completed.MarkSourceConfirmed()
	_ = completed.MarkDestinationPending()
	_ = completed.MarkDestinationSubmitted("0xdst")
	_ = completed.MarkDestinationConfirmed()

	failed := newTestRequest()
	_ = failed.MarkSourceFailed("rejected")

	for _, r := range []*BridgeRequest{completed, failed, newTestRequest()} {
		if err := r.Reopen(); err == nil {
			t.Errorf("Reopen on %s request succeeded, want error", r.TerminalOutcome)
		}
	}
}

func TestBridgeRequest_Cancellable(t *testing.T) {
	r := newTestRequest()
	if !r.Cancellable() {
		t.Error("pending request should be cancellable")
	}

	_ = r.MarkSourceSubmitted("0xsrc")
	if !r.Cancellable() {
		t.Error("submitted-but-unconfirmed request should be cancellable")
	}

	_ = r.MarkSourceConfirmed()
	if r.Cancellable() {
		t.Error("request with confirmed source leg must not be cancellable")
	}
}
