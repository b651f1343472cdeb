package challenge

import (
	"strings"
	"testing"
	"time"

	"github.com/lls2023049/campus-events/internal/clock"
)

func TestService_IssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	code := svc.Issue("sess-1")
	if len(code) != codeLength {
		t.Fatalf("expected %d-character code, got %q", codeLength, code)
	}
	for _, r := range code {
		if !strings.ContainsRune(alphabet, r) {
			t.Fatalf("code %q contains %q outside the alphabet", code, r)
		}
	}

	if !svc.Verify("sess-1", code) {
		t.Fatalf("expected correct code to verify")
	}
}

func TestService_OneShot(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	code := svc.Issue("sess-1")
	if !svc.Verify("sess-1", code) {
		t.Fatalf("first verify with correct code should succeed")
	}
	if svc.Verify("sess-1", code) {
		t.Fatalf("second verify with the same correct code must fail")
	}
}

func TestService_WrongCodeStillConsumes(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	code := svc.Issue("sess-1")
	if svc.Verify("sess-1", "????") {
		t.Fatalf("wrong code should not verify")
	}
	// The failed attempt consumed the challenge; the correct code no
	// longer works, which defeats brute-force retries.
	if svc.Verify("sess-1", code) {
		t.Fatalf("challenge should be consumed by the failed attempt")
	}
}

func TestService_CaseInsensitive(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	code := svc.Issue("sess-1")
	if !svc.Verify("sess-1", strings.ToLower(code)) {
		t.Fatalf("verification should ignore case")
	}
}

func TestService_Expiry(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	svc := NewService(clk)

	code := svc.Issue("sess-1")
	clk.Advance(5*time.Minute + time.Second)

	if svc.Verify("sess-1", code) {
		t.Fatalf("stale challenge should be rejected")
	}
	// Staleness also deleted it.
	if svc.Verify("sess-1", code) {
		t.Fatalf("stale challenge should be gone after the first attempt")
	}
}

func TestService_ReissueReplacesPriorChallenge(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	first := svc.Issue("sess-1")
	second := svc.Issue("sess-1")

	if first != second && svc.Verify("sess-1", first) {
		t.Fatalf("reissued session should not accept the replaced code")
	}
	if first != second && svc.Verify("sess-1", second) {
		t.Fatalf("the first verify attempt consumed the challenge")
	}
}

func TestService_UnknownSession(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))
	if svc.Verify("nope", "ABCD") {
		t.Fatalf("unknown session should not verify")
	}
}

func TestService_EmptyCandidateNeverMatches(t *testing.T) {
	t.Parallel()

	svc := NewService(clock.NewFixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)))

	code := svc.Issue("sess-1")
	if code == "" {
		t.Fatal("issued code must not be empty")
	}
	if len(code) != 4 {
		t.Fatalf("expected a 4-character code, got %q", code)
	}
	if svc.Verify("sess-1", "") {
		t.Fatal("an empty candidate should not verify")
	}
}
