package idhash

import "testing"

func TestComputeDeliveryIDDeterministic(t *testing.T) {
	first := ComputeDeliveryID("ch-1", "user-1", "challenge_winner")
	second := ComputeDeliveryID("ch-1", "user-1", "challenge_winner")

	if first != second {
		t.Errorf("expected identical IDs, got %s and %s", first, second)
	}
	if len(first) != 64 {
		t.Errorf("expected 64-char hex hash, got %d chars", len(first))
	}
}

func TestComputeDeliveryIDDistinct(t *testing.T) {
	base := ComputeDeliveryID("ch-1", "user-1", "challenge_winner")

	variants := []string{
		ComputeDeliveryID("ch-2", "user-1", "challenge_winner"),
		ComputeDeliveryID("ch-1", "user-2", "challenge_winner"),
		ComputeDeliveryID("ch-1", "user-1", "announcement"),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d: expected distinct ID", i)
		}
	}
}

func TestComputeDeliveryIDSeparatorAmbiguity(t *testing.T) {
	// "a|b" + "c" must not collide with "a" + "b|c"
	first := ComputeDeliveryID("a|b", "c", "t")
	second := ComputeDeliveryID("a", "b|c", "t")
	if first == second {
		t.Error("expected distinct IDs for shifted separator inputs")
	}
}
