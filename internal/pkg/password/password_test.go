package password

import "testing"

func TestHashVerify(t *testing.T) {
	hash, err := Hash("olive-grove")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !Verify("olive-grove", hash) {
		t.Fatalf("expected password to verify")
	}
	if Verify("wrong", hash) {
		t.Fatalf("expected wrong password to fail")
	}
	if Verify("olive-grove", "") {
		t.Fatalf("empty hash must never verify")
	}
}
