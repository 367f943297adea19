package passhash

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	h, err := Hash("Passw0rd123")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(h, "$argon2id$") {
		t.Fatalf("not PHC format: %q", h)
	}
	ok, err := Verify(h, "Passw0rd123")
	if err != nil || !ok {
		t.Fatalf("verify failed: %v", err)
	}
	ok, err = Verify(h, "wrong")
	if err != nil || ok {
		t.Fatalf("expected mismatch")
	}
}

func TestHashesAreSalted(t *testing.T) {
	h1, _ := Hash("Passw0rd123")
	h2, _ := Hash("Passw0rd123")
	if h1 == h2 {
		t.Fatal("two hashes of the same password must differ")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	for _, h := range []string{"", "plainhash", "$argon2id$bad"} {
		if _, err := Verify(h, "pw"); err == nil {
			t.Fatalf("no error for %q", h)
		}
	}
}
