package auth

import "testing"

// Cost 4 is bcrypt's minimum — fast enough for tests.
func newTestPasswordService() *PasswordService {
	return NewPasswordServiceForTest(4)
}

func TestHashAndVerify(t *testing.T) {
	ps := newTestPasswordService()

	hash, err := ps.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "correct horse battery staple" {
		t.Fatal("Hash() returned the plaintext")
	}

	if err := ps.Verify(hash, "correct horse battery staple"); err != nil {
		t.Errorf("Verify() with correct password: %v", err)
	}
	if err := ps.Verify(hash, "wrong password"); err == nil {
		t.Error("Verify() should fail with wrong password")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := newTestPasswordService()

	h1, err := ps.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	h2, err := ps.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}

	// bcrypt salts each hash, so two hashes of the same input differ
	if h1 == h2 {
		t.Error("two hashes of the same password should differ")
	}
}

func TestHash_TooLong(t *testing.T) {
	ps := newTestPasswordService()

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	if _, err := ps.Hash(string(long)); err == nil {
		t.Error("Hash() should reject passwords longer than 72 bytes")
	}
}
