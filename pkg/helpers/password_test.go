package helpers

import "testing"

func TestHashAndCompare(t *testing.T) {
	hash, err := HashPassword("hunter2hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter2hunter2" {
		t.Fatal("hash must not equal the plain text")
	}
	if !CompareHashAndPassword(hash, "hunter2hunter2") {
		t.Fatal("correct password must compare true")
	}
	if CompareHashAndPassword(hash, "wrong") {
		t.Fatal("wrong password must compare false")
	}
}
