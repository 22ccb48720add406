package hash

import "testing"

func TestCompute_EmptySlice(t *testing.T) {
	digest, err := Compute([]byte{})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if digest != EmptyDigest {
		t.Errorf("Compute(empty) = %s, want %s", digest, EmptyDigest)
	}
}

func TestCompute_NilRejected(t *testing.T) {
	_, err := Compute(nil)
	if err == nil {
		t.Fatal("Compute(nil) should return an error")
	}
}

func TestCompute_Deterministic(t *testing.T) {
	data := []byte("vaultkeep")
	a, err := Compute(data)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	b, err := Compute(data)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if a != b {
		t.Errorf("Compute() not deterministic: %s != %s", a, b)
	}
}

func TestCompute_DifferentContentDifferentDigest(t *testing.T) {
	a, _ := Compute([]byte("one"))
	b, _ := Compute([]byte("two"))
	if a == b {
		t.Error("distinct contents hashed to the same digest")
	}
}

func TestEqual_CaseInsensitive(t *testing.T) {
	if !Equal("ABCDEF", "abcdef") {
		t.Error("Equal() should be case-insensitive")
	}
}

func TestEqual_DifferentLength(t *testing.T) {
	if Equal("abc", "abcd") {
		t.Error("Equal() should reject differing lengths")
	}
}

func TestEqual_Mismatch(t *testing.T) {
	if Equal("abc123", "abc124") {
		t.Error("Equal() should reject mismatched digests")
	}
}
