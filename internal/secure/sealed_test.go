package secure

import (
	"bytes"
	"fmt"
	"sync"
	"testing"
)

func TestSealedRoundTrip(t *testing.T) {
	t.Parallel()

	secret := []byte("cached-vault-master-key")
	sealed := Seal(secret)
	defer sealed.Destroy()

	locked, err := sealed.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer locked.Destroy()

	if !bytes.Equal(locked.Bytes(), secret) {
		t.Error("opened contents do not match sealed input")
	}
}

func TestSealedEmptyInput(t *testing.T) {
	t.Parallel()

	sealed := Seal(nil)
	defer sealed.Destroy()

	locked, err := sealed.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer locked.Destroy()
	if locked.Size() != 0 {
		t.Errorf("Open on empty input returned %d bytes, want empty", locked.Size())
	}
}

func TestSealedOpenIsRepeatable(t *testing.T) {
	t.Parallel()

	sealed := Seal([]byte("reopenable"))
	defer sealed.Destroy()

	for i := 0; i < 3; i++ {
		locked, err := sealed.Open()
		if err != nil {
			t.Fatalf("Open #%d: %v", i, err)
		}
		if got := string(locked.Bytes()); got != "reopenable" {
			t.Errorf("Open #%d = %q, want %q", i, got, "reopenable")
		}
		locked.Destroy()
	}
}

func TestSealedDestroy(t *testing.T) {
	t.Parallel()

	sealed := Seal([]byte("one-shot"))
	sealed.Destroy()
	sealed.Destroy()

	if !sealed.Destroyed() {
		t.Error("Destroyed() = false after Destroy")
	}

	locked, err := sealed.Open()
	if err != nil {
		t.Fatalf("Open after Destroy: %v", err)
	}
	defer locked.Destroy()
	if locked.Size() != 0 {
		t.Errorf("Open after Destroy returned %d bytes, want empty", locked.Size())
	}
}

func TestSealedConcurrentOpen(t *testing.T) {
	t.Parallel()

	sealed := Seal([]byte("shared"))
	defer sealed.Destroy()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locked, err := sealed.Open()
			if err != nil {
				t.Errorf("concurrent Open: %v", err)
				return
			}
			defer locked.Destroy()
			if got := string(locked.Bytes()); got != "shared" {
				t.Errorf("concurrent Open = %q, want %q", got, "shared")
			}
		}()
	}
	wg.Wait()
}

func TestSealedRedactedFormatting(t *testing.T) {
	t.Parallel()

	sealed := Seal([]byte("invisible"))
	defer sealed.Destroy()

	if out := fmt.Sprintf("%v", sealed); out != "[REDACTED]" {
		t.Errorf("Sprintf = %q, want [REDACTED]", out)
	}
}
