package core

import (
	"sync"
	"testing"
)

// TestParseGID tests stack-header parsing
// Given: well-formed and malformed goroutine stack headers
// When: parseGID is applied
// Then: well-formed headers yield the numeric id, malformed yield 0
func TestParseGID(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"goroutine 1 [running]:", 1},
		{"goroutine 6082 [running]:\nmain.main()", 6082},
		{"goroutine 42", 42},
		{"goroutine  [running]:", 0},
		{"gorout", 0},
		{"", 0},
	}
	for _, c := range cases {
		if got := parseGID([]byte(c.in)); got != c.want {
			t.Errorf("parseGID(%q): got = %d, want %d", c.in, got, c.want)
		}
	}
}

// TestCurGoroutineID tests identity stability and uniqueness
// Given: the test goroutine and 4 spawned goroutines
// When: each reads its id twice
// Then: ids are non-zero, stable within a goroutine, unique across them
func TestCurGoroutineID(t *testing.T) {
	self := curGoroutineID()
	if self == 0 {
		t.Fatal("curGoroutineID returned 0 on the test goroutine")
	}
	if again := curGoroutineID(); again != self {
		t.Errorf("id not stable: got = %d then %d", self, again)
	}

	ids := make(chan int64, 4)
	var wg sync.WaitGroup
	wg.Add(4)
	for i := 0; i < 4; i++ {
		go func() {
			defer wg.Done()
			ids <- curGoroutineID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{self: true}
	for id := range ids {
		if id == 0 {
			t.Error("spawned goroutine id parsed as 0")
		}
		if seen[id] {
			t.Errorf("duplicate goroutine id %d", id)
		}
		seen[id] = true
	}
}
