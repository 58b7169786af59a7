package status

import "testing"

func TestOkStatus(t *testing.T) {
	if !OKStatus.Ok() {
		t.Fatalf("OKStatus.Ok() = false, want true")
	}
	if OKStatus.Code != OK {
		t.Fatalf("OKStatus.Code = %d, want %d", OKStatus.Code, OK)
	}
}

func TestNewNotOk(t *testing.T) {
	s := New(InvalidRC, "R_c must be > 0, got %v", -1.0)
	if s.Ok() {
		t.Fatalf("New(InvalidRC, ...).Ok() = true, want false")
	}
	if s.Code != InvalidRC {
		t.Fatalf("Code = %d, want %d", s.Code, InvalidRC)
	}
	want := "status 2: R_c must be > 0, got -1"
	if s.Error() != want {
		t.Fatalf("Error() = %q, want %q", s.Error(), want)
	}
}

func TestFromError(t *testing.T) {
	if got := FromError(nil); !got.Ok() {
		t.Fatalf("FromError(nil) = %+v, want OK", got)
	}

	s := New(CacheNotBuilt, "rebuild required")
	if got := FromError(s); got.Code != CacheNotBuilt {
		t.Fatalf("FromError(Status) = %+v, want passthrough", got)
	}
}

func TestCodeRanges(t *testing.T) {
	cases := []struct {
		name string
		code Code
		lo   Code
		hi   Code
	}{
		{"InvalidRC", InvalidRC, 1, 99},
		{"OutOfMemory", OutOfMemory, 100, 199},
		{"OutOfBounds", OutOfBounds, 200, 299},
		{"NumericalInstability", NumericalInstability, 300, 399},
		{"WisdomIOFailed", WisdomIOFailed, 400, 499},
		{"CacheNotBuilt", CacheNotBuilt, 500, 599},
	}
	for _, c := range cases {
		if c.code < c.lo || c.code > c.hi {
			t.Errorf("%s = %d, want in [%d,%d]", c.name, c.code, c.lo, c.hi)
		}
	}
}
