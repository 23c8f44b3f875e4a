package version

import (
	"testing"
)

func TestNewSemanticVersion(t *testing.T) {
	tests := []struct {
		name  string
		major uint64
		minor uint64
		patch uint64
		want  string
	}{
		{"zero version", 0, 0, 0, "0.0.0"},
		{"initial version", 0, 1, 0, "0.1.0"},
		{"stable version", 1, 0, 0, "1.0.0"},
		{"patch version", 1, 2, 3, "1.2.3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewSemanticVersion(tt.major, tt.minor, tt.patch)
			if got := v.String(); got != tt.want {
				t.Errorf("NewSemanticVersion().String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		want   string
		wantOK bool
	}{
		{"three parts", "1.2.3", "1.2.3", true},
		{"two parts", "2.1", "2.1.0", true},
		{"one part", "2", "2.0.0", true},
		{"zero", "0", "0.0.0", true},
		{"leading zeros", "01.002.0003", "1.2.3", true},
		{"large numbers", "100.200.300", "100.200.300", true},
		{"empty", "", "", false},
		{"verb", "bump", "", false},
		{"v prefix", "v1.2.3", "", false},
		{"four parts", "1.2.3.4", "", false},
		{"prerelease", "1.2.3-alpha", "", false},
		{"trailing dot", "1.", "", false},
		{"letters", "1.a.3", "", false},
		{"negative", "-1.0.0", "", false},
		{"overflow", "18446744073709551616", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := Parse(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("Parse(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if ok && got.String() != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got.String(), tt.want)
			}
			if !ok && !got.IsZero() {
				t.Errorf("Parse(%q) returned %v on failure, want zero", tt.input, got)
			}
		})
	}
}

func TestMustParse(t *testing.T) {
	if got := MustParse("3.1"); got.String() != "3.1.0" {
		t.Errorf("MustParse() = %v, want 3.1.0", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("MustParse() should panic on invalid input")
		}
	}()
	MustParse("nope")
}

func TestParseLoose(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"plain", "1.2.3", "1.2.3", false},
		{"v prefix", "v0.4.1", "0.4.1", false},
		{"short", "1.2", "1.2.0", false},
		{"prerelease dropped", "2.0.0-rc.1", "2.0.0", false},
		{"metadata dropped", "1.0.0+build.7", "1.0.0", false},
		{"surrounding space", " 1.0.0 ", "1.0.0", false},
		{"garbage", "latest", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLoose(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLoose(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err == nil && FromSemver(got).String() != tt.want {
				t.Errorf("FromSemver(ParseLoose(%q)) = %v, want %v", tt.input, FromSemver(got), tt.want)
			}
		})
	}
}

func TestFromSemver_Nil(t *testing.T) {
	if !FromSemver(nil).IsZero() {
		t.Error("FromSemver(nil) should be zero")
	}
}

func TestSemanticVersion_Semver(t *testing.T) {
	v := NewSemanticVersion(4, 5, 6)
	sv := v.Semver()
	if sv.String() != "4.5.6" {
		t.Errorf("Semver().String() = %v, want 4.5.6", sv.String())
	}
	if FromSemver(sv) != v {
		t.Errorf("FromSemver(Semver()) = %v, want %v", FromSemver(sv), v)
	}
}

func TestSemanticVersion_TagString(t *testing.T) {
	v := NewSemanticVersion(1, 0, 1)
	if got := v.TagString("v"); got != "v1.0.1" {
		t.Errorf("TagString(v) = %v, want v1.0.1", got)
	}
	if got := v.TagString(""); got != "1.0.1" {
		t.Errorf("TagString(\"\") = %v, want 1.0.1", got)
	}
}

func TestSemanticVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0.0", "2.0.0", -1},
		{"2.0.0", "1.9.9", 1},
		{"0.2.0", "0.1.0", 1},
		{"0.1.9", "0.2.0", -1},
		{"1.2.3", "1.2.4", -1},
		{"1.2.10", "1.2.9", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			a, b := MustParse(tt.a), MustParse(tt.b)
			if got := a.Compare(b); got != tt.want {
				t.Errorf("Compare() = %d, want %d", got, tt.want)
			}
			if a.LessThan(b) != (tt.want < 0) {
				t.Errorf("LessThan() = %v", a.LessThan(b))
			}
			if a.GreaterThan(b) != (tt.want > 0) {
				t.Errorf("GreaterThan() = %v", a.GreaterThan(b))
			}
			if a.Equal(b) != (tt.want == 0) {
				t.Errorf("Equal() = %v", a.Equal(b))
			}
		})
	}
}
