package textutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"07", 2007},
		{"98", 1998},
		{"69", 2069},
		{"70", 1970},
		{"00", 2000},
		{"99", 1999},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeYear(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeYearRejectsGarbage(t *testing.T) {
	_, err := NormalizeYear("ab")
	assert.Error(t, err)

	_, err = NormalizeYear("123")
	assert.Error(t, err)
}

func TestYearStart(t *testing.T) {
	got, err := YearStart("03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2003, time.January, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestLatin1RoundTrip(t *testing.T) {
	raw := []byte{'P', 'E', 'R', 'P', 0xC9, 'T', 'U', 'A'}

	decoded, err := DecodeLatin1(raw)
	require.NoError(t, err)
	assert.Equal(t, "PERPÉTUA", decoded)

	encoded, err := EncodeLatin1(decoded)
	require.NoError(t, err)
	assert.Equal(t, raw, encoded)
}

func TestEncodeLatin1Unsupported(t *testing.T) {
	_, err := EncodeLatin1("日本")
	assert.Error(t, err)
}

func TestQueryEscapeLatin1(t *testing.T) {
	got, err := QueryEscapeLatin1("PERPÉTUA ALMEIDA")
	require.NoError(t, err)
	assert.Equal(t, "PERP%C9TUA+ALMEIDA", got)
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "PERPETUA ALMEIDA", StripDiacritics("PERPÉTUA ALMEIDA"))
	assert.Equal(t, "Joao Goncalves", StripDiacritics("João Gonçalves"))
	assert.Equal(t, "plain", StripDiacritics("plain"))
}

func TestSlug(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"accents", "MARIA PERPÉTUA ALMEIDA", "maria-perpetua-almeida"},
		{"whitespace runs", "  José   da\tSilva ", "jose-da-silva"},
		{"slash", "A/B SILVA", "a-b-silva"},
		{"backslash", `A\B`, "a-b"},
		{"parent dirs", "../../X", "x"},
		{"deeper parent dirs", "../../../etc/passwd", "etc-passwd"},
		{"dots", "J. R. SOUZA", "j-r-souza"},
		{"reserved characters", `A:B*C?"D"<E>|F`, "a-b-c-d-e-f"},
		{"inner hyphen kept", "SANTA-CRUZ", "santa-cruz"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Slug(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "/")
			assert.NotContains(t, got, `\`)
			assert.NotContains(t, got, "..")
		})
	}
}

func TestSlugIsIdempotent(t *testing.T) {
	for _, name := range []string{"MARIA TESTE", "Ângela  Portela", "already-normal", "A / B", "../x", "a - b"} {
		once := Slug(name)
		assert.Equal(t, once, Slug(once), name)
	}
}

func TestPhotoName(t *testing.T) {
	assert.Equal(t, "perpetuaalmeida", PhotoName("PERPÉTUA ALMEIDA"))
}
