package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMirrorPath(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{
			"http://www.camara.gov.br/internet/deputado/Dep_Detalhe.asp?id=520068",
			filepath.Join("root", "www.camara.gov.br", "internet", "deputado", "Dep_Detalhe.asp?id=520068"),
		},
		{
			"http://www.camara.gov.br/internet/deputado/fotos/perpetuaalmeida.jpg",
			filepath.Join("root", "www.camara.gov.br", "internet", "deputado", "fotos", "perpetuaalmeida.jpg"),
		},
		{
			"http://www2.camara.gov.br/internet/deputados/biodeputado/index.html?nome=PERP%C9TUA+ALMEIDA&leg=53",
			filepath.Join("root", "www2.camara.gov.br", "internet", "deputados", "biodeputado", "index.html?nome=PERP%C9TUA+ALMEIDA&leg=53"),
		},
		{
			"http://example.com/docs/",
			filepath.Join("root", "example.com", "docs", "index.html"),
		},
		{
			"http://example.com",
			filepath.Join("root", "example.com", "index.html"),
		},
		{
			"http://example.com/../../etc/passwd",
			filepath.Join("root", "example.com", "etc", "passwd"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := MirrorPath("root", tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMirrorPathRejectsRelativeURL(t *testing.T) {
	_, err := MirrorPath("root", "/no/host")
	assert.Error(t, err)
}

func TestMirrorGlobMatchesMirrorPath(t *testing.T) {
	root := t.TempDir()
	template := "http://www.camara.gov.br/internet/deputado/Dep_Detalhe.asp?id=%d"

	pattern, err := MirrorGlob(root, template)
	require.NoError(t, err)

	for _, u := range []string{
		"http://www.camara.gov.br/internet/deputado/Dep_Detalhe.asp?id=1",
		"http://www.camara.gov.br/internet/deputado/Dep_Detalhe.asp?id=520068",
	} {
		p, err := MirrorPath(root, u)
		require.NoError(t, err)
		require.NoError(t, WriteFileAtomic(p, []byte("x"), 0644))
	}

	matches, err := filepath.Glob(pattern)
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestWriteFileAtomic(t *testing.T) {
	name := filepath.Join(t.TempDir(), "a", "b", "file.json")

	require.NoError(t, WriteFileAtomic(name, []byte("first"), 0644))
	require.NoError(t, WriteFileAtomic(name, []byte("second"), 0644))

	data, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(name))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
