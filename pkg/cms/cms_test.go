package cms_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/arthur-debert/jsploader/pkg/cms"
	"github.com/arthur-debert/jsploader/pkg/vfs"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		encoding string
		want     string
	}{
		{"default encoding", "", cms.DefaultEncoding},
		{"explicit encoding", "ISO-8859-1", "ISO-8859-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := cms.New(vfs.NewMemory(), cms.RequestContext{
				URI:      "/a.jsp",
				Encoding: tt.encoding,
				Online:   true,
				Locale:   language.German,
			})
			ctx := o.RequestContext()
			assert.Equal(t, tt.want, ctx.Encoding)
			assert.Equal(t, "/a.jsp", ctx.URI)
			assert.True(t, ctx.Online)
			assert.Equal(t, language.German, ctx.Locale)
		})
	}
}

func TestObjectReads(t *testing.T) {
	tree := vfs.NewMemory()
	modified := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, tree.WriteFile("/a.jsp", []byte("body"), modified))
	tree.SetProperty("/a.jsp", vfs.PropertyStream, "true")

	o := cms.New(tree, cms.RequestContext{URI: "/a.jsp"})

	resource, err := o.ReadResource("/a.jsp")
	require.NoError(t, err)
	assert.Equal(t, "/a.jsp", resource.Path)
	assert.True(t, resource.LastModified.Equal(modified))

	data, err := o.ReadFile("/a.jsp")
	require.NoError(t, err)
	assert.Equal(t, "body", string(data))

	stream, err := o.ReadProperty("/a.jsp", vfs.PropertyStream)
	require.NoError(t, err)
	assert.Equal(t, "true", stream)

	_, err = o.ReadResource("/missing.jsp")
	assert.Error(t, err)
}
