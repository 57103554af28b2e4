package config_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/jsploader/pkg/config"
	"github.com/arthur-debert/jsploader/pkg/errors"
)

func TestReadParamsXML(t *testing.T) {
	doc := `<?xml version="1.0"?>
<loader class="jsp">
  <param name="jsp.repository">/srv/webapp</param>
  <param name="jsp.folder">
    /WEB-INF/jsp/
  </param>
  <param name="jsp.errorpage.committed">false</param>
</loader>`

	params, err := config.ReadParamsXML(strings.NewReader(doc))
	require.NoError(t, err)
	assert.Equal(t, []config.Param{
		{Name: "jsp.repository", Value: "/srv/webapp"},
		{Name: "jsp.folder", Value: "/WEB-INF/jsp/"},
		{Name: "jsp.errorpage.committed", Value: "false"},
	}, params)
}

func TestReadParamsXML_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: `<loader><param name="x">`},
		{name: "empty", doc: ``},
		{name: "missing name", doc: `<loader><param>v</param></loader>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.ReadParamsXML(strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
		})
	}
}
