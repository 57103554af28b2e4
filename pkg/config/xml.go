package config

import (
	"io"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/jsploader/pkg/errors"
)

// ReadParamsXML reads a loader parameter list:
//
//	<loader>
//	  <param name="jsp.folder">/WEB-INF/jsp/</param>
//	</loader>
//
// Parameters are returned in document order.
func ReadParamsXML(r io.Reader) ([]Param, error) {
	doc := etree.NewDocument()
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigInvalid, "failed to parse loader parameters")
	}
	if doc.Root() == nil {
		return nil, errors.New(errors.ErrConfigInvalid, "loader parameter document is empty")
	}

	var params []Param
	for _, el := range doc.Root().FindElements("//param") {
		name := strings.TrimSpace(el.SelectAttrValue("name", ""))
		if name == "" {
			return nil, errors.Newf(errors.ErrConfigInvalid, "param element without name at %s", el.GetPath())
		}
		params = append(params, Param{Name: name, Value: strings.TrimSpace(el.Text())})
	}
	return params, nil
}

// Param is one configured name/value pair
type Param struct {
	Name  string
	Value string
}
