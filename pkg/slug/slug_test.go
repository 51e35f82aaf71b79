package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Catalogo-api/pkg/slug"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Electrónica":        "electronica",
		"Home & Garden":      "home-garden",
		"  Café  Colombiano": "cafe-colombiano",
		"new-cat":            "new-cat",
		"ÑANDÚ":              "nandu",
		"123 ABC":            "123-abc",
		"---":                "",
	}
	for in, want := range cases {
		assert.Equal(t, want, slug.Make(in), "slug de %q", in)
	}
}
