package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexColor = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestForTag_Format(t *testing.T) {
	for _, name := range []string{"Vegan", "", "Süß", "🍝"} {
		assert.Regexp(t, hexColor, ForTag(name), name)
	}
}

func TestForTag_Stable(t *testing.T) {
	assert.Equal(t, ForTag("Suppe"), ForTag("Suppe"))
	assert.Equal(t, ForTag("Käse"), ForTag("kase"))
	assert.NotEqual(t, ForTag("Suppe"), ForTag("Dessert"))
}

func TestHSLToRGB(t *testing.T) {
	r, g, b := hslToRGB(0, 0, 0.5)
	assert.Equal(t, [3]uint8{127, 127, 127}, [3]uint8{r, g, b})

	r, g, b = hslToRGB(0, 1, 0.5)
	assert.Equal(t, [3]uint8{255, 0, 0}, [3]uint8{r, g, b})
}
