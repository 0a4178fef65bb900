package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseImages(t *testing.T, markdown, html string) []ImageRef {
	t.Helper()
	result, err := Parse(markdown, html, "B000000000")
	require.NoError(t, err)
	return result.Images
}

func TestExtractImagesDeduplicatesByBase(t *testing.T) {
	html := `
		<img src="https://m.media-amazon.com/images/I/71abcDEF01L._AC_SX300_.jpg">
		<img src="https://m.media-amazon.com/images/I/71abcDEF01L._AC_SL1000_.jpg">
		<img src="https://m.media-amazon.com/images/I/81xyzGHI02M._AC_SY450_.png">`
	markdown := "![](https://m.media-amazon.com/images/I/71abcDEF01L._AC_US100_.jpg)"

	images := parseImages(t, markdown, html)

	require.Len(t, images, 2)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71abcDEF01L._AC_SL1500_.jpg", images[0].URL)
	assert.Equal(t, "https://m.media-amazon.com/images/I/81xyzGHI02M._AC_SL1500_.png", images[1].URL)
	assert.Equal(t, 1, images[0].Position)
	assert.Equal(t, 2, images[1].Position)
}

func TestExtractImagesBareBaseGetsDefaultExtension(t *testing.T) {
	html := `<img src="https://m.media-amazon.com/images/I/71abcDEF01L">`

	images := parseImages(t, "", html)

	require.Len(t, images, 1)
	assert.Equal(t, "https://m.media-amazon.com/images/I/71abcDEF01L._AC_SL1500_.jpg", images[0].URL)
}

func TestExtractImagesMainRole(t *testing.T) {
	t.Run("Structural marker wins", func(t *testing.T) {
		html := `
			<img src="https://m.media-amazon.com/images/I/61firstAA1L._AC_SX300_.jpg">
			<img id="landingImage" src="https://m.media-amazon.com/images/I/71mainBB02L._AC_SX500_.jpg">`

		images := parseImages(t, "", html)
		require.Len(t, images, 2)
		assert.Equal(t, RoleSecondary, images[0].Role)
		assert.Equal(t, RoleMain, images[1].Role)
	})

	t.Run("First discovered image by default", func(t *testing.T) {
		html := `
			<img src="https://m.media-amazon.com/images/I/61firstAA1L._AC_SX300_.jpg">
			<img src="https://m.media-amazon.com/images/I/71otherBB2L._AC_SX300_.jpg">`

		images := parseImages(t, "", html)
		require.Len(t, images, 2)
		assert.Equal(t, RoleMain, images[0].Role)
		assert.Equal(t, RoleSecondary, images[1].Role)
	})
}

func TestExtractImagesEnrichmentRole(t *testing.T) {
	html := `
		<img id="landingImage" src="https://m.media-amazon.com/images/I/71mainBB02L._AC_SX500_.jpg">
		<div id="aplus">
			<img src="https://m.media-amazon.com/images/I/91marketing3N._AC_SX600_.jpg">
		</div>`

	images := parseImages(t, "", html)
	require.Len(t, images, 2)

	byRole := map[ImageRole]int{}
	for _, img := range images {
		byRole[img.Role]++
	}
	assert.Equal(t, 1, byRole[RoleMain])
	assert.Equal(t, 1, byRole[RoleEnrichment])
}

func TestExtractImagesRejectsNonImageAssets(t *testing.T) {
	html := `
		<img src="https://m.media-amazon.com/images/I/sprite-icons.svg">
		<img src="https://m.media-amazon.com/images/I/loading-anim.gif">`

	images := parseImages(t, "", html)
	assert.Empty(t, images)
	assert.NotNil(t, images)
}

func TestExtractImagesNoCapOnCount(t *testing.T) {
	var html string
	for i := 0; i < 15; i++ {
		html += `<img src="https://m.media-amazon.com/images/I/7` + string(rune('a'+i)) + `baseIMG0L._AC_SX300_.jpg">`
	}

	images := parseImages(t, "", html)
	assert.Len(t, images, 15)
}
