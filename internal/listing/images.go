package listing

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Canonical high-resolution variant applied to every surviving image URL.
const (
	highResToken     = "._AC_SL1500_"
	defaultImageExt  = ".jpg"
	imageURLPrefix   = "https://m.media-amazon.com/images/I/"
	mainImageElement = "#landingImage"
)

// imageURLPattern matches the site's canonical image-asset path and
// captures the base identifier that names the underlying asset independent
// of any resolution-variant suffix or extension.
var imageURLPattern = regexp.MustCompile(
	`https://m\.media-amazon\.com/images/I/([A-Za-z0-9+%-]+)(\._[A-Za-z0-9_,]+_)?(\.[A-Za-z]{2,4})?`)

// nonImageExtensions are asset suffixes that share the image path but are
// not listing photos.
var nonImageExtensions = map[string]bool{
	".svg":  true,
	".gif":  true,
	".css":  true,
	".js":   true,
	".ico":  true,
	".mp4":  true,
	".json": true,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// ExtractImages scans both page views for image-asset URLs, deduplicates
// them by base identifier (first occurrence wins), assigns roles, and
// rewrites every URL to its high-resolution variant. The main image is the
// one referenced by the structural gallery marker when present; otherwise
// the first discovered image is main by convention. There is no cap on
// image count.
func ExtractImages(markdown, html string, doc *goquery.Document) []ImageRef {
	type candidate struct {
		base string
		ext  string
	}

	seen := make(map[string]bool)
	ordered := []candidate{}

	collect := func(view string) {
		for _, m := range imageURLPattern.FindAllStringSubmatch(view, -1) {
			base, ext := m[1], strings.ToLower(m[3])
			if nonImageExtensions[ext] {
				continue
			}
			if seen[base] {
				continue
			}
			seen[base] = true
			ordered = append(ordered, candidate{base: base, ext: ext})
		}
	}
	collect(html)
	collect(markdown)

	if len(ordered) == 0 {
		return []ImageRef{}
	}

	mainBase := mainImageBase(doc, seen)
	if mainBase == "" {
		mainBase = ordered[0].base
	}
	enrichment := enrichmentBases(doc)

	images := make([]ImageRef, 0, len(ordered))
	for i, c := range ordered {
		role := RoleSecondary
		switch {
		case c.base == mainBase:
			role = RoleMain
		case enrichment[c.base]:
			role = RoleEnrichment
		}
		images = append(images, ImageRef{
			URL:      highResURL(c.base, c.ext),
			Role:     role,
			Position: i + 1,
		})
	}
	return images
}

// highResURL rewrites an asset to its canonical high-resolution form. A
// recognized extension is preserved; truncated or extension-less URLs get
// the default extension appended.
func highResURL(base, ext string) string {
	if !imageExtensions[ext] {
		ext = defaultImageExt
	}
	return imageURLPrefix + base + highResToken + ext
}

// mainImageBase reads the structural gallery marker and returns the base
// identifier it references, if that identifier survived deduplication.
func mainImageBase(doc *goquery.Document, seen map[string]bool) string {
	if doc == nil {
		return ""
	}
	sel := doc.Find(mainImageElement).First()
	for _, attr := range []string{"data-old-hires", "src"} {
		src, ok := sel.Attr(attr)
		if !ok {
			continue
		}
		if m := imageURLPattern.FindStringSubmatch(src); len(m) > 1 && seen[m[1]] {
			return m[1]
		}
	}
	return ""
}

// enrichmentBases collects base identifiers referenced inside supplementary
// marketing content containers.
func enrichmentBases(doc *goquery.Document) map[string]bool {
	bases := make(map[string]bool)
	if doc == nil {
		return bases
	}
	doc.Find(`#aplus, .aplus-v2, [id^="aplus"]`).Each(func(_ int, s *goquery.Selection) {
		inner, err := s.Html()
		if err != nil {
			return
		}
		for _, m := range imageURLPattern.FindAllStringSubmatch(inner, -1) {
			bases[m[1]] = true
		}
	})
	return bases
}
