package web

// page.go holds the plain Go helpers of catalog.templ. Regenerate
// catalog_templ.go with `templ generate` after editing the template.

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/regdef/internal/catalog"
)

// pageMeta is the line under the page heading.
func pageMeta(doc catalog.Document, filter string) string {
	meta := fmt.Sprintf("%d registers, locale %s, compiled %s",
		len(doc.Registers),
		doc.Catalog.Lang,
		doc.Catalog.CompiledAt.Format("2006-01-02 15:04:05 MST"))
	if filter != "" {
		meta += ", groups " + filter
	}
	return meta
}

func typeLabel(reg catalog.RegisterView) string {
	if reg.Len > 1 {
		return fmt.Sprintf("%s[%d]", reg.Type, reg.Len)
	}
	return reg.Type
}

// htmlLang converts a normalized locale such as "de_de" to "de-DE".
func htmlLang(lang string) string {
	base, region, ok := strings.Cut(lang, "_")
	if !ok || base == "und" {
		return base
	}
	return base + "-" + strings.ToUpper(region)
}
